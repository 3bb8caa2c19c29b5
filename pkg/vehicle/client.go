package vehicle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gigabridge/gigabridge/pkg/common"
	"github.com/gigabridge/gigabridge/pkg/log"
	"github.com/gigabridge/gigabridge/pkg/types"
)

// RemoteCommandError reports a vehicle command that did not land.
type RemoteCommandError struct {
	Command string
	Err     error
}

func (e *RemoteCommandError) Error() string {
	return fmt.Sprintf("vehicle command %s failed: %v", e.Command, e.Err)
}

func (e *RemoteCommandError) Unwrap() error {
	return e.Err
}

// Client talks to the vehicle telemetry API with a bearer token.
type Client struct {
	client    *http.Client
	baseURL   string
	token     string
	vehicleID string
}

// NewClient returns a Client for the given vehicle.
func NewClient(baseURL, token, vehicleID string) *Client {
	return &Client{
		client:    common.HTTPClient(time.Minute),
		baseURL:   baseURL,
		token:     token,
		vehicleID: vehicleID,
	}
}

type apiResponse struct {
	Response json.RawMessage `json:"response"`
	Error    string          `json:"error"`
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, data interface{}) (*http.Request, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	u.Path, err = url.JoinPath(u.Path, "api/1/vehicles", c.vehicleID, endpoint)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	return req, nil
}

func (c *Client) doRequest(req *http.Request, dest interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	var ar apiResponse
	if err := json.Unmarshal(body, &ar); err != nil {
		log.Ctx(req.Context()).ErrorContext(req.Context(), "failed to decode vehicle response", slog.Any("error", err), slog.String("body", string(body)))
		return err
	}
	if ar.Error != "" {
		return fmt.Errorf("vehicle api error: %s", ar.Error)
	}
	if dest != nil {
		if err := json.Unmarshal(ar.Response, dest); err != nil {
			return fmt.Errorf("failed to decode vehicle result: %w", err)
		}
	}
	return nil
}

type driveState struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GetLocation returns the vehicle's current GPS position.
func (c *Client) GetLocation(ctx context.Context) (types.Location, error) {
	req, err := c.newRequest(ctx, "GET", "data_request/drive_state", nil)
	if err != nil {
		return types.Location{}, err
	}

	var ds driveState
	if err := c.doRequest(req, &ds); err != nil {
		return types.Location{}, fmt.Errorf("drive_state failed: %w", err)
	}

	log.Ctx(ctx).DebugContext(ctx, "vehicle location",
		slog.Float64("latitude", ds.Latitude),
		slog.Float64("longitude", ds.Longitude),
	)
	return types.Location{Latitude: ds.Latitude, Longitude: ds.Longitude}, nil
}

func (c *Client) command(ctx context.Context, name string, data interface{}) error {
	req, err := c.newRequest(ctx, "POST", "command/"+name, data)
	if err != nil {
		return &RemoteCommandError{Command: name, Err: err}
	}
	if err := c.doRequest(req, nil); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "vehicle command failed", slog.String("command", name), slog.Any("error", err))
		return &RemoteCommandError{Command: name, Err: err}
	}
	log.Ctx(ctx).InfoContext(ctx, "vehicle command sent", slog.String("command", name))
	return nil
}

// Lock locks the doors.
func (c *Client) Lock(ctx context.Context) error {
	return c.command(ctx, "door_lock", nil)
}

// Unlock unlocks the doors.
func (c *Client) Unlock(ctx context.Context) error {
	return c.command(ctx, "door_unlock", nil)
}

// OpenFrunk pops the front trunk.
func (c *Client) OpenFrunk(ctx context.Context) error {
	return c.command(ctx, "actuate_trunk", map[string]string{"which_trunk": "front"})
}

// StartClimate begins preconditioning the cabin.
func (c *Client) StartClimate(ctx context.Context) error {
	return c.command(ctx, "auto_conditioning_start", nil)
}

// FlashLights flashes the headlights the given number of times.
func (c *Client) FlashLights(ctx context.Context, count int) error {
	if count < 1 {
		count = 1
	}
	for i := 0; i < count; i++ {
		if err := c.command(ctx, "flash_lights", nil); err != nil {
			return err
		}
	}
	return nil
}

// Honk sounds the horn once.
func (c *Client) Honk(ctx context.Context) error {
	return c.command(ctx, "honk_horn", nil)
}
