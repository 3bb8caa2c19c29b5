package charger

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gigabridge/gigabridge/pkg/log"
	"github.com/gigabridge/gigabridge/pkg/types"
)

const startCommand = "drain/start"

// Authorizer opens one transient live socket per call, sends a single
// start command and waits for the first reply. The vendor protocol has no
// request/response correlation, so a short-lived socket carrying exactly
// one command is the only safe mapping.
type Authorizer struct {
	liveURL string
	timeout time.Duration
}

// NewAuthorizer returns an Authorizer dialing the given wss URL. The
// timeout bounds the whole attempt, measured from connection start.
func NewAuthorizer(liveURL string, timeout time.Duration) *Authorizer {
	return &Authorizer{liveURL: liveURL, timeout: timeout}
}

func (a *Authorizer) dialer() *websocket.Dialer {
	return &websocket.Dialer{
		HandshakeTimeout: a.timeout,
		// The vendor serves this endpoint with a certificate that does
		// not match its host and the official app skips verification
		// too. The exception is scoped to this dialer; the shared HTTP
		// clients keep full verification.
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
}

type inboundFrame struct {
	data []byte
	err  error
}

// Authorize connects with the session token as a cookie, sends
// ["drain/start","<chargerID>"] as one text frame and resolves on the
// first reply, the first close, or the timeout, whichever comes first.
// On timeout it force-closes the socket with a normal closure so the
// connection is never leaked.
func (a *Authorizer) Authorize(ctx context.Context, token types.SessionToken, chargerID string) (types.ChargeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	hdr := http.Header{}
	hdr.Set("User-Agent", mobileUserAgent)
	hdr.Set("Cookie", sessionCookie+"="+token.Value)
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Pragma", "no-cache")

	conn, _, err := a.dialer().DialContext(ctx, a.liveURL, hdr)
	if err != nil {
		return types.ChargeResult{}, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer conn.Close()

	cmd, err := json.Marshal([2]string{startCommand, chargerID})
	if err != nil {
		return types.ChargeResult{}, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, cmd); err != nil {
		return types.ChargeResult{}, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	log.Ctx(ctx).DebugContext(ctx, "sent charge command", slog.String("chargerID", chargerID))

	// one-shot settle: whichever of reply, close or deadline arrives
	// first wins, later events are ignored
	frames := make(chan inboundFrame, 1)
	go func() {
		_, data, err := conn.ReadMessage()
		frames <- inboundFrame{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		a.closeNormally(conn)
		log.Ctx(ctx).WarnContext(ctx, "charger never replied", slog.String("chargerID", chargerID), slog.Duration("timeout", a.timeout))
		return types.ChargeResult{}, ErrTimeout
	case fr := <-frames:
		if fr.err != nil {
			var ce *websocket.CloseError
			if errors.As(fr.err, &ce) {
				return types.ChargeResult{}, fmt.Errorf("%w: close code %d", ErrUnexpectedClosure, ce.Code)
			}
			return types.ChargeResult{}, fmt.Errorf("%w: %v", ErrConnectionFailed, fr.err)
		}
		kwh, err := parseSessionReply(fr.data)
		if err != nil {
			return types.ChargeResult{}, err
		}
		a.closeNormally(conn)
		log.Ctx(ctx).InfoContext(ctx, "charging authorized", slog.String("chargerID", chargerID), slog.Float64("energyKWH", kwh))
		return types.ChargeResult{ChargerID: chargerID, EnergyKWH: kwh}, nil
	}
}

func (a *Authorizer) closeNormally(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	_ = conn.Close()
}

// parseSessionReply extracts the energy counter from a reply like
// ["session",[10334,1441,0.001,7400,1],null]: the second element of the
// nested array is the session energy in watt-hours.
func parseSessionReply(data []byte) (float64, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if len(fields) < 2 {
		return 0, fmt.Errorf("%w: %d fields", ErrMalformedReply, len(fields))
	}
	var counters []float64
	if err := json.Unmarshal(fields[1], &counters); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if len(counters) < 2 {
		return 0, fmt.Errorf("%w: %d counters", ErrMalformedReply, len(counters))
	}
	return counters[1] / 1000, nil
}
