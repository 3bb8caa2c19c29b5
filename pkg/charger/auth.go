package charger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gigabridge/gigabridge/pkg/log"
	"github.com/gigabridge/gigabridge/pkg/types"
)

const (
	sessionCookie = "manix-sess"

	// The vendor only accepts requests that look like they came from its
	// own Android app, so every call carries the app's user-agent and
	// package identifier.
	mobileUserAgent = "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.5790.166 Mobile Safari/537.36"
	appPackage      = "net.gigacharger.app"
)

// Authenticator exchanges email/password for a session token via the
// vendor's form login endpoint.
type Authenticator struct {
	client   *http.Client
	loginURL string
}

// NewAuthenticator returns an Authenticator posting to the given login URL.
func NewAuthenticator(loginURL string) *Authenticator {
	return &Authenticator{
		client:   &http.Client{Timeout: time.Minute},
		loginURL: loginURL,
	}
}

// Login posts the credentials as multipart form data and extracts the
// session token from the manix-sess response cookie. It never caches the
// result; the caller decides whether to store it.
func (a *Authenticator) Login(ctx context.Context, email, password string) (types.SessionToken, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("remember", "1"); err != nil {
		return types.SessionToken{}, fmt.Errorf("failed to build login form: %w", err)
	}
	if err := mw.WriteField("email", email); err != nil {
		return types.SessionToken{}, fmt.Errorf("failed to build login form: %w", err)
	}
	if err := mw.WriteField("password", password); err != nil {
		return types.SessionToken{}, fmt.Errorf("failed to build login form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return types.SessionToken{}, fmt.Errorf("failed to build login form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.loginURL, &body)
	if err != nil {
		return types.SessionToken{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("User-Agent", mobileUserAgent)
	req.Header.Set("X-Requested-With", appPackage)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("Sec-Fetch-Dest", "empty")

	resp, err := a.client.Do(req)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "gigacharger login call failed", slog.Any("error", err))
		return types.SessionToken{}, &AuthError{Network: true, Err: err}
	}
	defer resp.Body.Close()
	// the body carries nothing we need, the token lives in the cookie
	_, _ = io.Copy(io.Discard, resp.Body)

	value, ok := extractSessionCookie(resp.Header.Values("Set-Cookie"))
	if !ok {
		log.Ctx(ctx).WarnContext(ctx, "gigacharger login returned no session cookie", slog.Int("status", resp.StatusCode))
		return types.SessionToken{}, &AuthError{Err: fmt.Errorf("%w (status %d)", ErrNoSessionCookie, resp.StatusCode)}
	}

	log.Ctx(ctx).DebugContext(ctx, "gigacharger login success", slog.String("email", email))
	return types.SessionToken{Value: value, AcquiredAt: time.Now()}, nil
}

// extractSessionCookie returns the exact substring between "manix-sess="
// and the next ";" across the given Set-Cookie header values.
func extractSessionCookie(setCookies []string) (string, bool) {
	prefix := sessionCookie + "="
	for _, h := range setCookies {
		idx := strings.Index(h, prefix)
		if idx < 0 {
			continue
		}
		value := h[idx+len(prefix):]
		if end := strings.IndexByte(value, ';'); end >= 0 {
			value = value[:end]
		}
		return value, true
	}
	return "", false
}
