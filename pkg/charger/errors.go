package charger

import (
	"errors"
	"fmt"
)

// Failures of a single authorization attempt. Every failure is terminal
// for that invocation; the orchestrator re-authenticates and retries at
// most once, and only for failures its retryable predicate reports.
var (
	// ErrMissingChargerID means no charger id was supplied and none is
	// configured.
	ErrMissingChargerID = errors.New("no charger id")

	// ErrMissingCredentials means there is no cached session and no
	// email/password configured to obtain one.
	ErrMissingCredentials = errors.New("no credentials configured and no cached session")

	// ErrNoSessionCookie means the login response carried no manix-sess
	// cookie.
	ErrNoSessionCookie = errors.New("login response missing session cookie")

	// ErrConnectionFailed means the live socket could not be opened or
	// failed mid-flight.
	ErrConnectionFailed = errors.New("charger connection failed")

	// ErrSendFailed means the start command could not be written.
	ErrSendFailed = errors.New("failed to send charge command")

	// ErrUnexpectedClosure means the socket closed before any reply, with
	// either a non-normal code or a premature normal one. The reply is
	// the sole success signal, so a clean close without one still fails.
	ErrUnexpectedClosure = errors.New("charger closed connection before replying")

	// ErrTimeout means no reply arrived within the authorization bound
	// and we force-closed the socket ourselves.
	ErrTimeout = errors.New("timed out waiting for charger reply")

	// ErrMalformedReply means the charger replied with something we could
	// not extract an energy counter from.
	ErrMalformedReply = errors.New("malformed charger reply")
)

// AuthError reports a failed login. Network distinguishes transport and
// HTTP failures from responses that simply lacked the session cookie.
type AuthError struct {
	Network bool
	Err     error
}

func (e *AuthError) Error() string {
	if e.Network {
		return fmt.Sprintf("login failed: %v", e.Err)
	}
	return fmt.Sprintf("login rejected: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
