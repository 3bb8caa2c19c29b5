package charger

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/gigabridge/gigabridge/pkg/log"
	"github.com/gigabridge/gigabridge/pkg/types"
)

// Orchestrator is the façade over the login and authorization flows. It
// owns the credential store and guarantees at most one login-or-authorize
// flow is in flight at a time; concurrent callers for the same charger
// join the in-flight attempt and share its result.
type Orchestrator struct {
	auth  *Authenticator
	authz *Authorizer

	email     string
	password  string
	chargerID string

	mu     sync.Mutex
	store  Store
	flight singleflight.Group

	// retryable decides whether a failed authorization looks like the
	// vendor rejecting a stale session, in which case the flow clears the
	// token, logs in fresh and retries exactly once. The vendor gives no
	// explicit expired-token signal so the predicate is tunable.
	retryable func(error) bool
}

// NewOrchestrator wires an orchestrator from its parts. The chargerID is
// the default used when a request supplies none.
func NewOrchestrator(auth *Authenticator, authz *Authorizer, email, password, chargerID string) *Orchestrator {
	return &Orchestrator{
		auth:      auth,
		authz:     authz,
		email:     email,
		password:  password,
		chargerID: chargerID,
		retryable: retryableByDefault,
	}
}

// retryableByDefault treats connect failures and unexpected closures as
// possible stale-session rejections. Timeouts and send failures are not
// retried: by then the vendor accepted the socket, so the session was
// fine.
func retryableByDefault(err error) bool {
	return errors.Is(err, ErrConnectionFailed) || errors.Is(err, ErrUnexpectedClosure)
}

// SetRetryable replaces the retry predicate. Passing nil disables the
// re-authentication retry entirely.
func (o *Orchestrator) SetRetryable(fn func(error) bool) {
	if fn == nil {
		fn = func(error) bool { return false }
	}
	o.retryable = fn
}

// AuthorizeCharging ensures a session exists and authorizes charging on
// the given charger, falling back to the configured charger id when the
// argument is empty. Concurrent calls for the same charger share one
// attempt rather than racing independent logins and sockets.
func (o *Orchestrator) AuthorizeCharging(ctx context.Context, chargerID string) (types.ChargeResult, error) {
	if chargerID == "" {
		chargerID = o.chargerID
	}
	if chargerID == "" {
		return types.ChargeResult{}, ErrMissingChargerID
	}

	v, err, shared := o.flight.Do(chargerID, func() (interface{}, error) {
		return o.authorizeOnce(ctx, chargerID)
	})
	if shared {
		log.Ctx(ctx).DebugContext(ctx, "joined in-flight authorization", slog.String("chargerID", chargerID))
	}
	if err != nil {
		return types.ChargeResult{}, err
	}
	return v.(types.ChargeResult), nil
}

func (o *Orchestrator) authorizeOnce(ctx context.Context, chargerID string) (types.ChargeResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	tok, err := o.ensureToken(ctx)
	if err != nil {
		return types.ChargeResult{}, err
	}

	res, err := o.authz.Authorize(ctx, tok, chargerID)
	if err == nil {
		return res, nil
	}
	if !o.retryable(err) {
		return types.ChargeResult{}, err
	}

	// a rejected cookie and a vendor outage look the same from here, so
	// drop the session and try once more with a fresh login
	log.Ctx(ctx).InfoContext(ctx, "authorization failed, retrying with a fresh session", slog.String("chargerID", chargerID), slog.Any("error", err))
	o.store.Clear()
	tok, err = o.ensureToken(ctx)
	if err != nil {
		return types.ChargeResult{}, err
	}
	return o.authz.Authorize(ctx, tok, chargerID)
}

// ensureToken returns the cached token or logs in with the configured
// credentials and caches the result. Must be called with o.mu held.
func (o *Orchestrator) ensureToken(ctx context.Context) (types.SessionToken, error) {
	if tok, ok := o.store.Get(); ok {
		return tok, nil
	}
	if o.email == "" || o.password == "" {
		return types.SessionToken{}, ErrMissingCredentials
	}
	tok, err := o.auth.Login(ctx, o.email, o.password)
	if err != nil {
		return types.SessionToken{}, err
	}
	o.store.Set(tok)
	return tok, nil
}
