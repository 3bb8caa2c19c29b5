package charger

import (
	"time"

	"github.com/levenlabs/go-lflag"
)

const (
	defaultLoginURL = "https://my.gigacharger.net/v1/login"
	defaultLiveURL  = "wss://my.gigacharger.net:41443/live"

	defaultAuthorizeTimeout = 40 * time.Second
)

// Configured sets up the charger orchestrator based on flags.
func Configured() *Orchestrator {
	o := &Orchestrator{retryable: retryableByDefault}

	email := lflag.String("gigacharger-email", "", "Gigacharger account email")
	password := lflag.String("gigacharger-password", "", "Gigacharger account password")
	chargerID := lflag.String("charger-id", "", "Default charger to authorize")
	loginURL := lflag.String("gigacharger-login-url", defaultLoginURL, "Gigacharger login endpoint")
	liveURL := lflag.String("gigacharger-live-url", defaultLiveURL, "Gigacharger live websocket endpoint")
	timeout := lflag.Duration("authorize-timeout", defaultAuthorizeTimeout, "How long to wait for the charger to confirm a session")

	lflag.Do(func() {
		o.email = *email
		o.password = *password
		o.chargerID = *chargerID
		o.auth = NewAuthenticator(*loginURL)
		o.authz = NewAuthorizer(*liveURL, *timeout)
	})

	return o
}
