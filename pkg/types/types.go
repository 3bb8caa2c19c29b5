package types

import "time"

// SessionToken is the opaque credential returned by the Gigacharger login
// call. It is presented as a cookie on the live-socket handshake.
type SessionToken struct {
	Value string
	// AcquiredAt records when the token was obtained. The vendor never
	// tells us when a token expires, so nothing enforces an expiry; the
	// token is trusted until a request fails.
	AcquiredAt time.Time
}

// IsZero reports whether no token is present.
func (t SessionToken) IsZero() bool {
	return t.Value == ""
}

// ChargeResult is the outcome of one successful charge authorization.
type ChargeResult struct {
	ChargerID string  `json:"chargerId"`
	EnergyKWH float64 `json:"energyKWH"`
}

// Location is a GPS coordinate reported by the vehicle.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
