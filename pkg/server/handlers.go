package server

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gigabridge/gigabridge/pkg/charger"
	"github.com/gigabridge/gigabridge/pkg/log"
)

// gateMiddleware rejects any request without the shared password. This
// is a single-operator bridge; there are no accounts or sessions, just
// one secret in the query string the way the vendor-facing automations
// pass it.
func (s *Server) gateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.URL.Query().Get("password")
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.password)) != 1 {
			writeJSONError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleCharge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	chargerID := r.URL.Query().Get("charger")

	res, err := s.charger.AuthorizeCharging(ctx, chargerID)
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "charge request failed", slog.String("chargerID", chargerID), slog.Any("error", err))
		writeJSONError(w, err.Error(), chargeStatusCode(err))
		return
	}
	writeJSON(w, res)
}

// chargeStatusCode maps an authorization failure onto an HTTP status:
// caller mistakes are 400s, everything the vendor did wrong is a 500.
func chargeStatusCode(err error) int {
	switch {
	case errors.Is(err, charger.ErrMissingChargerID),
		errors.Is(err, charger.ErrMissingCredentials):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleVehicleLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.vehicle == nil || s.vehicle.API == nil {
		writeJSONError(w, "no vehicle configured", http.StatusBadRequest)
		return
	}

	loc, err := s.vehicle.API.GetLocation(ctx)
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "location request failed", slog.Any("error", err))
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Home      bool    `json:"home"`
	}{loc.Latitude, loc.Longitude, s.vehicle.Home.Contains(loc)})
}

func (s *Server) vehicleCommand(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.vehicle == nil || s.vehicle.API == nil {
			writeJSONError(w, "no vehicle configured", http.StatusBadRequest)
			return
		}

		var err error
		switch name {
		case "lock":
			err = s.vehicle.API.Lock(ctx)
		case "unlock":
			err = s.vehicle.API.Unlock(ctx)
		case "frunk":
			err = s.vehicle.API.OpenFrunk(ctx)
		case "climate":
			err = s.vehicle.API.StartClimate(ctx)
		case "flash":
			count := 1
			if c := r.URL.Query().Get("count"); c != "" {
				count, err = strconv.Atoi(c)
				if err != nil || count < 1 {
					writeJSONError(w, "invalid count", http.StatusBadRequest)
					return
				}
			}
			err = s.vehicle.API.FlashLights(ctx, count)
		case "honk":
			err = s.vehicle.API.Honk(ctx)
		default:
			// routes are registered from the same table, this cannot happen
			writeJSONError(w, "unknown command", http.StatusNotFound)
			return
		}

		if err != nil {
			log.Ctx(ctx).WarnContext(ctx, "vehicle command failed", slog.String("command", name), slog.Any("error", err))
			writeJSONError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, struct {
			OK bool `json:"ok"`
		}{true})
	}
}
