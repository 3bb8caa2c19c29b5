package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/levenlabs/go-lflag"

	"github.com/gigabridge/gigabridge/pkg/log"
	"github.com/gigabridge/gigabridge/pkg/types"
	"github.com/gigabridge/gigabridge/pkg/vehicle"
)

// ChargeAuthorizer is the part of the charger orchestrator the server
// uses.
type ChargeAuthorizer interface {
	AuthorizeCharging(ctx context.Context, chargerID string) (types.ChargeResult, error)
}

// Server exposes the bridge over HTTP: a charge trigger plus a handful
// of vehicle convenience endpoints, all behind a shared-password gate.
type Server struct {
	charger ChargeAuthorizer
	vehicle *vehicle.Vehicle

	listenAddr string
	password   string
	httpServer *http.Server
}

// Configured initializes the Server with dependencies. It uses lflag to
// register command-line flags for configuration.
func Configured(c ChargeAuthorizer, v *vehicle.Vehicle) *Server {
	srv := &Server{
		charger: c,
		vehicle: v,
	}

	listenAddr := lflag.String("http-listen", ":8080", "HTTP server listen address")
	password := lflag.RequiredString("gate-password", "Password required on every API request")

	lflag.Do(func() {
		srv.listenAddr = *listenAddr
		srv.password = *password
	})

	return srv
}

func (s *Server) setupHandler() http.Handler {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/charge", s.handleCharge)
	apiMux.HandleFunc("GET /api/vehicle/location", s.handleVehicleLocation)
	apiMux.HandleFunc("GET /api/vehicle/lock", s.vehicleCommand("lock"))
	apiMux.HandleFunc("GET /api/vehicle/unlock", s.vehicleCommand("unlock"))
	apiMux.HandleFunc("GET /api/vehicle/frunk", s.vehicleCommand("frunk"))
	apiMux.HandleFunc("GET /api/vehicle/climate", s.vehicleCommand("climate"))
	apiMux.HandleFunc("GET /api/vehicle/flash", s.vehicleCommand("flash"))
	apiMux.HandleFunc("GET /api/vehicle/honk", s.vehicleCommand("honk"))

	mux := http.NewServeMux()
	mux.Handle("/api/", s.gateMiddleware(apiMux))
	mux.HandleFunc("/healthz", s.handleHealthz)
	return gziphandler.GzipHandler(mux)
}

// Run starts the HTTP server and blocks until the context is canceled or
// an error occurs. It also handles graceful shutdown when the context is
// done.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.listenAddr,
		Handler:      s.setupHandler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		log.Ctx(ctx).InfoContext(ctx, "starting server", slog.String("addr", s.listenAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Ctx(ctx).InfoContext(ctx, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg}); err != nil {
		slog.Warn("failed to write error response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		panic(http.ErrAbortHandler)
	}
}
