// Package scheduler runs the daily automatic charge job. It owns no
// charging logic of its own: on each tick it optionally checks that the
// vehicle is near home and then asks the charger orchestrator to
// authorize a session.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/robfig/cron/v3"

	"github.com/gigabridge/gigabridge/pkg/log"
	"github.com/gigabridge/gigabridge/pkg/types"
	"github.com/gigabridge/gigabridge/pkg/vehicle"
)

// jobTimeout bounds a single scheduled run; it comfortably covers the
// location lookup plus the charger's own authorize timeout.
const jobTimeout = 2 * time.Minute

// ChargeAuthorizer is the part of the charger orchestrator the scheduler
// uses.
type ChargeAuthorizer interface {
	AuthorizeCharging(ctx context.Context, chargerID string) (types.ChargeResult, error)
}

// Scheduler triggers charge authorizations on a cron expression.
type Scheduler struct {
	charger ChargeAuthorizer
	vehicle *vehicle.Vehicle

	spec        string
	requireHome bool

	cron *cron.Cron
}

// Configured sets up the scheduler based on flags. An empty charge-cron
// disables it.
func Configured(c ChargeAuthorizer, v *vehicle.Vehicle) *Scheduler {
	s := &Scheduler{charger: c, vehicle: v}

	spec := lflag.String("charge-cron", "", "Cron expression for the automatic charge job (empty disables)")
	requireHome := lflag.Bool("charge-require-home", false, "Only start charging when the vehicle is near home")

	lflag.Do(func() {
		s.spec = *spec
		s.requireHome = *requireHome
	})

	return s
}

// Start registers the cron job and begins the schedule. It returns
// immediately; Stop should be deferred by the caller.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.spec == "" {
		log.Ctx(ctx).InfoContext(ctx, "no charge-cron configured, scheduler disabled")
		return nil
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.spec, func() { s.runJob(ctx) }); err != nil {
		return err
	}
	s.cron.Start()
	log.Ctx(ctx).InfoContext(ctx, "charge schedule started", slog.String("cron", s.spec))
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *Scheduler) runJob(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	if s.requireHome {
		if s.vehicle == nil || s.vehicle.API == nil {
			log.Ctx(ctx).WarnContext(ctx, "charge-require-home set but no vehicle configured, skipping charge")
			return
		}
		loc, err := s.vehicle.API.GetLocation(ctx)
		if err != nil {
			log.Ctx(ctx).WarnContext(ctx, "failed to locate vehicle, skipping charge", slog.Any("error", err))
			return
		}
		if !s.vehicle.Home.Contains(loc) {
			log.Ctx(ctx).InfoContext(ctx, "vehicle not home, skipping charge",
				slog.Float64("latitude", loc.Latitude),
				slog.Float64("longitude", loc.Longitude),
			)
			return
		}
	}

	res, err := s.charger.AuthorizeCharging(ctx, "")
	if err != nil {
		// a failed run is logged and forgotten, the next tick tries again
		log.Ctx(ctx).ErrorContext(ctx, "scheduled charge failed", slog.Any("error", err))
		return
	}
	log.Ctx(ctx).InfoContext(ctx, "scheduled charge authorized",
		slog.String("chargerID", res.ChargerID),
		slog.Float64("energyKWH", res.EnergyKWH),
	)
}
