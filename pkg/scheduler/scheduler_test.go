package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gigabridge/gigabridge/pkg/types"
	"github.com/gigabridge/gigabridge/pkg/vehicle"
)

type chargerStub struct {
	calls int
	err   error
}

func (c *chargerStub) AuthorizeCharging(ctx context.Context, chargerID string) (types.ChargeResult, error) {
	c.calls++
	if c.err != nil {
		return types.ChargeResult{}, c.err
	}
	return types.ChargeResult{ChargerID: "CHG-1", EnergyKWH: 1.441}, nil
}

func TestRunJob(t *testing.T) {
	home := types.Location{Latitude: 48.8566, Longitude: 2.3522}
	away := types.Location{Latitude: 51.5074, Longitude: -0.1278}
	area := vehicle.HomeArea{Home: home, RadiusMeters: 100}

	t.Run("NoHomeGate", func(t *testing.T) {
		charger := &chargerStub{}
		s := &Scheduler{charger: charger}
		s.runJob(context.Background())
		assert.Equal(t, 1, charger.calls)
	})

	t.Run("VehicleHome", func(t *testing.T) {
		charger := &chargerStub{}
		mock := &vehicle.Mock{Location: home}
		s := &Scheduler{
			charger:     charger,
			vehicle:     &vehicle.Vehicle{API: mock, Home: area},
			requireHome: true,
		}
		s.runJob(context.Background())
		assert.Equal(t, 1, charger.calls)
	})

	t.Run("VehicleAway", func(t *testing.T) {
		charger := &chargerStub{}
		mock := &vehicle.Mock{Location: away}
		s := &Scheduler{
			charger:     charger,
			vehicle:     &vehicle.Vehicle{API: mock, Home: area},
			requireHome: true,
		}
		s.runJob(context.Background())
		assert.Zero(t, charger.calls)
	})

	t.Run("LocationError", func(t *testing.T) {
		charger := &chargerStub{}
		mock := &vehicle.Mock{Err: errors.New("asleep")}
		s := &Scheduler{
			charger:     charger,
			vehicle:     &vehicle.Vehicle{API: mock, Home: area},
			requireHome: true,
		}
		s.runJob(context.Background())
		assert.Zero(t, charger.calls)
	})

	t.Run("NoVehicleConfigured", func(t *testing.T) {
		charger := &chargerStub{}
		s := &Scheduler{charger: charger, requireHome: true}
		s.runJob(context.Background())
		assert.Zero(t, charger.calls)
	})

	t.Run("ChargeFailureDoesNotPanic", func(t *testing.T) {
		charger := &chargerStub{err: errors.New("vendor down")}
		s := &Scheduler{charger: charger}
		s.runJob(context.Background())
		assert.Equal(t, 1, charger.calls)
	})
}

func TestStartDisabledWithoutSpec(t *testing.T) {
	s := &Scheduler{charger: &chargerStub{}}
	assert.NoError(t, s.Start(context.Background()))
	assert.Nil(t, s.cron)
	s.Stop()
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := &Scheduler{charger: &chargerStub{}, spec: "not a cron"}
	assert.Error(t, s.Start(context.Background()))
}
