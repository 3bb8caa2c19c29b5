package vehicle

import (
	"context"

	"github.com/gigabridge/gigabridge/pkg/types"
)

// API is the surface of the vehicle telemetry vendor the bridge uses.
// Commands are idempotent fire-and-forget; they either land or fail with
// a RemoteCommandError, there is no state to reconcile afterwards.
type API interface {
	// GetLocation returns the vehicle's current GPS position.
	GetLocation(ctx context.Context) (types.Location, error)

	// Lock and Unlock control the doors.
	Lock(ctx context.Context) error
	Unlock(ctx context.Context) error

	// OpenFrunk pops the front trunk.
	OpenFrunk(ctx context.Context) error

	// StartClimate begins preconditioning the cabin.
	StartClimate(ctx context.Context) error

	// FlashLights flashes the headlights the given number of times.
	FlashLights(ctx context.Context, count int) error

	// Honk sounds the horn once.
	Honk(ctx context.Context) error
}
