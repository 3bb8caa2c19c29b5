package vehicle

import (
	"context"
	"sync"

	"github.com/gigabridge/gigabridge/pkg/types"
)

// Mock implements API for tests. Commands are recorded; the location and
// error are whatever the test sets.
type Mock struct {
	mu       sync.Mutex
	Location types.Location
	Err      error
	Commands []string
}

func (m *Mock) record(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Commands = append(m.Commands, name)
	return m.Err
}

// GetLocation returns the configured location and error.
func (m *Mock) GetLocation(ctx context.Context) (types.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Location, m.Err
}

func (m *Mock) Lock(ctx context.Context) error         { return m.record("lock") }
func (m *Mock) Unlock(ctx context.Context) error       { return m.record("unlock") }
func (m *Mock) OpenFrunk(ctx context.Context) error    { return m.record("frunk") }
func (m *Mock) StartClimate(ctx context.Context) error { return m.record("climate") }
func (m *Mock) Honk(ctx context.Context) error         { return m.record("honk") }

func (m *Mock) FlashLights(ctx context.Context, count int) error {
	for i := 0; i < count; i++ {
		if err := m.record("flash"); err != nil {
			return err
		}
	}
	return nil
}
