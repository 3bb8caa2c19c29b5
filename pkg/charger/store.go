package charger

import (
	"github.com/gigabridge/gigabridge/pkg/types"
)

// Store holds at most one session token in process memory. Nothing is
// persisted; a restart starts over with a fresh login. The store itself
// is not safe for concurrent use, the orchestrator serializes access.
type Store struct {
	token types.SessionToken
}

// Get returns the cached token, if any.
func (s *Store) Get() (types.SessionToken, bool) {
	return s.token, !s.token.IsZero()
}

// Set replaces the cached token.
func (s *Store) Set(tok types.SessionToken) {
	s.token = tok
}

// Clear drops the cached token so the next flow logs in fresh.
func (s *Store) Clear() {
	s.token = types.SessionToken{}
}
