package session

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Manager maps session IDs to their State. Entries expire after a period of
// inactivity and are swept periodically; an expired session simply starts
// over with empty state.
type Manager struct {
	states *cache.Cache
}

// NewManager creates a manager whose sessions expire after ttl.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		states: cache.New(ttl, 10*time.Minute),
	}
}

// Get returns the State for sessionID, creating it on first use. Each access
// refreshes the entry's expiration.
func (m *Manager) Get(sessionID string) *State {
	if x, found := m.states.Get(sessionID); found {
		state := x.(*State)
		m.states.Set(sessionID, state, cache.DefaultExpiration)
		return state
	}
	state := NewState()
	m.states.Set(sessionID, state, cache.DefaultExpiration)
	return state
}
