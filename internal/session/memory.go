// Package session persists view snapshots per browser session and carries the
// session id in a cookie.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/JonMunkholm/FinSummary/internal/core"
)

// DefaultTTL is how long an idle session's view is kept.
const DefaultTTL = 24 * time.Hour

var (
	_ core.StateStore = (*MemoryStore)(nil)
	_ core.StateStore = (*RedisStore)(nil)
)

type memoryEntry struct {
	state   core.State
	expires time.Time
}

// MemoryStore keeps snapshots in process. Entries expire ttl after their last
// save and are removed by Sweep.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates a MemoryStore. A non-positive ttl uses DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryStore) Load(_ context.Context, id string) (*core.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok || !m.now().Before(e.expires) {
		return nil, nil
	}
	st := cloneState(e.state)
	return &st, nil
}

func (m *MemoryStore) Save(_ context.Context, id string, st core.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[id] = memoryEntry{state: cloneState(st), expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, id)
	return nil
}

// Sweep removes expired entries and returns how many were removed.
func (m *MemoryStore) Sweep(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored entries, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

func cloneState(st core.State) core.State {
	st.Order = append([]string(nil), st.Order...)
	return st
}
