package store

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time view of the store. Populated stays false until
// the first Write, distinguishing "no data yet" from a genuine zero
// checkpoint.
type Snapshot struct {
	Value     uint64
	Populated bool
	UpdatedAt time.Time
}

// Store holds the most recently observed checkpoint value. It is written by
// the refresh loop and read by the metrics collector from a different
// goroutine; every Read observes either the state before or after a Write,
// never a partial update.
type Store struct {
	mu   sync.RWMutex
	last Snapshot

	now func() time.Time
}

func New() *Store {
	return &Store{now: time.Now}
}

// Write unconditionally overwrites the stored value and stamps the update
// time. The store is never cleared: a stale value stays visible through RPC
// outages.
func (s *Store) Write(value uint64) {
	s.mu.Lock()
	s.last = Snapshot{Value: value, Populated: true, UpdatedAt: s.now()}
	s.mu.Unlock()
}

// Read returns the latest snapshot.
func (s *Store) Read() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}
