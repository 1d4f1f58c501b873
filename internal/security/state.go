package security

import (
	"sync"
	"time"
)

// maxLogEntries caps the per-user query log. Oldest entries are dropped
// first.
const maxLogEntries = 100

// QueryRecord is a single allowed query in a user's history.
type QueryRecord struct {
	Text string
	At   time.Time
}

// UserState holds everything the gate tracks for one pseudonymous user key:
// an insertion-ordered capped query log, an explicit violation counter, and
// an optional block expiry.
type UserState struct {
	Log          []QueryRecord
	Violations   int
	BlockedUntil time.Time // zero when not blocked
}

// AppendQuery records an allowed query, evicting the oldest entry once the
// log exceeds its cap.
func (s *UserState) AppendQuery(text string, at time.Time) {
	s.Log = append(s.Log, QueryRecord{Text: text, At: at})
	if len(s.Log) > maxLogEntries {
		s.Log = s.Log[len(s.Log)-maxLogEntries:]
	}
}

// CountSince returns the number of logged queries issued after cutoff.
// Always computed from the live log, never cached.
func (s *UserState) CountSince(cutoff time.Time) int {
	count := 0
	for _, rec := range s.Log {
		if rec.At.After(cutoff) {
			count++
		}
	}
	return count
}

// Recent returns up to n of the most recent logged queries, oldest first.
func (s *UserState) Recent(n int) []QueryRecord {
	if len(s.Log) <= n {
		return s.Log
	}
	return s.Log[len(s.Log)-n:]
}

// StateStore provides linearized access to per-user state. Update runs fn
// with exclusive access to the state for key; calls for the same key never
// interleave, calls for different keys run fully in parallel. State is
// created lazily on first access and lives for the process lifetime.
//
// The in-memory implementation below is the default; a multi-instance
// deployment can substitute a shared store behind the same interface.
type StateStore interface {
	Update(key string, fn func(*UserState))
}

// MemoryStateStore is the in-process StateStore.
type MemoryStateStore struct {
	mu    sync.RWMutex
	users map[string]*userEntry
}

type userEntry struct {
	mu    sync.Mutex
	state UserState
}

// NewMemoryStateStore creates an empty in-memory state store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{users: make(map[string]*userEntry)}
}

// Update implements StateStore. The map lock is held only long enough to
// find or create the entry; fn runs under the per-user lock so different
// keys do not contend.
func (m *MemoryStateStore) Update(key string, fn func(*UserState)) {
	m.mu.RLock()
	entry, ok := m.users[key]
	m.mu.RUnlock()

	if !ok {
		m.mu.Lock()
		entry, ok = m.users[key]
		if !ok {
			entry = &userEntry{}
			m.users[key] = entry
		}
		m.mu.Unlock()
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	fn(&entry.state)
}

// Users returns the number of tracked user keys.
func (m *MemoryStateStore) Users() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}
