package session

import (
	"sync"
	"time"
)

// sweepInterval bounds how often Get scans for idle sessions.
const sweepInterval = time.Minute

type entry struct {
	state    *State
	lastSeen time.Time
}

// Store maps session IDs to their State.
// Sessions idle for longer than the idle TTL are dropped lazily from Get.
type Store struct {
	mu        sync.Mutex
	entries   map[string]*entry
	defaults  Defaults
	idleTTL   time.Duration
	now       func() time.Time
	lastSweep time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithIdleTTL overrides how long an unused session is kept. It defaults to
// the cookie lifetime, after which the browser no longer sends the ID anyway.
func WithIdleTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		if ttl > 0 {
			s.idleTTL = ttl
		}
	}
}

func withClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store. New states start from defaults.
func NewStore(defaults Defaults, opts ...StoreOption) *Store {
	s := &Store{
		entries:  make(map[string]*entry),
		defaults: defaults,
		idleTTL:  CookieMaxAge,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastSweep = s.now()
	return s
}

// Get returns the State for id, creating it on first use, and marks it used.
func (s *Store) Get(id string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= sweepInterval {
		s.sweep(now)
	}

	e, ok := s.entries[id]
	if !ok {
		e = &entry{state: NewState(s.defaults)}
		s.entries[id] = e
	}
	e.lastSeen = now
	return e.state
}

// sweep drops sessions idle longer than idleTTL. The caller holds mu.
func (s *Store) sweep(now time.Time) {
	for id, e := range s.entries {
		if now.Sub(e.lastSeen) > s.idleTTL {
			delete(s.entries, id)
		}
	}
	s.lastSweep = now
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
