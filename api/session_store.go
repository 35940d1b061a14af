package api

import (
	"sync"
	"time"

	"github.com/mleone/gatehouse/internal/util"
)

const (
	// sessionTTL is how long an issued session token stays valid. The
	// expiry is fixed at creation; activity does not extend it.
	sessionTTL = 30 * 24 * time.Hour
	// defaultSessionCapacity bounds the number of live sessions. When
	// the store is full the earliest-inserted session is evicted.
	defaultSessionCapacity = 100
	// sessionSweepInterval is how often the background sweeper purges
	// expired sessions that are never re-checked.
	sessionSweepInterval = time.Hour
)

// SessionStore issues, validates and revokes opaque session tokens.
// It is an owned instance rather than package state so tests can build
// isolated stores without cross-test contamination.
//
// The store is bounded: eviction is FIFO by insertion order, not
// least-recently-used. Expired entries are removed lazily on read and
// by the periodic sweeper.
type SessionStore struct {
	mu       sync.Mutex
	expiries map[string]time.Time
	order    []string // insertion order; may hold tokens already removed from expiries
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a session store holding at most capacity
// tokens, each valid for ttl after insertion.
func NewSessionStore(capacity int, ttl time.Duration) *SessionStore {
	return &SessionStore{
		expiries: make(map[string]time.Time),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// NewToken returns a fresh 256-bit hex-encoded session token. Collisions
// are probabilistically negligible and never checked for.
func (s *SessionStore) NewToken() (string, error) {
	return util.RandomToken()
}

// Put inserts token with expiry now+ttl, evicting the earliest-inserted
// session first if the store is at capacity.
func (s *SessionStore) Put(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.expiries) >= s.capacity {
		s.evictOldestLocked()
	}
	if _, exists := s.expiries[token]; !exists {
		s.order = append(s.order, token)
	}
	s.expiries[token] = s.now().Add(s.ttl)
}

// evictOldestLocked removes the earliest inserted token that is still
// present. Order entries whose token was already revoked or expired are
// skipped and dropped.
func (s *SessionStore) evictOldestLocked() {
	for len(s.order) > 0 {
		oldest := s.order[0]
		s.order = s.order[1:]
		if _, ok := s.expiries[oldest]; ok {
			delete(s.expiries, oldest)
			return
		}
	}
}

// Valid reports whether token identifies a live session. An expired
// token is deleted on read; the caller cannot distinguish expired from
// never-issued.
func (s *SessionStore) Valid(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.expiries[token]
	if !ok {
		return false
	}
	if s.now().After(expiry) {
		delete(s.expiries, token)
		return false
	}
	return true
}

// Revoke removes token unconditionally. Revoking an absent token is a
// no-op.
func (s *SessionStore) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.expiries, token)
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expiries)
}

// Sweep removes every expired session and compacts the insertion-order
// list. It bounds memory even for tokens that are stored but never
// re-checked.
func (s *SessionStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for token, expiry := range s.expiries {
		if now.After(expiry) {
			delete(s.expiries, token)
		}
	}
	kept := s.order[:0]
	for _, token := range s.order {
		if _, ok := s.expiries[token]; ok {
			kept = append(kept, token)
		}
	}
	s.order = kept
}

// StartSweeper runs Sweep every interval on a background goroutine.
// The returned stop function cancels the sweeper and is safe to call
// more than once.
func (s *SessionStore) StartSweeper(interval time.Duration) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}
