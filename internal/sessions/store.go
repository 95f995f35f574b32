package sessions

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tarofit/fitcoach/internal/workout"
)

// DefaultTTL is how long an idle client session is kept around.
const DefaultTTL = 30 * time.Minute

// Entry is one client's workout session plus its access lock. Frames
// from the same client are serialized through the entry mutex, frames
// from different clients run concurrently.
type Entry struct {
	mux     sync.Mutex
	session *workout.Session
	// unix nano of the last access, atomic so the cleaner can read it
	// without taking the entry lock
	lastSeen atomic.Int64
}

// Do runs fn with exclusive access to the entry's session and refreshes
// the idle timestamp.
func (e *Entry) Do(fn func(s *workout.Session)) {
	e.mux.Lock()
	defer e.mux.Unlock()
	e.lastSeen.Store(time.Now().UnixNano())
	fn(e.session)
}

// Store keeps per-client workout sessions in memory, keyed by client ID,
// and evicts the ones idle for longer than the TTL.
type Store struct {
	mux     sync.RWMutex
	entries map[string]*Entry
	ttl     time.Duration
	tuning  func() *workout.Tuning
}

// NewStore creates a session store. The tuning func is consulted each
// time a new counter is built, so tuning updates apply to sessions
// created after them. A nil func means defaults.
func NewStore(ttl time.Duration, tuning func() *workout.Tuning) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if tuning == nil {
		tuning = func() *workout.Tuning { return nil }
	}
	return &Store{
		entries: make(map[string]*Entry),
		ttl:     ttl,
		tuning:  tuning,
	}
}

// Get returns the entry for the client, creating a fresh session in the
// given mode when the client is new.
func (s *Store) Get(clientID string, mode workout.Mode) *Entry {
	s.mux.RLock()
	e, ok := s.entries[clientID]
	s.mux.RUnlock()
	if ok {
		return e
	}

	s.mux.Lock()
	defer s.mux.Unlock()
	if e, ok := s.entries[clientID]; ok {
		return e
	}

	log.Debugf("sessions store: new client %s, mode %s", clientID, mode)
	e = &Entry{session: workout.NewSession(mode, s.tuning(), nil)}
	e.lastSeen.Store(time.Now().UnixNano())
	s.entries[clientID] = e
	return e
}

// Lookup returns the entry for the client without creating one.
func (s *Store) Lookup(clientID string) (*Entry, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	e, ok := s.entries[clientID]
	return e, ok
}

// Remove drops the client's session.
func (s *Store) Remove(clientID string) {
	s.mux.Lock()
	defer s.mux.Unlock()
	delete(s.entries, clientID)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return len(s.entries)
}

// ScanAndClean evicts all sessions idle for longer than the TTL and
// returns how many were removed.
func (s *Store) ScanAndClean() int {
	s.mux.Lock()
	defer s.mux.Unlock()

	var removed int
	now := time.Now()
	for clientID, e := range s.entries {
		if now.Sub(time.Unix(0, e.lastSeen.Load())) > s.ttl {
			delete(s.entries, clientID)
			removed++
		}
	}
	if removed > 0 {
		log.Debugf("=> sessions store, scan and clean: %d idle sessions removed, %d left", removed, len(s.entries))
	}
	return removed
}

// RunCleanup runs ScanAndClean on the given interval until the context
// is done. Meant to be started as a goroutine.
func (s *Store) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debugln("sessions store cleanup: stopping")
			return
		case <-ticker.C:
			s.ScanAndClean()
		}
	}
}
