package seasons

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Clock lets tests control draft expiry.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type storeEntry struct {
	wizard   *Wizard
	lastSeen time.Time
}

// Store keeps open wizards by draft id until they are closed or idle past
// the TTL.
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   Clock
	entries map[string]*storeEntry
}

func NewStore(ttl time.Duration, clock Clock) *Store {
	if clock == nil {
		clock = realClock{}
	}
	return &Store{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]*storeEntry),
	}
}

// Put registers w and returns its new draft id.
func (s *Store) Put(w *Wizard) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = &storeEntry{wizard: w, lastSeen: s.clock.Now()}
	return id
}

// Get returns the wizard for id and refreshes its idle timer.
func (s *Store) Get(id string) (*Wizard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	now := s.clock.Now()
	if s.expired(entry, now) {
		delete(s.entries, id)
		return nil, false
	}
	entry.lastSeen = now
	return entry.wizard, true
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Expire drops every idle or closed wizard and returns how many were removed.
func (s *Store) Expire() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	removed := 0
	for id, entry := range s.entries {
		if s.expired(entry, now) || entry.wizard.View().Step == StepClosed {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) expired(entry *storeEntry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(entry.lastSeen) > s.ttl
}
