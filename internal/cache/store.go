package cache

import (
	"sync"
	"time"

	"github.com/dgallion1/regdiff/internal/diff"
)

type entry struct {
	cmp      diff.SectionComparison
	storedAt time.Time
}

// Store is a thread-safe in-memory comparison cache with TTL and a maximum
// entry count. When full, the oldest entry is evicted.
type Store struct {
	mu         sync.Mutex
	entries    map[Key]*entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

func New(ttl time.Duration, maxEntries int) *Store {
	return &Store{
		entries:    make(map[Key]*entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the comparison for k if present and not expired.
func (s *Store) Get(k Key) (diff.SectionComparison, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[k]
	if !ok {
		return diff.SectionComparison{}, false
	}
	if s.expired(e, s.now()) {
		delete(s.entries, k)
		return diff.SectionComparison{}, false
	}
	return e.cmp, true
}

// Put stores cmp under k, replacing any previous entry.
func (s *Store) Put(k Key, cmp diff.SectionComparison) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[k]; !ok && s.maxEntries > 0 {
		for len(s.entries) >= s.maxEntries {
			s.evictOldestLocked()
		}
	}
	s.entries[k] = &entry{cmp: cmp, storedAt: s.now()}
}

// Len returns the number of stored entries, expired ones included until swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Clear drops every entry and returns how many there were.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.entries)
	clear(s.entries)
	return n
}

// Sweep removes expired entries and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for k, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

func (s *Store) expired(e *entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.storedAt) > s.ttl
}

func (s *Store) evictOldestLocked() {
	var oldest Key
	var oldestAt time.Time
	first := true
	for k, e := range s.entries {
		if first || e.storedAt.Before(oldestAt) {
			oldest, oldestAt, first = k, e.storedAt, false
		}
	}
	delete(s.entries, oldest)
}
