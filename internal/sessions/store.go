// Package sessions keeps live onboarding sessions in memory and expires the
// idle ones.
package sessions

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("session not found")
	ErrStoreFull = errors.New("session limit reached")
)

// Closer is implemented by values that hold timers or goroutines
type Closer interface {
	Close() error
}

// Store holds sessions with a sliding idle TTL
type Store[T Closer] struct {
	data        map[uuid.UUID]*entry[T]
	ttl         time.Duration
	maxSessions int
	mu          sync.RWMutex
	now         func() time.Time
}

// entry represents a stored session with expiration
type entry[T Closer] struct {
	value      T
	expiration time.Time
}

// NewStore creates a new session store. A maxSessions of zero means no limit.
func NewStore[T Closer](ttl time.Duration, maxSessions int) *Store[T] {
	return &Store[T]{
		data:        make(map[uuid.UUID]*entry[T]),
		ttl:         ttl,
		maxSessions: maxSessions,
		now:         time.Now,
	}
}

// Get retrieves a session and extends its lifetime
func (s *Store[T]) Get(id uuid.UUID) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	e, ok := s.data[id]
	if !ok {
		return zero, false
	}

	now := s.now()
	if now.After(e.expiration) {
		return zero, false
	}
	e.expiration = now.Add(s.ttl)

	return e.value, true
}

// Put stores a session
func (s *Store[T]) Put(id uuid.UUID, value T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[id]; !exists && s.maxSessions > 0 && len(s.data) >= s.maxSessions {
		return ErrStoreFull
	}

	s.data[id] = &entry[T]{
		value:      value,
		expiration: s.now().Add(s.ttl),
	}
	return nil
}

// Delete removes a session and closes it
func (s *Store[T]) Delete(id uuid.UUID) error {
	s.mu.Lock()
	e, ok := s.data[id]
	delete(s.data, id)
	s.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	return e.value.Close()
}

// Size returns the number of stored sessions, expired ones included
func (s *Store[T]) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data)
}

// Keys returns all session ids
func (s *Store[T]) Keys() []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]uuid.UUID, 0, len(s.data))
	for id := range s.data {
		keys = append(keys, id)
	}
	return keys
}

// Values returns every live session without refreshing its TTL. Expired
// sessions the sweeper has not removed yet are skipped.
func (s *Store[T]) Values() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	values := make([]T, 0, len(s.data))
	for _, e := range s.data {
		if now.After(e.expiration) {
			continue
		}
		values = append(values, e.value)
	}
	return values
}

// RemoveExpired drops and closes expired sessions, returning how many
func (s *Store[T]) RemoveExpired() int {
	s.mu.Lock()
	now := s.now()
	var expired []T
	for id, e := range s.data {
		if now.After(e.expiration) {
			expired = append(expired, e.value)
			delete(s.data, id)
		}
	}
	s.mu.Unlock()

	for _, v := range expired {
		v.Close()
	}
	return len(expired)
}

// CloseAll closes and removes every session
func (s *Store[T]) CloseAll() {
	s.mu.Lock()
	data := s.data
	s.data = make(map[uuid.UUID]*entry[T])
	s.mu.Unlock()

	for _, e := range data {
		e.value.Close()
	}
}
