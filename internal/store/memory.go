// internal/store/memory.go
//
// In-memory session store for live rounds and boards.
//
// Characteristics:
//   - Generic over the session type; keyed by the session's ID.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts; nothing is written to disk.
//   - Missing IDs return ErrNotFound.
//   - Save and Get mark a session as touched; Sweep drops idle ones.

package store

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned by Get for unknown IDs.
var ErrNotFound = errors.New("not found")

// Session is anything addressable by a stable ID.
type Session interface {
	SessionID() string
}

// Store defines the persistence interface for game sessions.
type Store[T Session] interface {
	// Save persists or updates a session.
	Save(ctx context.Context, s T) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (T, error)

	// Delete forgets a session. Unknown IDs are ignored.
	Delete(ctx context.Context, id string) error

	// Len reports how many sessions are held.
	Len() int

	// Sweep forgets every session not touched since cutoff and reports how
	// many were dropped.
	Sweep(ctx context.Context, cutoff time.Time) int
}

type entry[T Session] struct {
	session T
	touched time.Time
}

// memory is an in-memory map-based Store implementation.
type memory[T Session] struct {
	mu       sync.RWMutex // guards sessions
	sessions map[string]entry[T]
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore[T Session]() Store[T] {
	return newMemoryStore[T](time.Now)
}

func newMemoryStore[T Session](now func() time.Time) *memory[T] {
	return &memory[T]{sessions: make(map[string]entry[T]), now: now}
}

func (m *memory[T]) Save(ctx context.Context, s T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.SessionID()] = entry[T]{session: s, touched: m.now()}
	return nil
}

// Get takes the write lock because it refreshes the touched time.
func (m *memory[T]) Get(ctx context.Context, id string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[id]; ok {
		e.touched = m.now()
		m.sessions[id] = e
		return e.session, nil
	}
	var zero T
	return zero, ErrNotFound
}

func (m *memory[T]) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *memory[T]) Sweep(ctx context.Context, cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.sessions {
		if e.touched.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}
