package editor

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// Store persists session state across restarts and evictions.
type Store interface {
	Load(ctx context.Context, id uuid.UUID) (State, error)
	Save(ctx context.Context, s State) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MemoryStore keeps states in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[uuid.UUID]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[uuid.UUID]State)}
}

func (m *MemoryStore) Load(_ context.Context, id uuid.UUID) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.states[id]
	if !ok {
		return State{}, ErrSessionNotFound
	}
	return s, nil
}

func (m *MemoryStore) Save(_ context.Context, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[s.ID] = s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, id)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.states)
}
