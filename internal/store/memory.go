package store

import (
	"context"
	"sync"

	"github.com/fpang/roomedit/internal/roomedit"
)

// MemoryStore keeps room states in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]*roomedit.ImageState
}

var _ StateStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*roomedit.ImageState)}
}

// GetState implements StateStore.
func (m *MemoryStore) GetState(_ context.Context, roomID string) (*roomedit.ImageState, error) {
	if err := ValidateRoomID(roomID); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneState(m.states[roomID]), nil
}

// PutState implements StateStore.
func (m *MemoryStore) PutState(_ context.Context, roomID string, state *roomedit.ImageState) error {
	if err := ValidateRoomID(roomID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[roomID] = cloneState(state)
	return nil
}
