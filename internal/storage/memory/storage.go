package memory

import (
	"context"
	"sync"

	"github.com/mcoot/brettonwoods/internal/model"
	"github.com/mcoot/brettonwoods/internal/storage"
)

// Storage is an in-memory implementation of the storage interface. State
// does not survive a restart.
type Storage struct {
	mu    sync.RWMutex
	state *model.GlobalState
	saves int
}

// New creates a new in-memory storage
func New() *Storage {
	return &Storage{}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) Load(ctx context.Context) (*model.GlobalState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return nil, model.ErrNoState
	}
	return storage.CloneState(s.state), nil
}

func (s *Storage) Save(ctx context.Context, state *model.GlobalState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = storage.CloneState(state)
	s.saves++
	return nil
}

func (s *Storage) Close() error {
	return nil
}

// SaveCount returns how many times Save has been called
func (s *Storage) SaveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
