package roomstore

import (
	"context"
	"sync"
)

// InMemoryRepository keeps provisioned room ids in a map. It backs the relay
// when no database DSN is configured, and tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	rooms map[string]struct{}
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{rooms: make(map[string]struct{})}
}

func (r *InMemoryRepository) Exists(_ context.Context, roomID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[roomID]
	return ok, nil
}

func (r *InMemoryRepository) Create(_ context.Context, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[roomID] = struct{}{}
	return nil
}
