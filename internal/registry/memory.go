package registry

import (
	"context"
	"sync"
)

// MemoryRegistry is the single-instance, in-process Registry.
type MemoryRegistry struct {
	mu      sync.RWMutex
	entries map[string]string // userID -> connectionID
}

// NewMemoryRegistry creates an in-process connection registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{entries: make(map[string]string)}
}

func (r *MemoryRegistry) Register(ctx context.Context, userID, connectionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[userID] = connectionID
	return nil
}

func (r *MemoryRegistry) Unregister(ctx context.Context, userID, connectionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.entries[userID]; ok && current == connectionID {
		delete(r.entries, userID)
	}
	return nil
}

func (r *MemoryRegistry) Resolve(ctx context.Context, userID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[userID], nil
}

func (r *MemoryRegistry) Close() error {
	return nil
}
