package room

import (
	"context"
	"sync"
)

type memoryRoom struct {
	streamID      string
	broadcasterID string
	viewers       map[string]struct{}
	members       map[string]struct{}
}

// MemoryStore is the single-instance, in-process room store. Every
// mutation is a single synchronous map operation under the lock, so
// counts read immediately after a mutation are exact.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*memoryRoom // streamID -> room
}

// NewMemoryStore creates an in-process room store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]*memoryRoom)}
}

func (s *MemoryStore) Create(ctx context.Context, streamID, broadcasterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[streamID]; ok {
		return nil
	}
	s.rooms[streamID] = &memoryRoom{
		streamID:      streamID,
		broadcasterID: broadcasterID,
		viewers:       make(map[string]struct{}),
		members:       make(map[string]struct{}),
	}
	return nil
}

func (s *MemoryStore) AddViewer(ctx context.Context, streamID, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[streamID]
	if !ok {
		return 0, nil
	}
	r.viewers[userID] = struct{}{}
	return len(r.viewers), nil
}

func (s *MemoryStore) RemoveViewer(ctx context.Context, streamID, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[streamID]
	if !ok {
		return 0, nil
	}
	delete(r.viewers, userID)
	return len(r.viewers), nil
}

func (s *MemoryStore) Info(ctx context.Context, streamID string) (Info, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[streamID]
	if !ok {
		return Info{}, false, nil
	}
	return Info{
		StreamID:      r.streamID,
		BroadcasterID: r.broadcasterID,
		ViewerCount:   len(r.viewers),
	}, true, nil
}

func (s *MemoryStore) AddMember(ctx context.Context, streamID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.rooms[streamID]; ok {
		r.members[userID] = struct{}{}
	}
	return nil
}

func (s *MemoryStore) RemoveMember(ctx context.Context, streamID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.rooms[streamID]; ok {
		delete(r.members, userID)
	}
	return nil
}

func (s *MemoryStore) Members(ctx context.Context, streamID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[streamID]
	if !ok {
		return nil, nil
	}
	members := make([]string, 0, len(r.members))
	for userID := range r.members {
		members = append(members, userID)
	}
	return members, nil
}

func (s *MemoryStore) Close(ctx context.Context, streamID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[streamID]
	if !ok {
		return nil, nil
	}
	members := make([]string, 0, len(r.members))
	for userID := range r.members {
		members = append(members, userID)
	}
	delete(s.rooms, streamID)
	return members, nil
}

func (s *MemoryStore) CloseStore() error {
	return nil
}
