package domain

import (
	"sync"
	"time"
)

// Session represents an authenticated WebSocket session. Authentication
// happens at upgrade time, so a Session always carries a resolved identity.
type Session struct {
	ID            string // connection ID
	UserID        string
	Username      string
	currentStream string
	createdAt     time.Time
	lastActiveAt  time.Time
	mu            sync.RWMutex
}

// NewSession creates a session for a verified identity.
func NewSession(connID, userID, username string) *Session {
	now := time.Now()
	return &Session{
		ID:           connID,
		UserID:       userID,
		Username:     username,
		createdAt:    now,
		lastActiveAt: now,
	}
}

// JoinStream records the stream the session is currently in.
func (s *Session) JoinStream(streamID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentStream = streamID
	s.lastActiveAt = time.Now()
}

// LeaveStream clears the current stream.
func (s *Session) LeaveStream() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentStream = ""
	s.lastActiveAt = time.Now()
}

// CurrentStream returns the stream the session has joined, if any.
func (s *Session) CurrentStream() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentStream
}

// UpdateActivity updates the last active timestamp.
func (s *Session) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActiveAt = time.Now()
}
