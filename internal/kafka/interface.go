package kafka

import "context"

// StreamEvent represents a stream state change or activity event consumed
// by downstream services (analytics, moderation, notifications).
type StreamEvent struct {
	Type          string `json:"type"`
	StreamID      string `json:"stream_id"`
	BroadcasterID string `json:"broadcaster_id,omitempty"`
	UserID        string `json:"user_id,omitempty"`
	Text          string `json:"text,omitempty"`
	ViewerCount   int    `json:"viewer_count,omitempty"`
	Timestamp     int64  `json:"timestamp"`
}

// Event types
const (
	EventStreamStarted = "stream_started"
	EventStreamEnded   = "stream_ended"
	EventComment       = "comment"
)

// StreamEventProducer defines the interface for producing stream events.
type StreamEventProducer interface {
	ProduceStreamStarted(ctx context.Context, streamID, broadcasterID string) error
	ProduceStreamEnded(ctx context.Context, streamID, broadcasterID string, viewerCount int) error
	ProduceComment(ctx context.Context, streamID, userID, text string) error
	Close() error
}
