package pubsub

import "fmt"

// Channel naming conventions for the live streaming system.
const (
	// Lifecycle controller -> signaling relay channels
	ChannelStreamLifecycle = "live:stream:%s:lifecycle"

	// Pattern matching every stream's lifecycle channel.
	PatternStreamLifecycle = "live:stream:*:lifecycle"
)

// Lifecycle event types.
const (
	EventStreamStarted = "stream_started"
	EventStreamEnded   = "stream_ended"
)

// StreamLifecycleChannel returns the lifecycle channel name for a stream.
func StreamLifecycleChannel(streamID string) string {
	return fmt.Sprintf(ChannelStreamLifecycle, streamID)
}

// StreamStartedPayload is published when a stream transitions to live.
type StreamStartedPayload struct {
	StreamID      string `json:"stream_id"`
	BroadcasterID string `json:"broadcaster_id"`
}

// StreamEndedPayload is published when a stream transitions to ended.
// MemberIDs snapshots the room membership at close time, since the room
// itself is already gone by the time subscribers see the event.
type StreamEndedPayload struct {
	StreamID      string   `json:"stream_id"`
	BroadcasterID string   `json:"broadcaster_id"`
	MemberIDs     []string `json:"member_ids"`
	ViewerCount   int      `json:"viewer_count"`
}
