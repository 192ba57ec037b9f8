package signal

import (
	"context"
	"encoding/json"

	"github.com/firdaus0729/shoplive/internal/hub"
)

// Sender delivers a message to a specific connection. Implemented by
// hub.Hub; tests substitute a recording fake.
type Sender interface {
	Send(connectionID string, message interface{}) error
}

// Service routes signaling traffic between the broadcaster and viewers of
// a live stream: join/leave bookkeeping, SDP offer/answer relay, ICE
// candidate relay, and comment fan-out.
type Service interface {
	// HandleJoin handles a client joining a stream's room.
	HandleJoin(ctx context.Context, client *hub.Client, streamID string) error

	// HandleLeave handles a client leaving a stream's room.
	HandleLeave(ctx context.Context, client *hub.Client, streamID string) error

	// HandleOffer relays an SDP offer from the broadcaster to one viewer.
	HandleOffer(ctx context.Context, client *hub.Client, streamID, viewerID string, payload json.RawMessage) error

	// HandleAnswer relays an SDP answer from a viewer to the broadcaster.
	HandleAnswer(ctx context.Context, client *hub.Client, streamID string, payload json.RawMessage) error

	// HandleICECandidate relays an ICE candidate to the target user.
	HandleICECandidate(ctx context.Context, client *hub.Client, streamID, targetUserID string, payload json.RawMessage) error

	// HandleComment fans a comment out to everyone in the stream's room.
	HandleComment(ctx context.Context, client *hub.Client, streamID, text string) error

	// HandleDisconnect cleans up after a client's connection drops.
	HandleDisconnect(ctx context.Context, client *hub.Client) error

	// Start starts background goroutines (e.g., lifecycle event subscribers).
	Start(ctx context.Context) error

	// Stop stops background goroutines.
	Stop() error
}
