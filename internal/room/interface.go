package room

import "context"

// Info is the externally visible state of a room.
type Info struct {
	StreamID      string
	BroadcasterID string
	ViewerCount   int
}

// Store tracks per-stream room state: the broadcaster, the viewer set, and
// the broadcast group membership. A room exists only while its stream is
// live. Viewers are keyed by user ID, so the same user on two devices
// counts once.
//
// Membership (everyone who joined, broadcaster included) is distinct from
// the viewer set (members other than the broadcaster); the viewer count is
// always the size of the viewer set, never cached separately.
type Store interface {
	// Create initializes an empty room. Idempotent: creating an existing
	// room leaves it untouched.
	Create(ctx context.Context, streamID, broadcasterID string) error

	// AddViewer adds userID to the viewer set if not already present and
	// returns the resulting count. Re-adding is a no-op (set semantics).
	AddViewer(ctx context.Context, streamID, userID string) (int, error)

	// RemoveViewer removes userID if present and returns the resulting
	// count. Removing an absent viewer is a no-op.
	RemoveViewer(ctx context.Context, streamID, userID string) (int, error)

	// Info returns the room's state, or ok=false if no room exists for
	// streamID (e.g. after the stream ended).
	Info(ctx context.Context, streamID string) (Info, bool, error)

	// AddMember adds userID to the room's broadcast group.
	AddMember(ctx context.Context, streamID, userID string) error

	// RemoveMember removes userID from the broadcast group.
	RemoveMember(ctx context.Context, streamID, userID string) error

	// Members returns the broadcast group membership.
	Members(ctx context.Context, streamID string) ([]string, error)

	// Close discards all state for the room and returns the membership it
	// held, so end-of-stream notifications can still be addressed.
	Close(ctx context.Context, streamID string) ([]string, error)

	CloseStore() error
}
