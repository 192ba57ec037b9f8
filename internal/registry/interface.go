package registry

import "context"

// Registry maps an authenticated user to its single live connection.
// A new registration for the same user replaces the prior entry
// (last-connect-wins); closing the replaced socket is the caller's job.
type Registry interface {
	// Register upserts the user's connection entry.
	Register(ctx context.Context, userID, connectionID string) error

	// Unregister removes the user's entry, but only if it still points at
	// connectionID. The guard keeps a stale connection's teardown from
	// evicting a newer registration for the same user.
	Unregister(ctx context.Context, userID, connectionID string) error

	// Resolve returns the user's connection ID, or "" if the user has no
	// live connection.
	Resolve(ctx context.Context, userID string) (string, error)

	Close() error
}
