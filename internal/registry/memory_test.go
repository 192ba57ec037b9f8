package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndResolve(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, "u1", "c1"))

	connID, err := r.Resolve(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "c1", connID)
}

func TestResolveUnknownUserReturnsEmpty(t *testing.T) {
	r := NewMemoryRegistry()

	connID, err := r.Resolve(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, connID)
}

func TestRegisterIsLastConnectWins(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, "u1", "c1"))
	require.NoError(t, r.Register(ctx, "u1", "c2"))

	connID, err := r.Resolve(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "c2", connID)
}

func TestUnregisterRemovesEntry(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, "u1", "c1"))
	require.NoError(t, r.Unregister(ctx, "u1", "c1"))

	connID, err := r.Resolve(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, connID)
}

func TestStaleUnregisterKeepsNewerEntry(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	// User reconnects, then the old socket's teardown fires.
	require.NoError(t, r.Register(ctx, "u1", "c1"))
	require.NoError(t, r.Register(ctx, "u1", "c2"))
	require.NoError(t, r.Unregister(ctx, "u1", "c1"))

	connID, err := r.Resolve(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "c2", connID)
}
