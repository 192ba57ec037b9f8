package room

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, "s1", "b1"))

	count, err := s.AddViewer(ctx, "s1", "v1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Re-creating must not reset the viewer set.
	require.NoError(t, s.Create(ctx, "s1", "b1"))

	info, ok, err := s.Info(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b1", info.BroadcasterID)
	assert.Equal(t, 1, info.ViewerCount)
}

func TestAddViewerIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, "s1", "b1"))

	first, err := s.AddViewer(ctx, "s1", "v1")
	require.NoError(t, err)
	second, err := s.AddViewer(ctx, "s1", "v1")
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}

func TestRemoveViewerIsNoOpWhenAbsent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, "s1", "b1"))

	_, err := s.AddViewer(ctx, "s1", "v1")
	require.NoError(t, err)

	count, err := s.RemoveViewer(ctx, "s1", "ghost")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestViewerCountTracksJoinsAndLeaves(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, "s1", "b1"))

	joins := []string{"v1", "v2", "v3", "v2", "v4"}
	leaves := []string{"v3", "v5"}

	for _, v := range joins {
		_, err := s.AddViewer(ctx, "s1", v)
		require.NoError(t, err)
	}
	for _, v := range leaves {
		_, err := s.RemoveViewer(ctx, "s1", v)
		require.NoError(t, err)
	}

	info, ok, err := s.Info(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	// v1, v2, v4 joined and never left.
	assert.Equal(t, 3, info.ViewerCount)
}

func TestInfoReturnsNotOKForUnknownRoom(t *testing.T) {
	s := NewMemoryStore()

	_, ok, err := s.Info(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMembersTracksGroupSeparatelyFromViewers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, "s1", "b1"))

	require.NoError(t, s.AddMember(ctx, "s1", "b1"))
	require.NoError(t, s.AddMember(ctx, "s1", "v1"))
	_, err := s.AddViewer(ctx, "s1", "v1")
	require.NoError(t, err)

	members, err := s.Members(ctx, "s1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b1", "v1"}, members)

	info, _, err := s.Info(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, info.ViewerCount)
}

func TestCloseDiscardsStateAndReturnsMembers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, "s1", "b1"))
	require.NoError(t, s.AddMember(ctx, "s1", "b1"))
	require.NoError(t, s.AddMember(ctx, "s1", "v1"))

	members, err := s.Close(ctx, "s1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b1", "v1"}, members)

	_, ok, err := s.Info(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)

	// Mutations against a closed room are no-ops.
	count, err := s.AddViewer(ctx, "s1", "v2")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
