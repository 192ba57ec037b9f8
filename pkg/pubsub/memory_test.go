package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvEvent(t *testing.T, ch <-chan *Event) *Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestMemoryPubSubDeliversToChannelSubscriber(t *testing.T) {
	ps := NewMemoryPubSub()
	defer ps.Close()
	ctx := context.Background()

	ch, err := ps.Subscribe(ctx, StreamLifecycleChannel("s1"))
	require.NoError(t, err)

	ev, err := NewEvent(EventStreamStarted, "s1", &StreamStartedPayload{StreamID: "s1", BroadcasterID: "b1"})
	require.NoError(t, err)
	require.NoError(t, ps.Publish(ctx, StreamLifecycleChannel("s1"), ev))

	got := recvEvent(t, ch)
	assert.Equal(t, EventStreamStarted, got.Type)
	assert.Equal(t, "s1", got.StreamID)

	var payload StreamStartedPayload
	require.NoError(t, got.UnmarshalPayload(&payload))
	assert.Equal(t, "b1", payload.BroadcasterID)
}

func TestMemoryPubSubPatternSubscription(t *testing.T) {
	ps := NewMemoryPubSub()
	defer ps.Close()
	ctx := context.Background()

	ch, err := ps.SubscribePattern(ctx, PatternStreamLifecycle)
	require.NoError(t, err)

	ev, err := NewEvent(EventStreamEnded, "s2", &StreamEndedPayload{StreamID: "s2"})
	require.NoError(t, err)
	require.NoError(t, ps.Publish(ctx, StreamLifecycleChannel("s2"), ev))

	got := recvEvent(t, ch)
	assert.Equal(t, EventStreamEnded, got.Type)
	assert.Equal(t, "s2", got.StreamID)
}

func TestMemoryPubSubPatternDoesNotMatchOtherChannels(t *testing.T) {
	ps := NewMemoryPubSub()
	defer ps.Close()
	ctx := context.Background()

	ch, err := ps.SubscribePattern(ctx, PatternStreamLifecycle)
	require.NoError(t, err)

	ev, err := NewEvent("noise", "s1", nil)
	require.NoError(t, err)
	require.NoError(t, ps.Publish(ctx, "live:other:s1:events", ev))

	select {
	case got := <-ch:
		t.Fatalf("unexpected event %q on non-matching channel", got.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMatchPattern(t *testing.T) {
	cases := []struct {
		pattern string
		channel string
		want    bool
	}{
		{"live:stream:*:lifecycle", "live:stream:abc:lifecycle", true},
		{"live:stream:*:lifecycle", "live:stream::lifecycle", true},
		{"live:stream:*:lifecycle", "live:stream:abc:other", false},
		{"exact", "exact", true},
		{"exact", "exactly", false},
		{"*", "anything", true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, matchPattern(tc.pattern, tc.channel), "pattern=%s channel=%s", tc.pattern, tc.channel)
	}
}
