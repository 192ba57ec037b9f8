package pubsub

import (
	"context"
	"strings"
	"sync"
)

// MemoryPubSub implements PubSub in-process. It is the single-instance
// default; deployments running more than one instance swap in RedisPubSub.
type MemoryPubSub struct {
	mu       sync.RWMutex
	channels map[string][]chan *Event
	patterns map[string][]chan *Event
	closed   bool
}

// NewMemoryPubSub creates a new in-process PubSub instance.
func NewMemoryPubSub() *MemoryPubSub {
	return &MemoryPubSub{
		channels: make(map[string][]chan *Event),
		patterns: make(map[string][]chan *Event),
	}
}

// Publish delivers the event to all channel and pattern subscribers.
// Delivery is best-effort: a subscriber with a full buffer misses the event.
func (m *MemoryPubSub) Publish(ctx context.Context, channel string, event *Event) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil
	}

	for _, ch := range m.channels[channel] {
		select {
		case ch <- event:
		default:
		}
	}

	for pattern, subs := range m.patterns {
		if !matchPattern(pattern, channel) {
			continue
		}
		for _, ch := range subs {
			select {
			case ch <- event:
			default:
			}
		}
	}

	return nil
}

// Subscribe subscribes to a specific channel.
func (m *MemoryPubSub) Subscribe(ctx context.Context, channel string) (<-chan *Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan *Event, 100)
	m.channels[channel] = append(m.channels[channel], ch)
	return ch, nil
}

// SubscribePattern subscribes to channels matching a glob pattern,
// with the same '*' semantics as Redis PSUBSCRIBE.
func (m *MemoryPubSub) SubscribePattern(ctx context.Context, pattern string) (<-chan *Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan *Event, 100)
	m.patterns[pattern] = append(m.patterns[pattern], ch)
	return ch, nil
}

// Unsubscribe drops all subscribers for a channel or pattern.
func (m *MemoryPubSub) Unsubscribe(ctx context.Context, channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ch := range m.channels[channel] {
		close(ch)
	}
	delete(m.channels, channel)

	for _, ch := range m.patterns[channel] {
		close(ch)
	}
	delete(m.patterns, channel)

	return nil
}

// Close closes all subscriber channels.
func (m *MemoryPubSub) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	for _, subs := range m.channels {
		for _, ch := range subs {
			close(ch)
		}
	}
	for _, subs := range m.patterns {
		for _, ch := range subs {
			close(ch)
		}
	}
	m.channels = make(map[string][]chan *Event)
	m.patterns = make(map[string][]chan *Event)

	return nil
}

// matchPattern matches a channel name against a glob pattern where '*'
// matches any run of characters.
func matchPattern(pattern, channel string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == channel
	}

	if !strings.HasPrefix(channel, parts[0]) {
		return false
	}
	channel = channel[len(parts[0]):]

	for i := 1; i < len(parts)-1; i++ {
		idx := strings.Index(channel, parts[i])
		if idx < 0 {
			return false
		}
		channel = channel[idx+len(parts[i]):]
	}

	return strings.HasSuffix(channel, parts[len(parts)-1])
}
