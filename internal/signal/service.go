package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/firdaus0729/shoplive/internal/domain"
	"github.com/firdaus0729/shoplive/internal/hub"
	"github.com/firdaus0729/shoplive/internal/kafka"
	"github.com/firdaus0729/shoplive/internal/registry"
	"github.com/firdaus0729/shoplive/internal/room"
	pkglog "github.com/firdaus0729/shoplive/pkg/log"
	"github.com/firdaus0729/shoplive/pkg/pubsub"
)

type service struct {
	sender   Sender
	registry registry.Registry
	rooms    room.Store
	pubsub   pubsub.PubSub
	producer kafka.StreamEventProducer // optional, may be nil

	cancel context.CancelFunc
}

// NewService creates the signaling relay. producer may be nil, in which
// case comment events are not exported.
func NewService(
	sender Sender,
	reg registry.Registry,
	rooms room.Store,
	ps pubsub.PubSub,
	producer kafka.StreamEventProducer,
) Service {
	return &service{
		sender:   sender,
		registry: reg,
		rooms:    rooms,
		pubsub:   ps,
		producer: producer,
	}
}

// HandleJoin adds the client to the stream's room. Joining a stream that
// is not live is silently ignored: the stream may have ended while the
// join message was in flight, and the client will learn the stream is
// gone through other channels.
func (s *service) HandleJoin(ctx context.Context, c *hub.Client, streamID string) error {
	info, ok, err := s.rooms.Info(ctx, streamID)
	if err != nil {
		return fmt.Errorf("failed to look up room: %w", err)
	}
	if !ok {
		return nil
	}

	// Leave the previous room first if the client is switching streams.
	if current := c.Session.CurrentStream(); current != "" && current != streamID {
		if err := s.HandleLeave(ctx, c, current); err != nil {
			l := pkglog.L()
			l.Error().Err(err).Str("stream_id", current).Msg("failed to leave previous room")
		}
	}

	userID := c.Session.UserID

	if err := s.rooms.AddMember(ctx, streamID, userID); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	c.Session.JoinStream(streamID)

	// The broadcaster joining their own room is not a viewer.
	if userID == info.BroadcasterID {
		return nil
	}

	count, err := s.rooms.AddViewer(ctx, streamID, userID)
	if err != nil {
		return fmt.Errorf("failed to add viewer: %w", err)
	}

	s.sendToUser(ctx, info.BroadcasterID, &domain.ViewerJoinedMessage{
		Type:        domain.MsgTypeViewerJoined,
		StreamID:    streamID,
		ViewerID:    userID,
		ViewerCount: count,
	})
	s.fanOutViewerCount(ctx, streamID, count)

	return nil
}

// HandleLeave removes the client from the stream's room. Leaving a room
// the client is not in is a no-op.
func (s *service) HandleLeave(ctx context.Context, c *hub.Client, streamID string) error {
	if c.Session.CurrentStream() != streamID {
		return nil
	}
	c.Session.LeaveStream()

	userID := c.Session.UserID
	if err := s.rooms.RemoveMember(ctx, streamID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	info, ok, err := s.rooms.Info(ctx, streamID)
	if err != nil {
		return fmt.Errorf("failed to look up room: %w", err)
	}
	if !ok || userID == info.BroadcasterID {
		return nil
	}

	count, err := s.rooms.RemoveViewer(ctx, streamID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove viewer: %w", err)
	}

	s.sendToUser(ctx, info.BroadcasterID, &domain.ViewerLeftMessage{
		Type:        domain.MsgTypeViewerLeft,
		StreamID:    streamID,
		ViewerID:    userID,
		ViewerCount: count,
	})
	s.fanOutViewerCount(ctx, streamID, count)

	return nil
}

// HandleOffer relays an SDP offer to a single viewer. Only the stream's
// broadcaster may send offers. An unreachable viewer is dropped silently:
// the broadcaster will retry when the viewer rejoins.
func (s *service) HandleOffer(ctx context.Context, c *hub.Client, streamID, viewerID string, payload json.RawMessage) error {
	info, ok, err := s.rooms.Info(ctx, streamID)
	if err != nil {
		return fmt.Errorf("failed to look up room: %w", err)
	}
	if !ok {
		return nil
	}

	if c.Session.UserID != info.BroadcasterID {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeForbidden, "Only the broadcaster can send offers"))
	}

	s.sendToUser(ctx, viewerID, &domain.StreamOfferMessage{
		Type:          domain.MsgTypeStreamOffer,
		StreamID:      streamID,
		BroadcasterID: c.Session.UserID,
		Payload:       payload,
	})
	return nil
}

// HandleAnswer relays a viewer's SDP answer to the broadcaster.
func (s *service) HandleAnswer(ctx context.Context, c *hub.Client, streamID string, payload json.RawMessage) error {
	info, ok, err := s.rooms.Info(ctx, streamID)
	if err != nil {
		return fmt.Errorf("failed to look up room: %w", err)
	}
	if !ok {
		return nil
	}

	s.sendToUser(ctx, info.BroadcasterID, &domain.StreamAnswerMessage{
		Type:     domain.MsgTypeStreamAnswer,
		StreamID: streamID,
		ViewerID: c.Session.UserID,
		Payload:  payload,
	})
	return nil
}

// HandleICECandidate relays an ICE candidate to the target user. The
// sender identity is stamped server-side; clients cannot spoof fromUserId.
func (s *service) HandleICECandidate(ctx context.Context, c *hub.Client, streamID, targetUserID string, payload json.RawMessage) error {
	if c.Session.CurrentStream() != streamID {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeForbidden, "Not in this stream's room"))
	}

	s.sendToUser(ctx, targetUserID, &domain.StreamICECandidateMessage{
		Type:       domain.MsgTypeStreamICECandidate,
		StreamID:   streamID,
		FromUserID: c.Session.UserID,
		Payload:    payload,
	})
	return nil
}

// HandleComment fans a comment out to every room member, the sender
// included. Author identity and timestamp are stamped server-side.
func (s *service) HandleComment(ctx context.Context, c *hub.Client, streamID, text string) error {
	if c.Session.CurrentStream() != streamID {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeForbidden, "Not in this stream's room"))
	}
	if text == "" {
		return c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Comment text is required"))
	}

	msg := &domain.NewCommentMessage{
		Type:      domain.MsgTypeNewComment,
		StreamID:  streamID,
		Text:      text,
		UserID:    c.Session.UserID,
		UserName:  c.Session.Username,
		CreatedAt: time.Now(),
	}

	members, err := s.rooms.Members(ctx, streamID)
	if err != nil {
		return fmt.Errorf("failed to list members: %w", err)
	}
	for _, userID := range members {
		s.sendToUser(ctx, userID, msg)
	}

	if s.producer != nil {
		if err := s.producer.ProduceComment(ctx, streamID, c.Session.UserID, text); err != nil {
			l := pkglog.L()
			l.Error().Err(err).Str("stream_id", streamID).Msg("failed to produce comment event")
		}
	}

	return nil
}

// HandleDisconnect tears down the connection's registry entry and room
// membership. If the user has already reconnected on a newer socket, the
// room membership belongs to the new connection and is left alone.
func (s *service) HandleDisconnect(ctx context.Context, c *hub.Client) error {
	userID := c.Session.UserID

	current, err := s.registry.Resolve(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve connection: %w", err)
	}

	if err := s.registry.Unregister(ctx, userID, c.ID); err != nil {
		return fmt.Errorf("failed to unregister connection: %w", err)
	}

	if current != c.ID {
		// Stale socket of a reconnected user.
		return nil
	}

	if streamID := c.Session.CurrentStream(); streamID != "" {
		return s.HandleLeave(ctx, c, streamID)
	}
	return nil
}

// Start subscribes to stream lifecycle events so room members hear about
// streams starting and ending, regardless of which instance handled the
// HTTP request that changed the stream's state.
func (s *service) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	eventCh, err := s.pubsub.SubscribePattern(ctx, pubsub.PatternStreamLifecycle)
	if err != nil {
		return fmt.Errorf("failed to subscribe to lifecycle events: %w", err)
	}

	go s.handleLifecycleEvents(ctx, eventCh)

	l := pkglog.L()
	l.Info().Msg("signal service started, subscribed to lifecycle events")
	return nil
}

func (s *service) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

func (s *service) handleLifecycleEvents(ctx context.Context, eventCh <-chan *pubsub.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventCh:
			if !ok {
				return
			}
			s.processLifecycleEvent(ctx, event)
		}
	}
}

func (s *service) processLifecycleEvent(ctx context.Context, event *pubsub.Event) {
	l := pkglog.L()

	switch event.Type {
	case pubsub.EventStreamStarted:
		var payload pubsub.StreamStartedPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			l.Error().Err(err).Msg("failed to unmarshal stream started event")
			return
		}
		s.handleStreamStarted(ctx, payload)

	case pubsub.EventStreamEnded:
		var payload pubsub.StreamEndedPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			l.Error().Err(err).Msg("failed to unmarshal stream ended event")
			return
		}
		s.handleStreamEnded(ctx, payload)
	}
}

func (s *service) handleStreamStarted(ctx context.Context, payload pubsub.StreamStartedPayload) {
	members, err := s.rooms.Members(ctx, payload.StreamID)
	if err != nil {
		l := pkglog.L()
		l.Error().Err(err).Str("stream_id", payload.StreamID).Msg("failed to list members")
		return
	}

	msg := &domain.StreamStartedMessage{
		Type:     domain.MsgTypeStreamStarted,
		StreamID: payload.StreamID,
	}
	for _, userID := range members {
		s.sendToUser(ctx, userID, msg)
	}
}

// handleStreamEnded notifies everyone who was in the room when it closed.
// The room itself is already gone, so the membership travels in the event.
func (s *service) handleStreamEnded(ctx context.Context, payload pubsub.StreamEndedPayload) {
	msg := &domain.StreamEndedMessage{
		Type:     domain.MsgTypeStreamEnded,
		StreamID: payload.StreamID,
	}
	for _, userID := range payload.MemberIDs {
		s.sendToUser(ctx, userID, msg)
	}
}

func (s *service) fanOutViewerCount(ctx context.Context, streamID string, count int) {
	members, err := s.rooms.Members(ctx, streamID)
	if err != nil {
		l := pkglog.L()
		l.Error().Err(err).Str("stream_id", streamID).Msg("failed to list members")
		return
	}

	msg := &domain.ViewerCountMessage{
		Type:        domain.MsgTypeViewerCount,
		StreamID:    streamID,
		ViewerCount: count,
	}
	for _, userID := range members {
		s.sendToUser(ctx, userID, msg)
	}
}

// sendToUser resolves the user's connection and delivers the message.
// Users without a registered connection are skipped silently.
func (s *service) sendToUser(ctx context.Context, userID string, message interface{}) {
	l := pkglog.L()

	connID, err := s.registry.Resolve(ctx, userID)
	if err != nil {
		l.Error().Err(err).Str("user_id", userID).Msg("failed to resolve connection")
		return
	}
	if connID == "" {
		return
	}
	if err := s.sender.Send(connID, message); err != nil {
		l.Error().Err(err).Str("user_id", userID).Msg("failed to send message")
	}
}
