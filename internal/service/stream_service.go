package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/firdaus0729/shoplive/internal/audit"
	"github.com/firdaus0729/shoplive/internal/cache"
	"github.com/firdaus0729/shoplive/internal/domain"
	"github.com/firdaus0729/shoplive/internal/kafka"
	"github.com/firdaus0729/shoplive/internal/repository"
	"github.com/firdaus0729/shoplive/internal/room"
	pkglog "github.com/firdaus0729/shoplive/pkg/log"
	"github.com/firdaus0729/shoplive/pkg/pubsub"
)

type streamService struct {
	repo      repository.StreamRepository
	rooms     room.Store
	publisher pubsub.Publisher
	cache     cache.StreamCache         // optional, may be nil
	producer  kafka.StreamEventProducer // optional, may be nil
	cacheTTL  time.Duration
}

// NewStreamService creates the stream lifecycle controller. cache and
// producer may be nil; the service works without them.
func NewStreamService(
	repo repository.StreamRepository,
	rooms room.Store,
	publisher pubsub.Publisher,
	streamCache cache.StreamCache,
	producer kafka.StreamEventProducer,
	cacheTTL time.Duration,
) StreamService {
	return &streamService{
		repo:      repo,
		rooms:     rooms,
		publisher: publisher,
		cache:     streamCache,
		producer:  producer,
		cacheTTL:  cacheTTL,
	}
}

func (s *streamService) CreateStream(ctx context.Context, broadcasterID, broadcasterName string, req *domain.CreateStreamRequest) (*domain.Stream, error) {
	id := uuid.New().String()
	stream := &domain.Stream{
		ID:              id,
		StoreID:         req.StoreID,
		Title:           req.Title,
		Status:          domain.StreamStatusScheduled,
		RoomID:          id,
		BroadcasterID:   broadcasterID,
		BroadcasterName: broadcasterName,
	}

	if err := s.repo.Create(ctx, stream); err != nil {
		return nil, err
	}

	audit.Log(ctx, audit.ActionCreateStream, broadcasterID, stream.ID, "stream created")
	return stream, nil
}

func (s *streamService) StartStream(ctx context.Context, streamID, userID string) (*domain.Stream, error) {
	stream, err := s.getStream(ctx, streamID)
	if err != nil {
		return nil, err
	}
	if stream.BroadcasterID != userID {
		return nil, ErrNotBroadcaster
	}

	switch stream.Status {
	case domain.StreamStatusLive:
		return nil, ErrAlreadyLive
	case domain.StreamStatusEnded:
		return nil, ErrStreamEnded
	}

	now := time.Now()
	if err := s.repo.MarkLive(ctx, streamID, now); err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			// Lost a concurrent start.
			return nil, ErrAlreadyLive
		}
		return nil, err
	}
	stream.Status = domain.StreamStatusLive
	stream.StartTime = &now

	if err := s.rooms.Create(ctx, streamID, stream.BroadcasterID); err != nil {
		return nil, fmt.Errorf("failed to open room: %w", err)
	}

	s.publishLifecycle(ctx, pubsub.EventStreamStarted, streamID, &pubsub.StreamStartedPayload{
		StreamID:      streamID,
		BroadcasterID: stream.BroadcasterID,
	})

	if s.producer != nil {
		if err := s.producer.ProduceStreamStarted(ctx, streamID, stream.BroadcasterID); err != nil {
			l := pkglog.Ctx(ctx)
			l.Error().Err(err).Str(pkglog.FieldStreamID, streamID).Msg("failed to produce stream started event")
		}
	}

	s.invalidateCache(ctx, streamID)
	audit.Log(ctx, audit.ActionStartStream, userID, streamID, "stream started")
	return stream, nil
}

func (s *streamService) StopStream(ctx context.Context, streamID, userID string) (*domain.Stream, error) {
	stream, err := s.getStream(ctx, streamID)
	if err != nil {
		return nil, err
	}
	if stream.BroadcasterID != userID {
		return nil, ErrNotBroadcaster
	}

	switch stream.Status {
	case domain.StreamStatusScheduled:
		return nil, ErrNotLive
	case domain.StreamStatusEnded:
		return nil, ErrStreamEnded
	}

	// Snapshot the final count before the room disappears.
	finalCount := stream.ViewerCount
	if info, ok, err := s.rooms.Info(ctx, streamID); err == nil && ok {
		finalCount = info.ViewerCount
	}

	// End the stream in the database first. If that fails the stream is
	// still live and the room must survive, so the room is only closed
	// once the transition has committed.
	now := time.Now()
	if err := s.repo.MarkEnded(ctx, streamID, now, finalCount); err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return nil, ErrStreamEnded
		}
		return nil, err
	}

	members, err := s.rooms.Close(ctx, streamID)
	if err != nil {
		return nil, fmt.Errorf("failed to close room: %w", err)
	}
	stream.Status = domain.StreamStatusEnded
	stream.EndedAt = &now
	stream.ViewerCount = finalCount

	s.publishLifecycle(ctx, pubsub.EventStreamEnded, streamID, &pubsub.StreamEndedPayload{
		StreamID:      streamID,
		BroadcasterID: stream.BroadcasterID,
		MemberIDs:     members,
		ViewerCount:   finalCount,
	})

	if s.producer != nil {
		if err := s.producer.ProduceStreamEnded(ctx, streamID, stream.BroadcasterID, finalCount); err != nil {
			l := pkglog.Ctx(ctx)
			l.Error().Err(err).Str(pkglog.FieldStreamID, streamID).Msg("failed to produce stream ended event")
		}
	}

	s.invalidateCache(ctx, streamID)
	audit.LogWithDetail(ctx, audit.ActionStopStream, userID, streamID,
		fmt.Sprintf("final_viewer_count=%d", finalCount), "stream stopped")
	return stream, nil
}

func (s *streamService) GetStream(ctx context.Context, streamID string) (*domain.Stream, error) {
	// Live streams are never served from cache: the viewer count moves
	// with the room and a cached copy would freeze it for the TTL.
	if s.cache != nil {
		if result, err := s.cache.Get(ctx, s.cache.BuildKeyByID(streamID)); err == nil {
			if result.Stream.Status != domain.StreamStatusLive {
				stream := result.Stream
				return &stream, nil
			}
		}
	}

	stream, err := s.getStream(ctx, streamID)
	if err != nil {
		return nil, err
	}

	// While live, the room holds the authoritative count; keep the
	// database snapshot roughly current for listings.
	if stream.Status == domain.StreamStatusLive {
		if info, ok, err := s.rooms.Info(ctx, streamID); err == nil && ok && info.ViewerCount != stream.ViewerCount {
			stream.ViewerCount = info.ViewerCount
			if err := s.repo.UpdateViewerCount(ctx, streamID, info.ViewerCount); err != nil {
				l := pkglog.Ctx(ctx)
				l.Error().Err(err).Str(pkglog.FieldStreamID, streamID).Msg("failed to write back viewer count")
			}
		}
	}

	if s.cache != nil && stream.Status != domain.StreamStatusLive {
		key := s.cache.BuildKeyByID(streamID)
		if err := s.cache.Set(ctx, key, &cache.StreamCacheResult{Stream: *stream}, s.cacheTTL); err != nil {
			l := pkglog.Ctx(ctx)
			l.Error().Err(err).Str(pkglog.FieldStreamID, streamID).Msg("failed to cache stream")
		}
	}

	return stream, nil
}

func (s *streamService) ListStreams(ctx context.Context, req *domain.ListStreamsRequest) (*domain.ListStreamsResponse, error) {
	streams, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	responses := make([]domain.StreamResponse, 0, len(streams))
	for _, stream := range streams {
		// The persisted count lags behind the room while a stream is
		// live; overlay the room's count, best effort.
		if stream.Status == domain.StreamStatusLive {
			if info, ok, err := s.rooms.Info(ctx, stream.ID); err == nil && ok {
				stream.ViewerCount = info.ViewerCount
			}
		}
		responses = append(responses, stream.ToResponse())
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.ListStreamsResponse{
		Streams:    responses,
		Total:      int(total),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *streamService) getStream(ctx context.Context, streamID string) (*domain.Stream, error) {
	stream, err := s.repo.GetByID(ctx, streamID)
	if errors.Is(err, repository.ErrStreamNotFound) {
		return nil, ErrStreamNotFound
	}
	if err != nil {
		return nil, err
	}
	return stream, nil
}

func (s *streamService) publishLifecycle(ctx context.Context, eventType, streamID string, payload interface{}) {
	l := pkglog.Ctx(ctx)

	event, err := pubsub.NewEvent(eventType, streamID, payload)
	if err != nil {
		l.Error().Err(err).Str(pkglog.FieldStreamID, streamID).Msg("failed to build lifecycle event")
		return
	}
	if err := s.publisher.Publish(ctx, pubsub.StreamLifecycleChannel(streamID), event); err != nil {
		l.Error().Err(err).Str(pkglog.FieldStreamID, streamID).Msg("failed to publish lifecycle event")
	}
}

func (s *streamService) invalidateCache(ctx context.Context, streamID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cache.BuildKeyByID(streamID)); err != nil {
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Str(pkglog.FieldStreamID, streamID).Msg("failed to invalidate stream cache")
	}
}
