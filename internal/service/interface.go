package service

import (
	"context"
	"errors"

	"github.com/firdaus0729/shoplive/internal/domain"
)

var (
	// ErrStreamNotFound is returned when a stream does not exist.
	ErrStreamNotFound = errors.New("stream not found")

	// ErrNotBroadcaster is returned when someone other than the stream's
	// broadcaster tries to start or stop it.
	ErrNotBroadcaster = errors.New("only the broadcaster can manage the stream")

	// ErrAlreadyLive is returned when starting a stream that is already live.
	ErrAlreadyLive = errors.New("stream is already live")

	// ErrNotLive is returned when stopping a stream that has not started.
	ErrNotLive = errors.New("stream is not live")

	// ErrStreamEnded is returned when acting on a stream that has ended.
	ErrStreamEnded = errors.New("stream has already ended")
)

// StreamService manages the stream lifecycle: scheduled -> live -> ended.
type StreamService interface {
	// CreateStream creates a scheduled stream owned by the caller.
	CreateStream(ctx context.Context, broadcasterID, broadcasterName string, req *domain.CreateStreamRequest) (*domain.Stream, error)

	// StartStream transitions a scheduled stream to live, opens its room,
	// and announces the transition.
	StartStream(ctx context.Context, streamID, userID string) (*domain.Stream, error)

	// StopStream transitions a live stream to ended, closes its room, and
	// announces the transition to everyone who was in the room.
	StopStream(ctx context.Context, streamID, userID string) (*domain.Stream, error)

	// GetStream returns a single stream with a fresh viewer count while live.
	GetStream(ctx context.Context, streamID string) (*domain.Stream, error)

	// ListStreams returns a paginated stream listing.
	ListStreams(ctx context.Context, req *domain.ListStreamsRequest) (*domain.ListStreamsResponse, error)
}
