package repository

import (
	"context"
	"errors"
	"time"

	"github.com/firdaus0729/shoplive/internal/domain"
)

var (
	// ErrStreamNotFound is returned when a stream does not exist.
	ErrStreamNotFound = errors.New("stream not found")

	// ErrInvalidTransition is returned when a status update finds the
	// stream in a different state than the transition requires.
	ErrInvalidTransition = errors.New("invalid stream status transition")
)

// StreamRepository persists streams.
type StreamRepository interface {
	// Create persists a new stream.
	Create(ctx context.Context, stream *domain.Stream) error

	// GetByID returns the stream or ErrStreamNotFound.
	GetByID(ctx context.Context, id string) (*domain.Stream, error)

	// List returns a page of streams plus the total count, optionally
	// filtered by status and store.
	List(ctx context.Context, req *domain.ListStreamsRequest) ([]*domain.Stream, int64, error)

	// MarkLive transitions a scheduled stream to live. Returns
	// ErrInvalidTransition if the stream is not scheduled, so concurrent
	// starts race safely at the database.
	MarkLive(ctx context.Context, id string, startTime time.Time) error

	// MarkEnded transitions a live stream to ended, freezing the final
	// viewer count. Returns ErrInvalidTransition if the stream is not live.
	MarkEnded(ctx context.Context, id string, endedAt time.Time, viewerCount int) error

	// UpdateViewerCount refreshes the denormalized viewer count snapshot.
	UpdateViewerCount(ctx context.Context, id string, count int) error
}
