package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/firdaus0729/shoplive/internal/domain"
)

func newTestRepo(t *testing.T) *GormStreamRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.StreamModel{}))
	return NewGormStreamRepository(db)
}

func newScheduledStream(storeID string) *domain.Stream {
	id := uuid.New().String()
	return &domain.Stream{
		ID:              id,
		StoreID:         storeID,
		Title:           "Friday drop",
		Status:          domain.StreamStatusScheduled,
		RoomID:          id,
		BroadcasterID:   "seller-1",
		BroadcasterName: "Sam",
	}
}

func TestCreateAndGetByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	stream := newScheduledStream("store-1")
	require.NoError(t, repo.Create(ctx, stream))

	got, err := repo.GetByID(ctx, stream.ID)
	require.NoError(t, err)
	assert.Equal(t, stream.ID, got.ID)
	assert.Equal(t, domain.StreamStatusScheduled, got.Status)
	assert.Equal(t, "Friday drop", got.Title)
	assert.Nil(t, got.StartTime)
}

func TestGetByIDNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrStreamNotFound)
}

func TestMarkLiveTransitionsScheduledStream(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	stream := newScheduledStream("store-1")
	require.NoError(t, repo.Create(ctx, stream))

	start := time.Now().Truncate(time.Second)
	require.NoError(t, repo.MarkLive(ctx, stream.ID, start))

	got, err := repo.GetByID(ctx, stream.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StreamStatusLive, got.Status)
	require.NotNil(t, got.StartTime)
	assert.WithinDuration(t, start, *got.StartTime, time.Second)
}

func TestMarkLiveTwiceFails(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	stream := newScheduledStream("store-1")
	require.NoError(t, repo.Create(ctx, stream))
	require.NoError(t, repo.MarkLive(ctx, stream.ID, time.Now()))

	err := repo.MarkLive(ctx, stream.ID, time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMarkLiveMissingStream(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.MarkLive(context.Background(), "missing", time.Now())
	assert.ErrorIs(t, err, ErrStreamNotFound)
}

func TestMarkEndedFreezesViewerCount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	stream := newScheduledStream("store-1")
	require.NoError(t, repo.Create(ctx, stream))
	require.NoError(t, repo.MarkLive(ctx, stream.ID, time.Now()))

	require.NoError(t, repo.MarkEnded(ctx, stream.ID, time.Now(), 42))

	got, err := repo.GetByID(ctx, stream.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StreamStatusEnded, got.Status)
	assert.Equal(t, 42, got.ViewerCount)
	assert.NotNil(t, got.EndedAt)
}

func TestMarkEndedRequiresLiveStream(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	stream := newScheduledStream("store-1")
	require.NoError(t, repo.Create(ctx, stream))

	err := repo.MarkEnded(ctx, stream.ID, time.Now(), 0)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateViewerCount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	stream := newScheduledStream("store-1")
	require.NoError(t, repo.Create(ctx, stream))
	require.NoError(t, repo.UpdateViewerCount(ctx, stream.ID, 7))

	got, err := repo.GetByID(ctx, stream.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.ViewerCount)
}

func TestListFiltersAndPaginates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, newScheduledStream("store-1")))
	}
	other := newScheduledStream("store-2")
	require.NoError(t, repo.Create(ctx, other))
	require.NoError(t, repo.MarkLive(ctx, other.ID, time.Now()))

	streams, total, err := repo.List(ctx, &domain.ListStreamsRequest{
		StoreID: "store-1",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, streams, 3)

	streams, total, err = repo.List(ctx, &domain.ListStreamsRequest{
		Status: string(domain.StreamStatusLive),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, streams, 1)
	assert.Equal(t, other.ID, streams[0].ID)

	streams, total, err = repo.List(ctx, &domain.ListStreamsRequest{
		Page:     2,
		PageSize: 3,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, streams, 1)
}
