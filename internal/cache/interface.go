package cache

import (
	"context"
	"errors"
	"time"

	"github.com/firdaus0729/shoplive/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

type StreamCacheResult struct {
	Stream domain.Stream `json:"stream"`
}

// StreamCache caches stream details to keep hot GETs off the database.
// Only scheduled and ended streams are cached; a live stream's viewer
// count moves with the room, so live reads always go to the source.
type StreamCache interface {
	Get(ctx context.Context, key string) (*StreamCacheResult, error)
	Set(ctx context.Context, key string, result *StreamCacheResult, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	BuildKeyByID(streamID string) string
	Close() error
}
