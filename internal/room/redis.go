package room

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection configuration for the room store.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// RedisStore is a Store backed by Redis sets, for deployments that run
// more than one instance of the service.
//
// Key layout:
//
//	{prefix}:room:{stream_id}:broadcaster  STRING<user_id>
//	{prefix}:room:{stream_id}:viewers      SET<user_id>
//	{prefix}:room:{stream_id}:members      SET<user_id>
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed room store.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "live"
	}

	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) broadcasterKey(streamID string) string {
	return fmt.Sprintf("%s:room:%s:broadcaster", s.prefix, streamID)
}

func (s *RedisStore) viewersKey(streamID string) string {
	return fmt.Sprintf("%s:room:%s:viewers", s.prefix, streamID)
}

func (s *RedisStore) membersKey(streamID string) string {
	return fmt.Sprintf("%s:room:%s:members", s.prefix, streamID)
}

func (s *RedisStore) Create(ctx context.Context, streamID, broadcasterID string) error {
	// SetNX keeps create idempotent: an existing room is left untouched.
	if err := s.client.SetNX(ctx, s.broadcasterKey(streamID), broadcasterID, 0).Err(); err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

func (s *RedisStore) AddViewer(ctx context.Context, streamID, userID string) (int, error) {
	exists, err := s.client.Exists(ctx, s.broadcasterKey(streamID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to check room: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}

	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, s.viewersKey(streamID), userID)
	countCmd := pipe.SCard(ctx, s.viewersKey(streamID))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to add viewer: %w", err)
	}
	return int(countCmd.Val()), nil
}

func (s *RedisStore) RemoveViewer(ctx context.Context, streamID, userID string) (int, error) {
	pipe := s.client.TxPipeline()
	pipe.SRem(ctx, s.viewersKey(streamID), userID)
	countCmd := pipe.SCard(ctx, s.viewersKey(streamID))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to remove viewer: %w", err)
	}
	return int(countCmd.Val()), nil
}

func (s *RedisStore) Info(ctx context.Context, streamID string) (Info, bool, error) {
	broadcasterID, err := s.client.Get(ctx, s.broadcasterKey(streamID)).Result()
	if err == redis.Nil {
		return Info{}, false, nil
	}
	if err != nil {
		return Info{}, false, fmt.Errorf("failed to get room: %w", err)
	}

	count, err := s.client.SCard(ctx, s.viewersKey(streamID)).Result()
	if err != nil {
		return Info{}, false, fmt.Errorf("failed to count viewers: %w", err)
	}

	return Info{
		StreamID:      streamID,
		BroadcasterID: broadcasterID,
		ViewerCount:   int(count),
	}, true, nil
}

func (s *RedisStore) AddMember(ctx context.Context, streamID, userID string) error {
	if err := s.client.SAdd(ctx, s.membersKey(streamID), userID).Err(); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

func (s *RedisStore) RemoveMember(ctx context.Context, streamID, userID string) error {
	if err := s.client.SRem(ctx, s.membersKey(streamID), userID).Err(); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

func (s *RedisStore) Members(ctx context.Context, streamID string) ([]string, error) {
	members, err := s.client.SMembers(ctx, s.membersKey(streamID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

func (s *RedisStore) Close(ctx context.Context, streamID string) ([]string, error) {
	members, err := s.client.SMembers(ctx, s.membersKey(streamID)).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to snapshot members: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.broadcasterKey(streamID))
	pipe.Del(ctx, s.viewersKey(streamID))
	pipe.Del(ctx, s.membersKey(streamID))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to close room: %w", err)
	}
	return members, nil
}

func (s *RedisStore) CloseStore() error {
	return s.client.Close()
}
