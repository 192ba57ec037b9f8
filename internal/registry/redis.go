package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection configuration for the registry.
type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	KeyTTL   time.Duration `mapstructure:"key_ttl"`
}

// RedisRegistry is a Registry backed by Redis, for deployments that run
// more than one instance of the service. Entries carry a TTL so a crashed
// instance's registrations age out.
type RedisRegistry struct {
	client *redis.Client
	prefix string
	keyTTL time.Duration
}

// unregisterScript deletes the key only while it still holds the expected
// connection ID, mirroring MemoryRegistry's compare-and-delete.
var unregisterScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRedisRegistry creates a Redis-backed connection registry.
func NewRedisRegistry(cfg RedisConfig) (*RedisRegistry, error) {
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
		prefix = "live:conn"
	}

	return &RedisRegistry{
		client: client,
		prefix: prefix,
		keyTTL: cfg.KeyTTL,
	}, nil
}

func (r *RedisRegistry) keyFor(userID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, userID)
}

func (r *RedisRegistry) Register(ctx context.Context, userID, connectionID string) error {
	if err := r.client.Set(ctx, r.keyFor(userID), connectionID, r.keyTTL).Err(); err != nil {
		return fmt.Errorf("failed to register connection: %w", err)
	}
	return nil
}

func (r *RedisRegistry) Unregister(ctx context.Context, userID, connectionID string) error {
	if err := unregisterScript.Run(ctx, r.client, []string{r.keyFor(userID)}, connectionID).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to unregister connection: %w", err)
	}
	return nil
}

func (r *RedisRegistry) Resolve(ctx context.Context, userID string) (string, error) {
	connID, err := r.client.Get(ctx, r.keyFor(userID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve connection: %w", err)
	}
	return connID, nil
}

func (r *RedisRegistry) Close() error {
	return r.client.Close()
}
