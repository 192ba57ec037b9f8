package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/firdaus0729/shoplive/internal/registry"
	"github.com/firdaus0729/shoplive/internal/room"
	pkgconfig "github.com/firdaus0729/shoplive/pkg/config"
	"github.com/firdaus0729/shoplive/pkg/database"
	"github.com/firdaus0729/shoplive/pkg/pubsub"
)

type Config struct {
	Server    ServerConfig
	Database  database.Config
	WebSocket WebSocketConfig
	JWT       JWTConfig
	State     StateConfig
	Cache     CacheConfig
	PubSub    PubSubConfig
	Kafka     KafkaConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type WebSocketConfig struct {
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
}

type JWTConfig struct {
	Secret string
	Issuer string
}

// StateConfig selects where connection and room state lives. "memory" is
// the single-instance default; "redis" is required when running more than
// one instance behind a load balancer.
type StateConfig struct {
	Driver   string
	Registry registry.RedisConfig
	Room     room.RedisConfig
}

type CacheConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

type PubSubConfig struct {
	Driver string // memory or redis
	Redis  pubsub.RedisConfig
}

type KafkaConfig struct {
	Enabled    bool
	Brokers    string
	Topic      string
	Partitions int
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.filepath", "shoplive.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "shoplive")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "shoplive")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 65536)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "shoplive")
	v.SetDefault("state.driver", "memory")
	v.SetDefault("state.registry.address", "localhost:6379")
	v.SetDefault("state.registry.password", "")
	v.SetDefault("state.registry.db", 0)
	v.SetDefault("state.registry.key_ttl", "24h")
	v.SetDefault("state.room.address", "localhost:6379")
	v.SetDefault("state.room.password", "")
	v.SetDefault("state.room.db", 0)
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 1)
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("pubsub.driver", "memory")
	v.SetDefault("pubsub.redis.address", "localhost:6379")
	v.SetDefault("pubsub.redis.password", "")
	v.SetDefault("pubsub.redis.db", 0)
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "stream-events")
	v.SetDefault("kafka.partitions", 4)
	v.SetDefault("log.level", "info")

	// Override from environment
	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("state.driver", "STATE_DRIVER")
	v.BindEnv("state.registry.address", "REDIS_ADDRESS")
	v.BindEnv("state.registry.password", "REDIS_PASSWORD")
	v.BindEnv("state.room.address", "REDIS_ADDRESS")
	v.BindEnv("state.room.password", "REDIS_PASSWORD")
	v.BindEnv("cache.address", "REDIS_ADDRESS")
	v.BindEnv("cache.password", "REDIS_PASSWORD")
	v.BindEnv("pubsub.driver", "PUBSUB_DRIVER")
	v.BindEnv("pubsub.redis.address", "REDIS_ADDRESS")
	v.BindEnv("pubsub.redis.password", "REDIS_PASSWORD")
	v.BindEnv("kafka.enabled", "KAFKA_ENABLED")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.topic", "KAFKA_STREAM_TOPIC")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Parse durations
	cfg.WebSocket.PingInterval = parseDuration(v, "websocket.ping_interval", 30*time.Second)
	cfg.WebSocket.PongWait = parseDuration(v, "websocket.pong_wait", 60*time.Second)
	cfg.WebSocket.WriteWait = parseDuration(v, "websocket.write_wait", 10*time.Second)
	cfg.State.Registry.KeyTTL = parseDuration(v, "state.registry.key_ttl", 24*time.Hour)
	cfg.Cache.TTL = parseDuration(v, "cache.ttl", 5*time.Minute)

	return &cfg, nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	str := v.GetString(key)
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}
