package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/firdaus0729/shoplive/internal/cache"
	"github.com/firdaus0729/shoplive/internal/config"
	"github.com/firdaus0729/shoplive/internal/domain"
	"github.com/firdaus0729/shoplive/internal/handler"
	"github.com/firdaus0729/shoplive/internal/hub"
	"github.com/firdaus0729/shoplive/internal/kafka"
	"github.com/firdaus0729/shoplive/internal/registry"
	"github.com/firdaus0729/shoplive/internal/repository"
	"github.com/firdaus0729/shoplive/internal/room"
	"github.com/firdaus0729/shoplive/internal/service"
	"github.com/firdaus0729/shoplive/internal/signal"
	"github.com/firdaus0729/shoplive/pkg/database"
	"github.com/firdaus0729/shoplive/pkg/jwt"
	pkglog "github.com/firdaus0729/shoplive/pkg/log"
	"github.com/firdaus0729/shoplive/pkg/middleware"
	"github.com/firdaus0729/shoplive/pkg/pubsub"
	"github.com/firdaus0729/shoplive/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Level == "debug",
		ServiceName: "live-service",
	})
	logger := pkglog.L()

	if cfg.JWT.Secret == "" {
		logger.Fatal().Msg("jwt.secret is required")
	}

	// Connect to database using GORM
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.AutoMigrate(db, &domain.StreamModel{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Msg("database migration completed")

	// Connection registry and room store: in-process by default, Redis when
	// running more than one instance.
	var (
		reg   registry.Registry
		rooms room.Store
	)
	switch cfg.State.Driver {
	case "redis":
		reg, err = registry.NewRedisRegistry(cfg.State.Registry)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect registry redis")
		}
		rooms, err = room.NewRedisStore(cfg.State.Room)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect room redis")
		}
	default:
		reg = registry.NewMemoryRegistry()
		rooms = room.NewMemoryStore()
	}
	defer reg.Close()
	defer rooms.CloseStore()
	logger.Info().Str("driver", cfg.State.Driver).Msg("state store initialized")

	// Event bus for lifecycle events.
	var ps pubsub.PubSub
	switch cfg.PubSub.Driver {
	case "redis":
		ps, err = pubsub.NewRedisPubSub(cfg.PubSub.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect pubsub redis")
		}
	default:
		ps = pubsub.NewMemoryPubSub()
	}
	defer ps.Close()

	// Optional stream cache.
	var streamCache cache.StreamCache
	if cfg.Cache.Enabled {
		c, err := cache.NewRedisStreamCache(cfg.Cache, "live:stream")
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect cache redis")
		}
		defer c.Close()
		streamCache = c
		logger.Info().Msg("stream cache connected")
	}

	// Optional Kafka producer; the service works without it.
	var producer kafka.StreamEventProducer
	if cfg.Kafka.Enabled {
		p, err := kafka.NewConfluentProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Partitions)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create kafka producer")
		}
		defer p.Close()
		producer = p
		logger.Info().Str("topic", cfg.Kafka.Topic).Msg("kafka producer connected")
	}

	// Wire up services.
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer)
	streamRepo := repository.NewGormStreamRepository(db)
	streamService := service.NewStreamService(streamRepo, rooms, ps, streamCache, producer, cfg.Cache.TTL)

	h := hub.NewHub()
	go h.Run()

	signalService := signal.NewService(h, reg, rooms, ps, producer)

	ctx, stop := ossignal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := signalService.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start signal service")
	}
	defer signalService.Stop()

	// Setup Gin router
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	// Health check
	r.GET("/health", response.Health)

	handler.NewHTTPHandler(streamService, authMiddleware).RegisterRoutes(r)
	handler.NewWSHandler(h, signalService, jwtManager, reg, cfg.WebSocket).RegisterRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", addr).Str("db_driver", cfg.Database.Driver).Msg("live-service starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("live-service stopped")
}
