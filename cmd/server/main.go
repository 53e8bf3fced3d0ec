package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"projecttracker/internal/cache"
	"projecttracker/internal/config"
	"projecttracker/internal/events"
	"projecttracker/internal/handler"
	"projecttracker/internal/httpserver"
	"projecttracker/internal/repository"
	"projecttracker/internal/service"
	"projecttracker/pkg/db"
	"projecttracker/pkg/logger"
	"projecttracker/pkg/mq"
	"projecttracker/pkg/otel"
	"projecttracker/pkg/redis"
)

const serviceName = "project-tracker"

func main() {
	log := logger.NewLogger()
	defer log.Sync()

	configDir := os.Getenv("CONFIG_DIR")
	if configDir == "" {
		configDir = "config"
	}
	cfg, err := config.Load(configDir)
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Starting project-tracker...",
		zap.String("store", cfg.Store),
		zap.String("port", cfg.Server.Port),
		zap.Bool("events", cfg.MQ.URL != ""),
		zap.Bool("cache", cfg.Redis.Addr != ""),
	)

	shutdownOtel, err := otel.Init(otel.Config{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Endpoint:       cfg.Otel.Endpoint,
		Enabled:        cfg.Otel.Enabled,
	}, log)
	if err != nil {
		log.Warn("OpenTelemetry init failed, continuing without tracing", zap.Error(err))
	} else {
		defer shutdownOtel()
	}

	// Store
	var store repository.Store
	switch cfg.Store {
	case config.StoreMemory:
		log.Info("Using in-memory store")
		store = repository.NewMemoryStore()
	default:
		pool, err := db.NewConnection(cfg.DB, log)
		if err != nil {
			log.Fatal("Failed to init DB", zap.Error(err))
		}
		defer pool.Close()

		if cfg.DB.AutoMigrate {
			migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := repository.Migrate(migrateCtx, pool, log)
			cancel()
			if err != nil {
				log.Fatal("Failed to migrate schema", zap.Error(err))
			}
		}
		store = repository.NewPgStore(pool, log)
	}

	// Cache
	rdb := redis.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis unreachable, statistics will be recomputed on each read", zap.Error(err))
		}
		cancel()
	}
	statsCache := cache.NewStatsCache(rdb, cfg.Redis.TTL, log)

	// Events. A nil interface, not a nil *mq.Publisher, disables publishing.
	var (
		eventPub  events.Publisher
		readiness httpserver.Publisher
	)
	if cfg.MQ.URL != "" {
		publisher, err := mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			log.Fatal("Failed to init MQ publisher", zap.Error(err))
		}
		defer publisher.Close()
		eventPub, readiness = publisher, publisher
	}
	emitter := events.NewEmitter(eventPub, log)

	deps := service.Deps{
		Store:  store,
		Cache:  statsCache,
		Events: emitter,
		Logger: log,
	}
	projectService := service.NewProjectService(deps)
	taskService := service.NewTaskService(deps)

	router := httpserver.NewRouter(httpserver.Deps{
		Projects:  handler.NewProjectHandler(projectService, taskService, log),
		Tasks:     handler.NewTaskHandler(taskService, log),
		DB:        store,
		Publisher: readiness,
		Logger:    log,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down project-tracker...")

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("project-tracker stopped")
}
