package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"quizforge-backend/internal/cache"
	"quizforge-backend/internal/config"
	"quizforge-backend/internal/generator"
	"quizforge-backend/internal/handlers"
	"quizforge-backend/internal/httpserver"
	"quizforge-backend/internal/metrics"
	"quizforge-backend/pkg/logging/logging"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("quizforge exited with error: %v", err)
	}
}

func run() error {
	// ----- Logger -----
	logger := logging.DefaultLogger()
	defer logger.Sync()

	// ----- Metrics -----
	metrics.Register()

	// ----- Config -----
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Info("loaded config",
		zap.String("port", cfg.Port),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.Duration("pregen_ttl", cfg.PregenTTL),
		zap.Duration("status_ttl", cfg.StatusTTL),
		zap.String("generator_base_url", cfg.GeneratorBaseURL),
	)

	// ----- Redis client (only if needed) -----
	// A missing or bad Redis URL is never fatal: the monitor's probe
	// fails and the whole cache layer runs in degraded mode.
	var redisClient *redis.Client
	if cfg.CacheBackend == "redis" {
		if cfg.RedisURL == "" {
			logger.Warn("REDIS_URL not set, cache starts unavailable")
		} else if opts, err := redis.ParseURL(cfg.RedisURL); err != nil {
			logger.Warn("invalid REDIS_URL, cache starts unavailable", zap.Error(err))
		} else {
			redisClient = redis.NewClient(opts)
		}
	}

	// ----- Cache core -----
	store := cache.NewStore(cache.Config{
		Backend: cfg.CacheBackend,
		TTL:     cfg.PregenTTL,
		Prefix:  cfg.CachePrefix,
	}, redisClient)
	if store != nil {
		store = cache.NewLoggingStore(store)
	}

	monitor := cache.NewMonitor(store, cfg.CacheBackend)
	monitor.Initialize(logging.WithLogger(context.Background(), logger))
	defer monitor.Close()

	collector := cache.NewCollector(cache.NamespacePregen, cache.NamespaceStatus)
	pregenCache := cache.NewPregenCache(monitor, collector, cfg.PregenTTL)
	statusTracker := cache.NewStatusTracker(monitor, collector, cfg.StatusTTL)

	// ----- Generator client (synchronous fallback) -----
	genClient, err := generator.NewClient(generator.Config{
		BaseURL:         cfg.GeneratorBaseURL,
		APIKey:          cfg.GeneratorAPIKey,
		UpstreamTimeout: cfg.GeneratorTimeout,
	}, logger)
	if err != nil {
		return err
	}
	if closer, ok := genClient.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	// ----- Handlers -----
	questionsHandler := handlers.NewQuestionsHandler(pregenCache, statusTracker, genClient)
	adminHandler := handlers.NewAdminHandler(pregenCache, statusTracker)
	cacheStatusHandler := handlers.NewCacheStatusHandler(monitor, collector)

	// ----- Router + middleware -----
	r := chi.NewRouter()
	httpserver.SetupRouter(r, logger, questionsHandler, adminHandler, cacheStatusHandler)

	// ----- HTTP server -----
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting quizforge",
		zap.String("addr", srv.Addr),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.Bool("cache_available", monitor.Available()),
	)

	// Start server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	// ----- Graceful shutdown -----
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server shutdown complete")
	return nil
}
