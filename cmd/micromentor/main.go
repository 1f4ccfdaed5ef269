package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"micromentor-api/internal/advice"
	"micromentor-api/internal/cache"
	"micromentor-api/internal/gemini"
	"micromentor-api/internal/handlers"
	"micromentor-api/internal/httpserver"
	"micromentor-api/internal/metrics"
	"micromentor-api/pkg/logging/logging"
)

// sweepInterval is how often the background task evicts expired cache
// entries. The admin endpoint can trigger a sweep in between.
const sweepInterval = 24 * time.Hour

type Config struct {
	Port          string
	CacheBackend  string // "memory" or "redis"
	RedisAddr     string
	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string
	AdminAPIKey   string
}

func LoadConfig() Config {
	return Config{
		Port:          getenv("PORT", "8080"),
		CacheBackend:  getenv("CACHE_BACKEND", "memory"),
		RedisAddr:     getenv("REDIS_ADDR", "127.0.0.1:6379"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL: os.Getenv("GEMINI_BASE_URL"),
		GeminiModel:   os.Getenv("GEMINI_MODEL"),
		AdminAPIKey:   os.Getenv("ADMIN_API_KEY"),
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("micromentor exited with error: %v", err)
	}
}

func run() error {
	// ----- Logger -----
	logger := logging.DefaultLogger()
	defer logger.Sync()

	// ----- Metrics -----
	metrics.Register()

	// ----- Config -----
	cfg := LoadConfig()

	logger.Info("loaded config",
		zap.String("port", cfg.Port),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.String("redis_addr", cfg.RedisAddr),
		zap.Bool("admin_endpoint_enabled", cfg.AdminAPIKey != ""),
	)

	// ----- Redis client (only if needed) -----
	var redisClient *redis.Client
	if cfg.CacheBackend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})

		// Fail fast if Redis is misconfigured
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("redis connection failed", zap.Error(err))
			return err
		}
		logger.Info("redis connection established",
			zap.String("addr", cfg.RedisAddr),
		)
	}

	// ----- Advice cache -----
	adviceCache, err := cache.New(cache.Config{
		Backend: cfg.CacheBackend,
		TTL:     cache.DefaultTTL,
		Prefix:  "micromentor",
	}, redisClient)
	if err != nil {
		return err
	}
	adviceCache = cache.NewLoggingAdviceCache(adviceCache)

	// ----- Gemini client -----
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}

	llmClient, err := gemini.NewClient(gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
	}, logger)
	if err != nil {
		return err
	}
	if closer, ok := llmClient.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	// ----- Pipeline + handlers -----
	pipeline := advice.NewService(adviceCache, llmClient)

	adviceHandler := handlers.NewAdviceHandler(pipeline)
	adminHandler := handlers.NewAdminHandler(pipeline, cfg.AdminAPIKey)

	// ----- Background cache sweep -----
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go runCacheSweeper(sweepCtx, pipeline, logger)

	// ----- Router + middleware -----
	r := chi.NewRouter()
	httpserver.SetupRouter(r, logger, adviceHandler, adminHandler)

	// ----- HTTP server -----
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Writes stay open for the whole retry cycle on a slow upstream.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("starting server",
		zap.String("addr", srv.Addr),
		zap.String("cache_backend", cfg.CacheBackend),
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
	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server shutdown complete")
	return nil
}

// runCacheSweeper evicts expired cache entries on a fixed period,
// independent of any request's lifecycle.
func runCacheSweeper(ctx context.Context, pipeline *advice.Service, logger *zap.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := pipeline.SweepCache(ctx)
			if err != nil {
				logger.Error("scheduled cache sweep failed", zap.Error(err))
				continue
			}
			logger.Info("scheduled cache sweep completed",
				zap.Int("removed_entries", removed),
			)
		}
	}
}

// getenv returns the value of the environment variable key or def if not set.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
