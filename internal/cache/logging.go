package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"micromentor-api/internal/metrics"
	"micromentor-api/pkg/logging/logging"
)

// LoggingAdviceCache wraps an AdviceCache with logging + metrics.
type LoggingAdviceCache struct {
	inner AdviceCache
}

// NewLoggingAdviceCache returns a cache that logs and records metrics.
func NewLoggingAdviceCache(inner AdviceCache) AdviceCache {
	return &LoggingAdviceCache{inner: inner}
}

func (c *LoggingAdviceCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, ok, err := c.inner.Get(ctx, key)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := logging.L(ctx)

	result := "miss"
	if err != nil {
		result = "error"
	} else if ok {
		result = "hit"
		metrics.CacheHitsTotal.Inc()
	}

	fields := []zap.Field{
		zap.String("cache_key", key),
		zap.String("cache_result", result), // hit | miss | error
		zap.Float64("latency_ms", latencyMs),
	}
	fields = appendKeyParts(fields, key)

	if err != nil {
		logger.Error("advice_cache_get", append(fields, zap.Error(err))...)
	} else {
		logger.Info("advice_cache_get", fields...)
	}

	return value, ok, err
}

func (c *LoggingAdviceCache) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := c.inner.Set(ctx, key, value)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := logging.L(ctx)

	fields := []zap.Field{
		zap.String("cache_key", key),
		zap.Int("value_bytes", len(value)),
		zap.Float64("latency_ms", latencyMs),
	}
	fields = appendKeyParts(fields, key)

	if err != nil {
		logger.Error("advice_cache_set", append(fields, zap.Error(err))...)
	} else {
		logger.Info("advice_cache_set", fields...)
	}

	return err
}

func (c *LoggingAdviceCache) Sweep(ctx context.Context) (int, error) {
	start := time.Now()
	removed, err := c.inner.Sweep(ctx)

	logger := logging.L(ctx)

	if err != nil {
		logger.Error("advice_cache_sweep",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return removed, err
	}

	metrics.CacheSweptEntriesTotal.Add(float64(removed))
	logger.Info("advice_cache_sweep",
		zap.Int("removed_entries", removed),
		zap.Duration("duration", time.Since(start)),
	)

	return removed, nil
}

func appendKeyParts(fields []zap.Field, key string) []zap.Field {
	if parts, ok := parseKey(key); ok {
		fields = append(fields,
			zap.String("category", parts.Category),
			zap.String("hash", parts.Hash),
		)
	}
	return fields
}
