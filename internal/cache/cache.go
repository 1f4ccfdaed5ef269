package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AdviceCache stores validated advice responses keyed by normalized
// request (key.go). The TTL is a property of the cache, not of individual
// writes; every entry expires 24h (by default) after it was stored.
//
// Implemented by the in-memory cache (single instance) and the Redis
// cache (when the process is restarted often and warm starts matter).
type AdviceCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error

	// Sweep removes every expired entry and returns the removed count.
	// Runs on a daily timer and on demand via the admin endpoint; must be
	// safe under concurrent Get/Set.
	Sweep(ctx context.Context) (int, error)
}

// DefaultTTL is how long a cached advice response stays servable.
const DefaultTTL = 24 * time.Hour

type Config struct {
	Backend string // "memory" or "redis"
	TTL     time.Duration
	Prefix  string
}

func (c Config) withDefaults() Config {
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	return c
}

// New builds the cache for the configured backend.
func New(cfg Config, redisClient *redis.Client) (AdviceCache, error) {
	cfg = cfg.withDefaults()

	switch cfg.Backend {
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("cache: redis backend selected but no client provided")
		}
		return NewRedisAdviceCache(redisClient, RedisConfig{
			Prefix: cfg.Prefix,
			TTL:    cfg.TTL,
		}), nil
	case "", "memory":
		return NewMemoryAdviceCache(cfg.TTL), nil
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", cfg.Backend)
	}
}
