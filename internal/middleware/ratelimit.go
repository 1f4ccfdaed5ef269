package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"micromentor-api/pkg/logging/logging"
)

// RateLimitConfig bounds requests per client IP over a sliding window.
type RateLimitConfig struct {
	Requests int           // default: 100
	Window   time.Duration // default: 15 minutes
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	if c.Requests <= 0 {
		c.Requests = 100
	}
	if c.Window <= 0 {
		c.Window = 15 * time.Minute
	}
	return c
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit allows cfg.Requests per cfg.Window per client IP, answering
// 429 beyond that. Idle per-IP limiters are pruned so the map does not
// grow with every client ever seen.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	cfg = cfg.withDefaults()

	var (
		mu       sync.Mutex
		limiters = make(map[string]*ipLimiter)
	)

	limit := rate.Every(cfg.Window / time.Duration(cfg.Requests))

	lookup := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		now := time.Now()

		// Prune limiters idle for two windows.
		for k, v := range limiters {
			if now.Sub(v.lastSeen) > 2*cfg.Window {
				delete(limiters, k)
			}
		}

		l, ok := limiters[ip]
		if !ok {
			l = &ipLimiter{limiter: rate.NewLimiter(limit, cfg.Requests)}
			limiters[ip] = l
		}
		l.lastSeen = now
		return l.limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			if !lookup(ip).Allow() {
				logger := logging.L(r.Context())
				logger.Warn("rate limit exceeded", zap.String("remote_ip", ip))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"Too many requests from this IP, please try again after 15 minutes"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port when RemoteAddr carries one; chi's RealIP
// middleware has already substituted the forwarded address.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
