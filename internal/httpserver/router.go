package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"micromentor-api/internal/handlers"
	"micromentor-api/internal/metrics"
	"micromentor-api/internal/middleware"
)

func SetupRouter(r *chi.Mux, baseLogger *zap.Logger, adviceHandler *handlers.AdviceHandler, adminHandler *handlers.AdminHandler) {

	r.Use(metrics.Middleware)

	// base middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	r.Use(middleware.LoggingContext(baseLogger))
	r.Use(middleware.Recoverer()) // panic recovery
	// The timeout must outlive a full retry cycle: three upstream
	// attempts of up to 30s plus two 1s waits.
	r.Use(middleware.Timeout(100 * time.Second))
	r.Use(middleware.MaxBodySize(64 * 1024)) // 64 KB max body

	// routes; the per-IP limiter covers the API only so that health
	// probes and metrics scrapes never eat into a client's budget
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{}))

		r.Post("/advice", adviceHandler.GetAdvice)
		r.Get("/categories", handlers.GetCategories)
		r.Get("/version", handlers.GetVersion)
		r.Post("/admin/cache", adminHandler.ManageCache)
	})

	// health check
	r.Get("/health", handlers.GetHealth)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Handle("/metrics", metrics.Handler())

	r.NotFound(handlers.NotFound)
}
