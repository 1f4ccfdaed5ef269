package advice

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"micromentor-api/internal/cache"
	"micromentor-api/internal/gemini"
	"micromentor-api/internal/metrics"
	"micromentor-api/pkg/logging/logging"
)

// Service orchestrates the response pipeline: cache lookup, prompt
// construction, upstream dispatch, extraction/validation, fallback
// synthesis, and the cache write-back.
//
// Concurrent Generate calls for the same key that both miss are not
// deduplicated: both dispatch upstream and the last write wins, which is
// harmless because responses for one key are interchangeable.
type Service struct {
	cache cache.AdviceCache
	llm   gemini.Client
	now   func() time.Time
}

// NewService wires the pipeline over a cache and a Gemini client.
func NewService(c cache.AdviceCache, llm gemini.Client) *Service {
	return &Service{
		cache: c,
		llm:   llm,
		now:   time.Now,
	}
}

// Generate turns a challenge (and optional category, "" for none) into a
// validated Advice. The only errors that cross this boundary are
// dispatcher errors (gemini taxonomy); an unusable upstream reply is
// absorbed by the fallback path and never fails the request.
func (s *Service) Generate(ctx context.Context, challenge, category string) (*Advice, error) {
	logger := logging.L(ctx)
	key := cache.BuildKey(challenge, category).String()

	data, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		// Cache is best-effort; log and treat as miss.
		logger.Warn("cache_get_error", zap.Error(err))
	}
	if hit {
		var cached Advice
		if err := json.Unmarshal(data, &cached); err != nil {
			logger.Warn("cache_unmarshal_error", zap.Error(err))
		} else {
			return &cached, nil
		}
	}

	prompt := BuildPrompt(challenge, category, s.now())

	raw, err := s.llm.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	adv, ok := ParseAdvice(raw)
	if !ok {
		s.recordFallback(logger, "unparsable upstream reply", nil)
		adv = FallbackAdvice(challenge, s.now())
	} else if verr := adv.Validate(); verr != nil {
		s.recordFallback(logger, "schema validation failed", verr)
		adv = FallbackAdvice(challenge, s.now())
	}

	if adv.GenerationTimestamp == "" {
		adv.GenerationTimestamp = s.now().UTC().Format(time.RFC3339)
	}

	if encoded, err := json.Marshal(adv); err != nil {
		logger.Warn("cache_marshal_error", zap.Error(err))
	} else if err := s.cache.Set(ctx, key, encoded); err != nil {
		logger.Warn("cache_set_error", zap.Error(err))
	}

	return adv, nil
}

// SweepCache removes expired cache entries and returns the removed count.
func (s *Service) SweepCache(ctx context.Context) (int, error) {
	return s.cache.Sweep(ctx)
}

func (s *Service) recordFallback(logger *zap.Logger, reason string, verr error) {
	metrics.FallbacksTotal.Inc()
	fields := []zap.Field{zap.String("reason", reason)}
	if verr != nil {
		fields = append(fields, zap.Error(verr))
	}
	logger.Warn("upstream reply rejected, serving fallback", fields...)
}
