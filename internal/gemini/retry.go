package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"micromentor-api/internal/metrics"
)

const maxResponseSize = 4 * 1024 * 1024 // 4MB upstream reply cap

// doWithRetry wraps an upstream call with the retry policy:
// up to cfg.MaxAttempts attempts, a fixed cfg.RetryDelay wait between
// them, and retry ONLY on 503. Rate-limit and auth failures surface on
// the first attempt. Each attempt runs under its own timeout; the wait
// respects ctx cancellation.
//
// On success it returns the response body. On failure the error wraps
// one of the taxonomy sentinels (errors.go).
func (c *client) doWithRetry(
	ctx context.Context,
	do func(ctx context.Context) (*http.Response, error),
) ([]byte, error) {
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		body, status, err := c.doOnce(ctx, do)
		duration := time.Since(start)

		c.logger.Debug("upstream attempt",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.cfg.MaxAttempts),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.Error(err),
		)

		if err != nil {
			// Caller went away: surface the context error untouched.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Per-attempt timeout or transport failure. Not retried.
			return nil, fmt.Errorf("gemini: request failed: %v: %w", err, ErrUpstream)
		}

		if status >= 200 && status < 300 {
			return body, nil
		}

		if status == http.StatusServiceUnavailable && attempt < c.cfg.MaxAttempts {
			metrics.UpstreamRetriesTotal.Inc()
			c.logger.Warn("upstream busy, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("retry_delay", c.cfg.RetryDelay),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.cfg.RetryDelay):
			}
			continue
		}

		// Non-retryable status, or retries exhausted.
		kind := classifyStatus(status)
		msg := upstreamErrorMessage(body)
		c.logger.Error("upstream error",
			zap.Int("status", status),
			zap.Int("attempt", attempt),
			zap.String("upstream_message", msg),
		)
		if msg != "" {
			return nil, fmt.Errorf("gemini: upstream %d: %s: %w", status, msg, kind)
		}
		return nil, fmt.Errorf("gemini: upstream %d: %w", status, kind)
	}

	// Unreachable: the final attempt always returns above.
	return nil, fmt.Errorf("gemini: upstream unavailable after %d attempts: %w", c.cfg.MaxAttempts, ErrUpstreamBusy)
}

// doOnce performs a single attempt under its own timeout and drains the
// body before the attempt context is released.
func (c *client) doOnce(
	ctx context.Context,
	do func(ctx context.Context) (*http.Response, error),
) ([]byte, int, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()

	resp, err := do(attemptCtx)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read upstream body: %w", err)
	}

	return body, resp.StatusCode, nil
}

// upstreamErrorMessage pulls the human-readable message out of a Gemini
// error body, or returns "" if the body is not the expected shape.
func upstreamErrorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var perr providerErrorResponse
	if err := json.Unmarshal(body, &perr); err != nil {
		return ""
	}
	return perr.Error.Message
}
