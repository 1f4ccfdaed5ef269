package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxPromptSize = 512 * 1024 // 512KB per prompt

// GenerateText sends a single free-text prompt to the generateContent
// endpoint and returns the raw text of the first candidate, unparsed.
// Transient 503s are retried per the policy in retry.go; every other
// failure maps to the taxonomy in errors.go.
func (c *client) GenerateText(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("gemini: prompt is empty")
	}
	if len(prompt) > maxPromptSize {
		return "", fmt.Errorf("gemini: prompt too large (%d bytes, max %d)", len(prompt), maxPromptSize)
	}

	pReq := generateContentRequest{
		Contents: []providerContent{
			{Parts: []providerPart{{Text: prompt}}},
		},
	}

	bodyBytes, err := json.Marshal(pReq)
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model)

	// doOnce builds a fresh *http.Request for each attempt
	doOnce := func(ctx context.Context) (*http.Response, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, fmt.Errorf("build HTTP request: %w", err)
		}
		httpReq.Header.Set("x-goog-api-key", c.cfg.APIKey)
		httpReq.Header.Set("Content-Type", "application/json")
		return c.httpClient.Do(httpReq)
	}

	respBody, err := c.doWithRetry(ctx, doOnce)
	if err != nil {
		c.logger.Error("generation failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return "", err
	}

	var pResp generateContentResponse
	if err := json.Unmarshal(respBody, &pResp); err != nil {
		return "", fmt.Errorf("gemini: decode upstream response: %v: %w", err, ErrUpstream)
	}

	if len(pResp.Candidates) == 0 {
		c.logger.Error("upstream returned no candidates",
			zap.String("model", c.cfg.Model),
		)
		return "", fmt.Errorf("gemini: upstream returned no candidates: %w", ErrUpstream)
	}

	var text strings.Builder
	for _, p := range pResp.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}

	c.logger.Info("generation completed",
		zap.String("model", c.cfg.Model),
		zap.Int("reply_bytes", text.Len()),
		zap.Duration("duration", time.Since(start)),
	)

	return text.String(), nil
}
