package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"micromentor-api/internal/advice"
	"micromentor-api/internal/gemini"
	"micromentor-api/pkg/logging/logging"
)

// Categories the advice endpoint accepts. The pipeline forwards whatever
// category it is given, so this list is the single request-side gate.
var Categories = []string{
	"Career Development",
	"Skill Improvement",
	"Work-Life Balance",
	"Leadership",
	"Communication",
	"Networking",
	"Project Management",
	"Time Management",
	"Conflict Resolution",
	"Professional Relationships",
}

// ValidCategory reports whether name is one of the fixed categories.
func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// AdviceGenerator is the pipeline boundary the HTTP layer dispatches to.
type AdviceGenerator interface {
	Generate(ctx context.Context, challenge, category string) (*advice.Advice, error)
}

// AdviceHandler serves POST /api/advice.
type AdviceHandler struct {
	pipeline AdviceGenerator
}

func NewAdviceHandler(pipeline AdviceGenerator) *AdviceHandler {
	return &AdviceHandler{pipeline: pipeline}
}

type adviceRequest struct {
	Challenge string `json:"challenge"`
	Category  string `json:"category,omitempty"`
	Version   string `json:"version,omitempty"`
}

type adviceMeta struct {
	ResponseTime string `json:"responseTime"`
}

type adviceResponse struct {
	APIVersion string         `json:"apiVersion"`
	Data       *advice.Advice `json:"data"`
	Meta       adviceMeta     `json:"meta"`
}

// GetAdvice handles POST /api/advice.
func (h *AdviceHandler) GetAdvice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)
	start := time.Now()

	var req adviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	challenge := strings.TrimSpace(req.Challenge)
	if challenge == "" {
		writeError(w, http.StatusBadRequest, "Please provide a challenge to get advice for.")
		return
	}

	category := strings.TrimSpace(req.Category)
	if category != "" && !ValidCategory(category) {
		writeError(w, http.StatusBadRequest, "Invalid category. Use /api/categories to see available options.")
		return
	}

	result, err := h.pipeline.Generate(ctx, challenge, category)
	if err != nil {
		h.respondError(w, logger, err)
		return
	}

	responseTime := time.Since(start)

	logger.Info("advice_served",
		zap.String("challenge_preview", preview(challenge, 30)),
		zap.String("category", category),
		zap.Duration("response_time", responseTime),
	)

	version := req.Version
	if version == "" {
		version = APIVersion
	}

	writeJSON(w, http.StatusOK, adviceResponse{
		APIVersion: version,
		Data:       result,
		Meta: adviceMeta{
			ResponseTime: fmt.Sprintf("%dms", responseTime.Milliseconds()),
		},
	})
}

// respondError maps dispatcher errors to status codes. Internal detail
// stays in the logs; callers only ever see the taxonomy messages.
func (h *AdviceHandler) respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, gemini.ErrUpstreamBusy):
		logger.Warn("upstream busy", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, gemini.UserMessage(err))
	case errors.Is(err, gemini.ErrRateLimited):
		logger.Warn("upstream rate limited", zap.Error(err))
		writeError(w, http.StatusTooManyRequests, gemini.UserMessage(err))
	case errors.Is(err, gemini.ErrAuthFailure):
		// Misconfigured API key: operators need to act on this one.
		logger.Error("upstream auth failure", zap.Error(err))
		writeError(w, http.StatusInternalServerError, gemini.UserMessage(err))
	default:
		logger.Error("advice generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, gemini.UserMessage(err))
	}
}

func preview(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
