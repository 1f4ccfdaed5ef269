package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"micromentor-api/pkg/logging/logging"
)

// CacheSweeper is the administrative slice of the pipeline.
type CacheSweeper interface {
	SweepCache(ctx context.Context) (int, error)
}

// AdminHandler serves POST /api/admin/cache behind a shared-secret check.
type AdminHandler struct {
	sweeper  CacheSweeper
	adminKey string
}

// NewAdminHandler builds the admin handler. An empty adminKey disables
// the endpoint: every request is rejected as unauthorized.
func NewAdminHandler(sweeper CacheSweeper, adminKey string) *AdminHandler {
	return &AdminHandler{
		sweeper:  sweeper,
		adminKey: adminKey,
	}
}

type adminCacheRequest struct {
	Action string `json:"action"`
	APIKey string `json:"apiKey"`
}

type adminCacheResponse struct {
	APIVersion string `json:"apiVersion"`
	Data       struct {
		Action         string `json:"action"`
		RemovedEntries int    `json:"removedEntries"`
		Message        string `json:"message"`
	} `json:"data"`
}

// ManageCache handles POST /api/admin/cache.
func (h *AdminHandler) ManageCache(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)

	var req adminCacheRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid admin request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if !h.authorized(req.APIKey) {
		logger.Warn("admin request rejected")
		writeError(w, http.StatusUnauthorized, "Unauthorized. Valid API key required for admin operations.")
		return
	}

	if req.Action != "cleanup" {
		writeError(w, http.StatusBadRequest, "Invalid action. Supported actions: cleanup")
		return
	}

	removed, err := h.sweeper.SweepCache(ctx)
	if err != nil {
		logger.Error("cache cleanup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Cache cleanup failed.")
		return
	}

	logger.Info("cache cleanup completed", zap.Int("removed_entries", removed))

	resp := adminCacheResponse{APIVersion: APIVersion}
	resp.Data.Action = "cleanup"
	resp.Data.RemovedEntries = removed
	resp.Data.Message = "Cache cleanup completed successfully"
	writeJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) authorized(key string) bool {
	if h.adminKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(h.adminKey)) == 1
}
