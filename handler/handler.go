// Package handler exposes the admin HTTP surface. Every endpoint calls
// straight through to the ledger, ranker, analytics or backup manager;
// there is no business logic here.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ayoubcharbel/telegram-bot/analytics"
	"github.com/ayoubcharbel/telegram-bot/backup"
	"github.com/ayoubcharbel/telegram-bot/cache"
	"github.com/ayoubcharbel/telegram-bot/leaderboard"
)

// AdminHandler bundles the collaborators behind the admin API.
type AdminHandler struct {
	ranker  *leaderboard.Ranker
	tracker *analytics.Tracker
	backups *backup.Manager
	cache   *cache.Cache
	started time.Time
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(ranker *leaderboard.Ranker, tracker *analytics.Tracker, backups *backup.Manager, c *cache.Cache) *AdminHandler {
	return &AdminHandler{
		ranker:  ranker,
		tracker: tracker,
		backups: backups,
		cache:   c,
		started: time.Now(),
	}
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SendJSONError sends a JSON error response
func SendJSONError(w http.ResponseWriter, statusCode int, err error, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   err.Error(),
		Message: message,
	}

	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		log.Error().Err(encodeErr).Msg("Failed to encode error response")
	}
}

// SendJSONSuccess sends a JSON success response
func SendJSONSuccess(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode success response")
	}
}

// HealthCheck handles GET /health
func (h *AdminHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	SendJSONSuccess(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.started).Seconds()),
	})
}

// CacheMetrics handles GET /cache/metrics
func (h *AdminHandler) CacheMetrics(w http.ResponseWriter, r *http.Request) {
	SendJSONSuccess(w, http.StatusOK, h.cache.Metrics())
}
