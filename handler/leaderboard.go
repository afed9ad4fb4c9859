package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const defaultLeaderboardSize = 10

// Leaderboard handles GET /leaderboard?limit=N
func (h *AdminHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	limit := defaultLeaderboardSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			SendJSONError(w, http.StatusBadRequest,
				fmt.Errorf("invalid limit %q", raw), "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	entries, err := h.ranker.TopN(ctx, limit)
	if err != nil {
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to build leaderboard")
		return
	}

	SendJSONSuccess(w, http.StatusOK, map[string]interface{}{
		"limit":   limit,
		"entries": entries,
	})
}
