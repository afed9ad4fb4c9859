package handler

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// CreateBackup handles POST /backups
func (h *AdminHandler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	info, err := h.backups.Create(ctx)
	if err != nil {
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to create backup")
		return
	}

	SendJSONSuccess(w, http.StatusCreated, info)
}

// ListBackups handles GET /backups
func (h *AdminHandler) ListBackups(w http.ResponseWriter, r *http.Request) {
	infos, err := h.backups.List()
	if err != nil {
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to list backups")
		return
	}

	SendJSONSuccess(w, http.StatusOK, map[string]interface{}{
		"backups": infos,
	})
}

// RestoreBackup handles POST /backups/{name}/restore
func (h *AdminHandler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	name := mux.Vars(r)["name"]

	if err := h.backups.Restore(ctx, name); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, fs.ErrNotExist) {
			status = http.StatusNotFound
		}
		SendJSONError(w, status, err, "Failed to restore backup")
		return
	}

	// The store's contents just changed wholesale; cached leaderboard
	// views would otherwise serve pre-restore data until TTL expiry.
	h.ranker.Invalidate()

	SendJSONSuccess(w, http.StatusOK, map[string]interface{}{
		"restored": name,
	})
}
