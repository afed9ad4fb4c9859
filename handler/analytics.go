package handler

import "net/http"

// Analytics handles GET /analytics
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	SendJSONSuccess(w, http.StatusOK, h.tracker.Snapshot())
}
