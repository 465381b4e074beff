package handler

import "net/http"

type healthResponse struct {
	Status      string `json:"status"`
	Online      int    `json:"online"`
	Connections int    `json:"connections"`
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		h.Log.Warn("health check failed", "route", "GET /healthz", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Online:      h.Registry.Len(),
		Connections: h.Hub.Count(),
	})
}
