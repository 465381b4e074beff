package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"dmrelay/internal/store"
)

const defaultHistoryLimit = 50

// GetHistory handles GET /messages/{peerId}
// Query params: before (message id, exclusive), limit (default 50, max 100)
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	peerID, err := strconv.ParseInt(mux.Vars(r)["peerId"], 10, 64)
	if err != nil || peerID <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid peer ID")
		return
	}

	query := r.URL.Query()

	var before int64
	if raw := query.Get("before"); raw != "" {
		before, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || before <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid before parameter")
			return
		}
	}

	limit := defaultHistoryLimit
	if raw := query.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = min(limit, store.MaxHistoryPage)
	}

	messages, err := h.Store.ListConversation(r.Context(), callerID(r), peerID, before, limit)
	if err != nil {
		h.Log.Error("list conversation failed", "route", "GET /messages/{peerId}", "user", callerID(r), "peer", peerID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}
