package handler

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey struct{}

// requireAuth rejects requests without a valid bearer token and stores the caller id in the context.
func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		userID, err := h.Tokens.Verify(token)
		if err != nil {
			h.Log.Warn("rejected bearer token", "route", r.URL.Path, "remote", r.RemoteAddr, "error", err)
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, userID)))
	}
}

// callerID returns the authenticated user id set by requireAuth.
func callerID(r *http.Request) int64 {
	id, _ := r.Context().Value(ctxKey{}).(int64)
	return id
}
