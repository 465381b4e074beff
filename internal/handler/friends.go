package handler

import (
	"errors"
	"net/http"

	"github.com/samber/lo"

	"dmrelay/internal/model"
	"dmrelay/internal/store"
)

type addFriendRequest struct {
	FriendID int64 `json:"friend_id" validate:"required,gt=0"`
}

// ListFriends handles GET /friends
// Each entry carries the friend's live presence.
func (h *Handler) ListFriends(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListFriends(r.Context(), callerID(r))
	if err != nil {
		h.Log.Error("list friends failed", "route", "GET /friends", "user", callerID(r), "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch friends")
		return
	}

	friends := lo.Map(users, func(u model.User, _ int) model.Friend {
		return model.Friend{User: u, Online: h.Registry.IsOnline(u.ID)}
	})
	writeJSON(w, http.StatusOK, friends)
}

// AddFriend handles POST /friends
func (h *Handler) AddFriend(w http.ResponseWriter, r *http.Request) {
	var req addFriendRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	owner := callerID(r)
	if req.FriendID == owner {
		writeError(w, http.StatusBadRequest, "Cannot add yourself as a friend")
		return
	}

	edge, err := h.Store.AddFriend(r.Context(), owner, req.FriendID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "User not found")
		return
	case errors.Is(err, store.ErrDuplicate):
		writeError(w, http.StatusConflict, "Already friends")
		return
	case err != nil:
		h.Log.Error("add friend failed", "route", "POST /friends", "user", owner, "friend", req.FriendID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to add friend")
		return
	}

	writeJSON(w, http.StatusCreated, edge)
}
