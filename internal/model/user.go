package model

import "time"

// User is a registered identity.
type User struct {
	ID           int64     `json:"id"`
	Handle       string    `json:"handle"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	Bio          *string   `json:"bio,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// FriendEdge is a directed friendship, unique per (OwnerID, FriendID).
type FriendEdge struct {
	OwnerID   int64     `json:"owner_id"`
	FriendID  int64     `json:"friend_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Friend is a friend entry as returned to clients, decorated with live presence.
type Friend struct {
	User
	Online bool `json:"online"`
}
