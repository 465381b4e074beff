package store

import (
	"context"
	"database/sql"
	"time"

	"dmrelay/internal/model"
)

const userColumns = "id, handle, display_name, password_hash, avatar_url, bio, created_at"

// CreateUser registers a new identity. A taken handle yields ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, handle, displayName, passwordHash string) (model.User, error) {
	now := s.now().Truncate(time.Second)
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO users (handle, display_name, password_hash, created_at) VALUES (?, ?, ?, ?)",
		handle, displayName, passwordHash, now)
	if err != nil {
		return model.User{}, translate(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return model.User{
		ID:           id,
		Handle:       handle,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (model.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	return user, translate(err)
}

func (s *Store) GetUserByHandle(ctx context.Context, handle string) (model.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE handle = ?", handle)
	user, err := scanUser(row)
	return user, translate(err)
}

// ListUsers returns every registered user ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

// AddFriend creates the directed edge owner → friend.
func (s *Store) AddFriend(ctx context.Context, ownerID, friendID int64) (model.FriendEdge, error) {
	edge := model.FriendEdge{OwnerID: ownerID, FriendID: friendID, CreatedAt: s.now().Truncate(time.Second)}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO friends (owner_id, friend_id, created_at) VALUES (?, ?, ?)",
		edge.OwnerID, edge.FriendID, edge.CreatedAt)
	if err != nil {
		return model.FriendEdge{}, translate(err)
	}
	return edge, nil
}

// ListFriends returns the users the owner has added, ordered by id.
func (s *Store) ListFriends(ctx context.Context, ownerID int64) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT u.id, u.handle, u.display_name, u.password_hash, u.avatar_url, u.bio, u.created_at
		FROM friends f
		JOIN users u ON u.id = f.friend_id
		WHERE f.owner_id = ?
		ORDER BY u.id`, ownerID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

func collectUsers(rows *sql.Rows) ([]model.User, error) {
	users := []model.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(row scanner) (model.User, error) {
	var (
		user   model.User
		avatar sql.NullString
		bio    sql.NullString
	)
	if err := row.Scan(&user.ID, &user.Handle, &user.DisplayName, &user.PasswordHash, &avatar, &bio, &user.CreatedAt); err != nil {
		return model.User{}, err
	}
	user.AvatarURL = nullable(avatar)
	user.Bio = nullable(bio)
	return user, nil
}
