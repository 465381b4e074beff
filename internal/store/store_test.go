package store

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"dmrelay/internal/config"
	"dmrelay/internal/database"
	"dmrelay/internal/model"
)

// newTestStore opens a fresh in-memory SQLite store.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(config.DriverSQLite, ":memory:?_foreign_keys=1")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, config.DriverSQLite))
	t.Cleanup(func() { db.Close() })
	return New(db)
}

func TestStore_CreateMessage_Text(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	// When identity 5 sends "hi" to identity 9
	id, err := s.CreateMessage(ctx, 5, 9, lo.ToPtr("hi"), nil)
	req.NoError(err)
	req.Positive(id)

	// Then exactly that row exists with no image body
	msg, err := s.GetMessage(ctx, id)
	req.NoError(err)
	req.Equal(int64(5), msg.SenderID)
	req.Equal(int64(9), msg.ReceiverID)
	req.Equal("hi", *msg.TextBody)
	req.Nil(msg.ImageBody)
	req.False(msg.CreatedAt.IsZero())
}

func TestStore_CreateMessage_Image(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateMessage(ctx, 5, 9, nil, lo.ToPtr("data:image/png;base64,AAAA"))
	req.NoError(err)

	msg, err := s.GetMessage(ctx, id)
	req.NoError(err)
	req.Nil(msg.TextBody)
	req.Equal("data:image/png;base64,AAAA", *msg.ImageBody)
}

func TestStore_GetMessage_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetMessage(context.Background(), 42)

	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListConversation(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	// Given a conversation between 1 and 2 and an unrelated one between 1 and 3
	var ids []int64
	for i, pair := range [][2]int64{{1, 2}, {2, 1}, {1, 3}, {1, 2}, {2, 1}} {
		id, err := s.CreateMessage(ctx, pair[0], pair[1], lo.ToPtr(string(rune('a'+i))), nil)
		req.NoError(err)
		ids = append(ids, id)
	}

	// When the full history is read
	page, err := s.ListConversation(ctx, 1, 2, 0, 10)
	req.NoError(err)

	// Then both directions are returned newest first, without the unrelated message
	req.Equal([]int64{ids[4], ids[3], ids[1], ids[0]}, lo.Map(page, func(m model.Message, _ int) int64 { return m.ID }))

	// And paging before an id continues from there
	older, err := s.ListConversation(ctx, 2, 1, ids[3], 1)
	req.NoError(err)
	req.Len(older, 1)
	req.Equal(ids[1], older[0].ID)
}

func TestStore_ListConversation_Empty(t *testing.T) {
	s := newTestStore(t)

	page, err := s.ListConversation(context.Background(), 1, 2, 0, 0)

	require.NoError(t, err)
	require.NotNil(t, page)
	require.Empty(t, page)
}

func TestStore_Users(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	alice, err := s.CreateUser(ctx, "alice", "Alice", "hash-a")
	req.NoError(err)
	bob, err := s.CreateUser(ctx, "bob", "Bob", "hash-b")
	req.NoError(err)

	// Handles are unique
	_, err = s.CreateUser(ctx, "alice", "Other Alice", "hash-c")
	req.ErrorIs(err, ErrDuplicate)

	got, err := s.GetUserByHandle(ctx, "alice")
	req.NoError(err)
	req.Equal(alice.ID, got.ID)
	req.Equal("hash-a", got.PasswordHash)
	req.Nil(got.AvatarURL)

	got, err = s.GetUser(ctx, bob.ID)
	req.NoError(err)
	req.Equal("Bob", got.DisplayName)

	_, err = s.GetUser(ctx, 999)
	req.ErrorIs(err, ErrNotFound)

	all, err := s.ListUsers(ctx)
	req.NoError(err)
	req.Len(all, 2)
}

func TestStore_Friends(t *testing.T) {
	req := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()

	alice, err := s.CreateUser(ctx, "alice", "Alice", "h")
	req.NoError(err)
	bob, err := s.CreateUser(ctx, "bob", "Bob", "h")
	req.NoError(err)

	// Given alice adds bob
	edge, err := s.AddFriend(ctx, alice.ID, bob.ID)
	req.NoError(err)
	req.Equal(alice.ID, edge.OwnerID)

	// Then the edge is unique per pair
	_, err = s.AddFriend(ctx, alice.ID, bob.ID)
	req.ErrorIs(err, ErrDuplicate)

	// And an edge to an unknown user is rejected
	_, err = s.AddFriend(ctx, alice.ID, 999)
	req.ErrorIs(err, ErrNotFound)

	// And the edge is directed
	friends, err := s.ListFriends(ctx, alice.ID)
	req.NoError(err)
	req.Len(friends, 1)
	req.Equal("bob", friends[0].Handle)

	friends, err = s.ListFriends(ctx, bob.ID)
	req.NoError(err)
	req.Empty(friends)
}
