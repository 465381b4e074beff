package store

import (
	"context"
	"database/sql"

	"dmrelay/internal/model"
)

// MaxHistoryPage caps a single history read.
const MaxHistoryPage = 100

// CreateMessage inserts one message row and returns its id.
// The unset body is stored as NULL.
func (s *Store) CreateMessage(ctx context.Context, senderID, receiverID int64, textBody, imageBody *string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO messages (sender_id, receiver_id, text_body, image_body, created_at) VALUES (?, ?, ?, ?, ?)",
		senderID, receiverID, textBody, imageBody, s.now())
	if err != nil {
		return 0, translate(err)
	}
	return result.LastInsertId()
}

// GetMessage reads a single message by id.
func (s *Store) GetMessage(ctx context.Context, id int64) (model.Message, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, sender_id, receiver_id, text_body, image_body, created_at FROM messages WHERE id = ?", id)
	msg, err := scanMessage(row)
	if err != nil {
		return model.Message{}, translate(err)
	}
	return msg, nil
}

// ListConversation returns messages exchanged between a and b, newest first.
// beforeID > 0 restricts the page to ids strictly below it.
func (s *Store) ListConversation(ctx context.Context, a, b, beforeID int64, limit int) ([]model.Message, error) {
	if limit <= 0 || limit > MaxHistoryPage {
		limit = MaxHistoryPage
	}

	query := `SELECT id, sender_id, receiver_id, text_body, image_body, created_at
		FROM messages
		WHERE ((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))`
	args := []any{a, b, b, a}
	if beforeID > 0 {
		query += " AND id < ?"
		args = append(args, beforeID)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(row scanner) (model.Message, error) {
	var (
		msg   model.Message
		text  sql.NullString
		image sql.NullString
	)
	if err := row.Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &text, &image, &msg.CreatedAt); err != nil {
		return model.Message{}, err
	}
	msg.TextBody = nullable(text)
	msg.ImageBody = nullable(image)
	return msg, nil
}
