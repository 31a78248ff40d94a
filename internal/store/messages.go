package store

import (
	"context"
	"fmt"

	"github.com/dangmn/chatline/internal/domain"
)

// CreateMessage inserts one message record.
func (s *Store) CreateMessage(ctx context.Context, msg *domain.Message) error {
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO messages (id, content, sent_at, sender_id, chat_room_id, message_type)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID,
		msg.Content,
		toMillis(msg.SentAt),
		string(msg.SenderID),
		string(msg.RoomID),
		msg.Type,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// MessagesByRoom returns the room's messages in send order.
func (s *Store) MessagesByRoom(ctx context.Context, room domain.RoomID) ([]domain.Message, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, content, sent_at, sender_id, chat_room_id, message_type
		 FROM messages WHERE chat_room_id = ? ORDER BY sent_at ASC`,
		string(room),
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		var sentAt int64
		if err := rows.Scan(&msg.ID, &msg.Content, &sentAt, &msg.SenderID, &msg.RoomID, &msg.Type); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.SentAt = fromMillis(sentAt)
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
