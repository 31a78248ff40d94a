package store

import (
	"context"
	"fmt"

	"github.com/dangmn/chatline/internal/domain"
)

// CreateRoom inserts one chat room record.
func (s *Store) CreateRoom(ctx context.Context, room *domain.ChatRoom) error {
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO chat_rooms (id, name, type, create_at, admin_id) VALUES (?, ?, ?, ?, ?)`,
		string(room.ID),
		room.Name,
		room.Type,
		toMillis(room.CreatedAt),
		string(room.AdminID),
	)
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	return nil
}

// RoomsByUser returns the rooms user participates in, newest first.
func (s *Store) RoomsByUser(ctx context.Context, user domain.UserID) ([]domain.ChatRoom, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT r.id, r.name, r.type, r.create_at, r.admin_id
		 FROM chat_rooms r
		 JOIN chat_participants p ON p.chat_room_id = r.id
		 WHERE p.user_id = ?
		 ORDER BY r.create_at DESC`,
		string(user),
	)
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []domain.ChatRoom
	for rows.Next() {
		var room domain.ChatRoom
		var createdAt int64
		if err := rows.Scan(&room.ID, &room.Name, &room.Type, &createdAt, &room.AdminID); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		room.CreatedAt = fromMillis(createdAt)
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// AddParticipant records durable room membership. The (user, room) pair is
// unique, so re-adding an existing participant fails at the constraint.
func (s *Store) AddParticipant(ctx context.Context, p *domain.Participant) error {
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO chat_participants (id, join_at, user_id, chat_room_id) VALUES (?, ?, ?, ?)`,
		p.ID,
		toMillis(p.JoinedAt),
		string(p.UserID),
		string(p.RoomID),
	)
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

// ParticipantIDs lists the identities durably enrolled in room.
func (s *Store) ParticipantIDs(ctx context.Context, room domain.RoomID) ([]domain.UserID, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT user_id FROM chat_participants WHERE chat_room_id = ?`,
		string(room),
	)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	var ids []domain.UserID
	for rows.Next() {
		var id domain.UserID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ParticipantCount counts the durable participants of room.
func (s *Store) ParticipantCount(ctx context.Context, room domain.RoomID) (int, error) {
	var count int
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM chat_participants WHERE chat_room_id = ?`,
		string(room),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return count, nil
}

// RemoveParticipant deletes durable membership for (user, room).
func (s *Store) RemoveParticipant(ctx context.Context, user domain.UserID, room domain.RoomID) error {
	_, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM chat_participants WHERE user_id = ? AND chat_room_id = ?`,
		string(user),
		string(room),
	)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	return nil
}
