package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const MaxRoomNameLen = 100

var (
	ErrRoomNameEmpty   = errors.New("room name empty")
	ErrRoomNameTooLong = errors.New("room name too long")
	ErrBadRoomType     = errors.New("room type must be direct or group")
)

type RoomID string

const (
	RoomTypeDirect = "direct"
	RoomTypeGroup  = "group"
)

type ChatRoom struct {
	ID        RoomID    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"create_at"`
	AdminID   UserID    `json:"admin_id"`
}

func NewChatRoom(name, roomType string, admin UserID) (*ChatRoom, error) {
	if len(name) == 0 {
		return nil, ErrRoomNameEmpty
	}
	if len(name) > MaxRoomNameLen {
		return nil, ErrRoomNameTooLong
	}
	if roomType != RoomTypeDirect && roomType != RoomTypeGroup {
		return nil, ErrBadRoomType
	}
	return &ChatRoom{
		ID:        RoomID(uuid.NewString()),
		Name:      name,
		Type:      roomType,
		CreatedAt: time.Now().UTC(),
		AdminID:   admin,
	}, nil
}

// Participant is the durable room membership relation. It governs who is
// allowed to join a room over the socket, independent of who is connected.
type Participant struct {
	ID       string    `json:"id"`
	UserID   UserID    `json:"user_id"`
	RoomID   RoomID    `json:"chat_room_id"`
	JoinedAt time.Time `json:"join_at"`
}

func NewParticipant(user UserID, room RoomID) *Participant {
	return &Participant{
		ID:       uuid.NewString(),
		UserID:   user,
		RoomID:   room,
		JoinedAt: time.Now().UTC(),
	}
}
