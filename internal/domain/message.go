package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	MaxMessageLen     = 255
	MaxMessageTypeLen = 50

	MessageTypeText = "text"
)

var (
	ErrMessageEmpty   = errors.New("message content empty")
	ErrMessageTooLong = errors.New("message content too long")
)

type Message struct {
	ID       string    `json:"id"`
	Content  string    `json:"content"`
	SentAt   time.Time `json:"sent_at"`
	SenderID UserID    `json:"sender_id"`
	RoomID   RoomID    `json:"chat_room_id"`
	Type     string    `json:"message_type"`
}

func NewMessage(sender UserID, room RoomID, content, messageType string) (*Message, error) {
	if len(content) == 0 {
		return nil, ErrMessageEmpty
	}
	if len(content) > MaxMessageLen {
		return nil, ErrMessageTooLong
	}
	if messageType == "" || len(messageType) > MaxMessageTypeLen {
		messageType = MessageTypeText
	}
	return &Message{
		ID:       uuid.NewString(),
		Content:  content,
		SentAt:   time.Now().UTC(),
		SenderID: sender,
		RoomID:   room,
		Type:     messageType,
	}, nil
}
