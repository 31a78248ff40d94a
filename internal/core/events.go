package core

import "github.com/dangmn/chatline/internal/domain"

// Inbound and outbound event shapes. Field names are the public wire
// contract shared with the browser client.

const (
	EventJoinRoom    = "join_room"
	EventSendMessage = "send_message"
	EventTyping      = "typing"
	EventLeaveRoom   = "leave_room"

	EventConnected  = "connected"
	EventRoomJoined = "room_joined"
	EventUserJoined = "user_joined"
	EventNewMessage = "new_message"
	EventError      = "error"
)

// ClientFrame is the envelope every inbound frame decodes into.
// Fields not used by the frame's type are left zero.
type ClientFrame struct {
	Type        string `json:"type"`
	RoomID      string `json:"room_id"`
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
	IsTyping    bool   `json:"is_typing"`
}

type ConnectedEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type RoomJoinedEvent struct {
	Type    string        `json:"type"`
	RoomID  domain.RoomID `json:"room_id"`
	Message string        `json:"message"`
}

type UserJoinedEvent struct {
	Type     string        `json:"type"`
	UserID   domain.UserID `json:"user_id"`
	Username string        `json:"username"`
}

// MessageView is one recipient's view of a persisted message. The
// SenderUsername is the recipient's alias for the sender, so two
// recipients of the same message may see different values here.
type MessageView struct {
	ID             string        `json:"id"`
	Content        string        `json:"content"`
	SentAt         string        `json:"sent_at"`
	SenderID       domain.UserID `json:"sender_id"`
	SenderUsername string        `json:"sender_username"`
	RoomID         domain.RoomID `json:"chat_room_id"`
	MessageType    string        `json:"message_type"`
}

type NewMessageEvent struct {
	Type    string      `json:"type"`
	Message MessageView `json:"message"`
}

type TypingEvent struct {
	Type     string        `json:"type"`
	UserID   domain.UserID `json:"user_id"`
	Username string        `json:"username"`
	IsTyping bool          `json:"is_typing"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewErrorEvent(msg string) ErrorEvent {
	return ErrorEvent{Type: EventError, Message: msg}
}
