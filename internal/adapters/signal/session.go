package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dangmn/chatline/internal/core"
	"github.com/dangmn/chatline/internal/domain"
	"github.com/dangmn/chatline/internal/metrics"
)

// handleFrame decodes one inbound frame and dispatches it. Malformed
// frames are dropped without disturbing the connection; unrecognized
// event kinds are a forward-compatible no-op.
func (ctl *ChatWSController) handleFrame(ctx context.Context, uid domain.UserID, data []byte) {
	var frame core.ClientFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("user", string(uid)).Msg("bad frame")
		return
	}

	switch frame.Type {
	case core.EventJoinRoom:
		ctl.handleJoinRoom(ctx, uid, frame)
	case core.EventSendMessage:
		ctl.handleSendMessage(ctx, uid, frame)
	case core.EventTyping:
		ctl.handleTyping(ctx, uid, frame)
	case core.EventLeaveRoom:
		ctl.handleLeaveRoom(uid, frame)
	default:
		log.Debug().Str("module", "signal").Str("type", frame.Type).Msg("unknown event kind")
	}
}

func (ctl *ChatWSController) handleJoinRoom(ctx context.Context, uid domain.UserID, frame core.ClientFrame) {
	room := domain.RoomID(frame.RoomID)
	if room == "" {
		return
	}

	participants, err := ctl.Participants.ParticipantIDs(ctx, room)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("room", string(room)).Msg("participant lookup failed")
		ctl.Fanout.SendToUser(uid, core.NewErrorEvent("Failed to verify room membership"))
		return
	}
	if !containsID(participants, uid) {
		ctl.Fanout.SendToUser(uid, core.NewErrorEvent("You are not a participant of this room"))
		return
	}

	ctl.Registry.JoinRoom(uid, room)

	ctl.Fanout.SendToUser(uid, core.RoomJoinedEvent{
		Type:    core.EventRoomJoined,
		RoomID:  room,
		Message: "Successfully joined room",
	})
	ctl.Fanout.SendToRoom(room, core.UserJoinedEvent{
		Type:     core.EventUserJoined,
		UserID:   uid,
		Username: ctl.rawUsername(ctx, uid),
	}, uid)
}

func (ctl *ChatWSController) handleSendMessage(ctx context.Context, uid domain.UserID, frame core.ClientFrame) {
	room := domain.RoomID(frame.RoomID)
	if room == "" || frame.Content == "" {
		return
	}

	// Session must have joined the room via join_room; being a durable
	// participant alone is not enough.
	if !ctl.Registry.IsInRoom(uid, room) {
		ctl.Fanout.SendToUser(uid, core.NewErrorEvent("You must join the room before sending messages"))
		return
	}

	msg, err := domain.NewMessage(uid, room, frame.Content, frame.MessageType)
	if err == nil {
		err = ctl.Messages.CreateMessage(ctx, msg)
	}
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("user", string(uid)).Msg("persist message failed")
		ctl.Fanout.SendToUser(uid, core.NewErrorEvent("Failed to send message"))
		return
	}
	metrics.MessagesPersisted.Inc()

	ctl.Fanout.FanMessage(ctx, msg)
}

func (ctl *ChatWSController) handleTyping(ctx context.Context, uid domain.UserID, frame core.ClientFrame) {
	room := domain.RoomID(frame.RoomID)
	if room == "" {
		return
	}

	ctl.Fanout.SendToRoom(room, core.TypingEvent{
		Type:     core.EventTyping,
		UserID:   uid,
		Username: ctl.rawUsername(ctx, uid),
		IsTyping: frame.IsTyping,
	}, uid)
}

func (ctl *ChatWSController) handleLeaveRoom(uid domain.UserID, frame core.ClientFrame) {
	room := domain.RoomID(frame.RoomID)
	if room == "" {
		return
	}
	ctl.Registry.LeaveRoom(uid, room)
}

// rawUsername is the un-aliased account name used for presence events.
func (ctl *ChatWSController) rawUsername(ctx context.Context, uid domain.UserID) string {
	user, err := ctl.Users.UserByID(ctx, uid)
	if err != nil || user == nil {
		return core.UnknownName
	}
	return user.Username
}

func containsID(ids []domain.UserID, id domain.UserID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
