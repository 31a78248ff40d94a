package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dangmn/chatline/internal/domain"
	"github.com/dangmn/chatline/internal/metrics"
)

// Fanout delivers events to currently-connected recipients. Delivery is
// best-effort: a failed write is treated as that peer's disconnect and
// never aborts delivery to the remaining peers. Recipient sets are
// snapshotted under the registry lock; sends happen after it is released.
type Fanout struct {
	registry *Registry
	resolver *Resolver
}

func NewFanout(registry *Registry, resolver *Resolver) *Fanout {
	return &Fanout{registry: registry, resolver: resolver}
}

// SendToUser serializes payload and attempts a non-blocking write to the
// user's live connection. Returns false when the user is offline or the
// write failed; failures are logged, the peer is evicted, and the caller
// is never handed an error.
func (f *Fanout) SendToUser(id domain.UserID, payload any) bool {
	frame, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("module", "core.fanout").Msg("marshal payload")
		return false
	}
	return f.sendFrame(id, frame)
}

func (f *Fanout) sendFrame(id domain.UserID, frame Frame) bool {
	conn, ok := f.registry.ConnectionFor(id)
	if !ok {
		return false
	}
	if err := conn.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "core.fanout").Str("user", string(id)).Msg("send failed, dropping connection")
		f.registry.Release(id, conn)
		conn.Close()
		return false
	}
	metrics.MessagesSent.Inc()
	return true
}

// SendToRoom fans payload out to the room's live members, skipping exclude
// if non-empty. The membership snapshot is taken once; joiners that race
// the iteration are not guaranteed delivery.
func (f *Fanout) SendToRoom(room domain.RoomID, payload any, exclude domain.UserID) DeliveryResult {
	frame, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("module", "core.fanout").Msg("marshal payload")
		return DeliveryResult{}
	}
	var res DeliveryResult
	for _, id := range f.registry.LiveMembers(room) {
		if id == exclude {
			continue
		}
		if f.sendFrame(id, frame) {
			res.Sent++
		} else {
			res.Failed = append(res.Failed, id)
		}
	}
	log.Debug().Str("module", "core.fanout").Str("room", string(room)).Int("sent", res.Sent).Int("failed", len(res.Failed)).Msg("room fanout")
	return res
}

// SendToAll fans payload out to every registered identity.
func (f *Fanout) SendToAll(payload any) DeliveryResult {
	frame, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("module", "core.fanout").Msg("marshal payload")
		return DeliveryResult{}
	}
	var res DeliveryResult
	for _, id := range f.registry.OnlineUsers() {
		if f.sendFrame(id, frame) {
			res.Sent++
		} else {
			res.Failed = append(res.Failed, id)
		}
	}
	return res
}

// FanMessage delivers a persisted message to the room's live members. The
// payload is not identical per recipient: sender_username carries each
// recipient's own alias view of the sender, so it is resolved and
// serialized per target.
func (f *Fanout) FanMessage(ctx context.Context, msg *domain.Message) DeliveryResult {
	var res DeliveryResult
	for _, id := range f.registry.LiveMembers(msg.RoomID) {
		view := NewMessageEvent{
			Type: EventNewMessage,
			Message: MessageView{
				ID:             msg.ID,
				Content:        msg.Content,
				SentAt:         msg.SentAt.Format(time.RFC3339),
				SenderID:       msg.SenderID,
				SenderUsername: f.resolver.DisplayName(ctx, id, msg.SenderID),
				RoomID:         msg.RoomID,
				MessageType:    msg.Type,
			},
		}
		if f.SendToUser(id, view) {
			res.Sent++
		} else {
			res.Failed = append(res.Failed, id)
		}
	}
	return res
}
