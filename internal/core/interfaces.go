package core

import (
	"context"

	"github.com/dangmn/chatline/internal/domain"
)

// Frame is one serialized JSON event on the wire.
type Frame []byte

// Connection abstracts a client messaging transport.
// Owned by the adapter; the adapter must Close() it.
type Connection interface {
	TrySend(Frame) error
	Close()
}

// DeliveryResult reports the outcome of a best-effort fan-out.
// Per-recipient failures are counted, never propagated.
type DeliveryResult struct {
	Sent   int
	Failed []domain.UserID
}

// ParticipantSource is the durable participant relation. It gates join_room;
// live membership is never written back to it.
type ParticipantSource interface {
	ParticipantIDs(ctx context.Context, room domain.RoomID) ([]domain.UserID, error)
}

// MessageSink persists a message. Fan-out happens only after it succeeds.
type MessageSink interface {
	CreateMessage(ctx context.Context, msg *domain.Message) error
}

// AliasSource looks up the display name viewer has set for subject.
// found is false when no alias exists.
type AliasSource interface {
	AliasName(ctx context.Context, viewer, subject domain.UserID) (name string, found bool, err error)
}

// UserSource is a read-only view of user accounts.
type UserSource interface {
	UserByID(ctx context.Context, id domain.UserID) (*domain.User, error)
}

// TokenVerifier checks a handshake credential and yields the caller identity.
type TokenVerifier interface {
	Verify(token string) (domain.UserID, error)
}
