package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dangmn/chatline/internal/domain"
)

func newTestFanout(aliases *fakeAliases, users *fakeUsers) (*Fanout, *Registry) {
	if aliases == nil {
		aliases = &fakeAliases{}
	}
	if users == nil {
		users = &fakeUsers{users: map[domain.UserID]*domain.User{}}
	}
	reg := NewRegistry()
	return NewFanout(reg, NewResolver(aliases, users)), reg
}

func TestSendToUserOfflineIsSwallowed(t *testing.T) {
	fan, _ := newTestFanout(nil, nil)
	assert.False(t, fan.SendToUser("ghost", NewErrorEvent("nope")))
}

func TestSendToUserFailureEvictsPeer(t *testing.T) {
	fan, reg := newTestFanout(nil, nil)
	conn := &fakeConn{failing: true}
	reg.Register("alice", conn)
	reg.JoinRoom("alice", "r1")

	assert.False(t, fan.SendToUser("alice", NewErrorEvent("hi")))
	assert.False(t, reg.IsOnline("alice"))
	assert.False(t, reg.IsInRoom("alice", "r1"))
	assert.True(t, conn.isClosed())
}

func TestSendToRoomExcludesSender(t *testing.T) {
	fan, reg := newTestFanout(nil, nil)
	conns := map[domain.UserID]*fakeConn{}
	for _, id := range []domain.UserID{"a", "b", "c"} {
		conns[id] = &fakeConn{}
		reg.Register(id, conns[id])
		reg.JoinRoom(id, "r1")
	}

	res := fan.SendToRoom("r1", TypingEvent{Type: EventTyping, UserID: "a", IsTyping: true}, "a")

	assert.Equal(t, 2, res.Sent)
	assert.Empty(t, res.Failed)
	assert.Empty(t, conns["a"].events(t))
	assert.Len(t, conns["b"].events(t), 1)
	assert.Len(t, conns["c"].events(t), 1)
}

func TestSendToRoomPeerFailureDoesNotAbortFanout(t *testing.T) {
	fan, reg := newTestFanout(nil, nil)
	good := &fakeConn{}
	bad := &fakeConn{failing: true}
	reg.Register("good", good)
	reg.Register("bad", bad)
	reg.JoinRoom("good", "r1")
	reg.JoinRoom("bad", "r1")

	res := fan.SendToRoom("r1", NewErrorEvent("x"), "")

	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, []domain.UserID{"bad"}, res.Failed)
	assert.Len(t, good.events(t), 1)
	assert.False(t, reg.IsOnline("bad"))
	assert.True(t, reg.IsOnline("good"))
}

func TestSendToAll(t *testing.T) {
	fan, reg := newTestFanout(nil, nil)
	a := &fakeConn{}
	b := &fakeConn{}
	reg.Register("a", a)
	reg.Register("b", b)

	res := fan.SendToAll(ConnectedEvent{Type: EventConnected, Message: "hello"})
	assert.Equal(t, 2, res.Sent)
	assert.Len(t, a.events(t), 1)
	assert.Len(t, b.events(t), 1)
}

func TestFanMessagePersonalizesSenderName(t *testing.T) {
	aliases := &fakeAliases{names: map[aliasKey]string{
		{"bob", "alice"}: "My Friend",
	}}
	users := &fakeUsers{users: map[domain.UserID]*domain.User{
		"alice": {ID: "alice", Username: "alice_real"},
	}}
	fan, reg := newTestFanout(aliases, users)

	aliceConn := &fakeConn{}
	bobConn := &fakeConn{}
	reg.Register("alice", aliceConn)
	reg.Register("bob", bobConn)
	reg.JoinRoom("alice", "r1")
	reg.JoinRoom("bob", "r1")

	msg := &domain.Message{
		ID:       "m1",
		Content:  "hi",
		SentAt:   time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC),
		SenderID: "alice",
		RoomID:   "r1",
		Type:     domain.MessageTypeText,
	}
	res := fan.FanMessage(context.Background(), msg)
	assert.Equal(t, 2, res.Sent)

	bobEvents := bobConn.events(t)
	require.Len(t, bobEvents, 1)
	bobMsg := bobEvents[0]["message"].(map[string]any)
	assert.Equal(t, "new_message", bobEvents[0]["type"])
	assert.Equal(t, "hi", bobMsg["content"])
	assert.Equal(t, "alice", bobMsg["sender_id"])
	assert.Equal(t, "My Friend", bobMsg["sender_username"])
	assert.Equal(t, "r1", bobMsg["chat_room_id"])

	// Alice has no alias for herself, so her own copy falls back to her
	// raw username.
	aliceEvents := aliceConn.events(t)
	require.Len(t, aliceEvents, 1)
	aliceMsg := aliceEvents[0]["message"].(map[string]any)
	assert.Equal(t, "alice_real", aliceMsg["sender_username"])
}

func TestFanMessageSkipsNonMembers(t *testing.T) {
	users := &fakeUsers{users: map[domain.UserID]*domain.User{
		"alice": {ID: "alice", Username: "alice_real"},
	}}
	fan, reg := newTestFanout(nil, users)

	member := &fakeConn{}
	outsider := &fakeConn{}
	reg.Register("alice", member)
	reg.Register("carol", outsider)
	reg.JoinRoom("alice", "r1")
	// carol is online but never joined r1

	msg := &domain.Message{ID: "m1", Content: "hi", SentAt: time.Now(), SenderID: "alice", RoomID: "r1", Type: "text"}
	res := fan.FanMessage(context.Background(), msg)

	assert.Equal(t, 1, res.Sent)
	assert.Empty(t, outsider.events(t))
}
