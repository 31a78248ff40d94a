package core

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dangmn/chatline/internal/domain"
)

// fakeConn records delivered frames and can be flipped into a failing
// state to simulate a dead peer.
type fakeConn struct {
	mu      sync.Mutex
	frames  []Frame
	failing bool
	closed  bool
}

func (c *fakeConn) TrySend(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing || c.closed {
		return errors.New("send failed")
	}
	buf := make(Frame, len(f))
	copy(buf, f)
	c.frames = append(c.frames, buf)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// events decodes every recorded frame into a generic map.
func (c *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.frames))
	for _, frame := range c.frames {
		var ev map[string]any
		require.NoError(t, json.Unmarshal(frame, &ev))
		out = append(out, ev)
	}
	return out
}

func TestRegisterSupersedesPreviousConnection(t *testing.T) {
	reg := NewRegistry()
	first := &fakeConn{}
	second := &fakeConn{}

	assert.Nil(t, reg.Register("alice", first))
	superseded := reg.Register("alice", second)
	assert.Same(t, first, superseded)

	conn, ok := reg.ConnectionFor("alice")
	require.True(t, ok)
	assert.Same(t, second, conn)
	assert.Len(t, reg.OnlineUsers(), 1)
}

func TestSupersededConnectionCannotEvictSuccessor(t *testing.T) {
	reg := NewRegistry()
	first := &fakeConn{}
	second := &fakeConn{}

	reg.Register("alice", first)
	reg.Register("alice", second)
	reg.JoinRoom("alice", "r1")

	// The dying read loop of the first connection releases its entry; the
	// second connection and its memberships must survive.
	reg.Release("alice", first)
	assert.True(t, reg.IsOnline("alice"))
	assert.True(t, reg.IsInRoom("alice", "r1"))

	reg.Release("alice", second)
	assert.False(t, reg.IsOnline("alice"))
	assert.False(t, reg.IsInRoom("alice", "r1"))
}

func TestJoinRoomRequiresActiveConnection(t *testing.T) {
	reg := NewRegistry()
	assert.False(t, reg.JoinRoom("ghost", "r1"))
	assert.False(t, reg.IsInRoom("ghost", "r1"))

	reg.Register("alice", &fakeConn{})
	assert.True(t, reg.JoinRoom("alice", "r1"))
	assert.True(t, reg.IsInRoom("alice", "r1"))
}

func TestLeaveRoomIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	reg.Register("alice", &fakeConn{})
	reg.JoinRoom("alice", "r1")

	reg.LeaveRoom("alice", "r1")
	assert.False(t, reg.IsInRoom("alice", "r1"))
	reg.LeaveRoom("alice", "r1")
	assert.False(t, reg.IsInRoom("alice", "r1"))

	// leaving an unknown room is also a no-op
	reg.LeaveRoom("alice", "nope")
}

func TestUnregisterRemovesAllMemberships(t *testing.T) {
	reg := NewRegistry()
	reg.Register("alice", &fakeConn{})
	reg.Register("bob", &fakeConn{})
	reg.JoinRoom("alice", "r1")
	reg.JoinRoom("alice", "r2")
	reg.JoinRoom("bob", "r1")

	reg.Unregister("alice")

	assert.False(t, reg.IsOnline("alice"))
	assert.False(t, reg.IsInRoom("alice", "r1"))
	assert.False(t, reg.IsInRoom("alice", "r2"))
	assert.True(t, reg.IsInRoom("bob", "r1"))

	// idempotent
	reg.Unregister("alice")
	assert.False(t, reg.IsOnline("alice"))
}

func TestLiveMembersSnapshot(t *testing.T) {
	reg := NewRegistry()
	assert.Empty(t, reg.LiveMembers("nowhere"))

	for _, id := range []domain.UserID{"a", "b", "c"} {
		reg.Register(id, &fakeConn{})
		reg.JoinRoom(id, "r1")
	}
	members := reg.LiveMembers("r1")
	assert.ElementsMatch(t, []domain.UserID{"a", "b", "c"}, members)

	// mutating the registry does not change the returned snapshot
	reg.Unregister("a")
	assert.Len(t, members, 3)
	assert.ElementsMatch(t, []domain.UserID{"b", "c"}, reg.LiveMembers("r1"))
}

func TestConcurrentRegistryAccess(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	ids := []domain.UserID{"u1", "u2", "u3", "u4"}
	for _, id := range ids {
		wg.Add(1)
		go func(id domain.UserID) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				reg.Register(id, &fakeConn{})
				reg.JoinRoom(id, "shared")
				reg.LiveMembers("shared")
				reg.LeaveRoom(id, "shared")
				reg.Unregister(id)
			}
		}(id)
	}
	wg.Wait()
	assert.Empty(t, reg.OnlineUsers())
	assert.Empty(t, reg.LiveMembers("shared"))
}
