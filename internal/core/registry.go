package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dangmn/chatline/internal/domain"
)

// Registry tracks which users are connected and which rooms their live
// session has joined. Membership here is purely session-scoped: it is
// rebuilt from joins after every restart and is distinct from the durable
// participant relation that gates authorization.
//
// At most one connection per identity is held; a newer registration
// supersedes the old one. All state lives behind a single lock and no
// operation blocks on I/O while holding it.
type Registry struct {
	mu          sync.RWMutex
	conns       map[domain.UserID]Connection
	roomMembers map[domain.RoomID]map[domain.UserID]struct{}
	userRooms   map[domain.UserID]map[domain.RoomID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		conns:       make(map[domain.UserID]Connection),
		roomMembers: make(map[domain.RoomID]map[domain.UserID]struct{}),
		userRooms:   make(map[domain.UserID]map[domain.RoomID]struct{}),
	}
}

// Register inserts or replaces the connection for id. The superseded
// connection, if any, is returned for teardown by the caller; newest
// connection wins. Live room memberships survive the replacement.
func (r *Registry) Register(id domain.UserID, conn Connection) Connection {
	r.mu.Lock()
	defer r.mu.Unlock()
	old := r.conns[id]
	r.conns[id] = conn
	if old != nil {
		log.Info().Str("module", "core.registry").Str("user", string(id)).Msg("connection superseded")
	} else {
		log.Info().Str("module", "core.registry").Str("user", string(id)).Int("online", len(r.conns)).Msg("user connected")
	}
	return old
}

// Unregister removes the entry for id and drops id from every room's live
// membership set. No-op if absent.
func (r *Registry) Unregister(id domain.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evict(id)
}

// Release is Unregister guarded by connection identity: it tears the entry
// down only if conn still owns it. A superseded connection's dying read
// loop calls this so it cannot evict its successor.
func (r *Registry) Release(id domain.UserID, conn Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conns[id] != conn {
		return
	}
	r.evict(id)
}

// evict assumes r.mu is held.
func (r *Registry) evict(id domain.UserID) {
	if _, ok := r.conns[id]; !ok {
		return
	}
	delete(r.conns, id)
	for room := range r.userRooms[id] {
		delete(r.roomMembers[room], id)
		if len(r.roomMembers[room]) == 0 {
			delete(r.roomMembers, room)
		}
	}
	delete(r.userRooms, id)
	log.Info().Str("module", "core.registry").Str("user", string(id)).Int("online", len(r.conns)).Msg("user disconnected")
}

// JoinRoom adds id to the room's live set. Requires an active connection;
// returns false otherwise.
func (r *Registry) JoinRoom(id domain.UserID, room domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[id]; !ok {
		return false
	}
	if r.roomMembers[room] == nil {
		r.roomMembers[room] = make(map[domain.UserID]struct{})
	}
	r.roomMembers[room][id] = struct{}{}
	if r.userRooms[id] == nil {
		r.userRooms[id] = make(map[domain.RoomID]struct{})
	}
	r.userRooms[id][room] = struct{}{}
	log.Info().Str("module", "core.registry").Str("user", string(id)).Str("room", string(room)).Msg("joined room")
	return true
}

// LeaveRoom removes id from the room's live set. Idempotent.
func (r *Registry) LeaveRoom(id domain.UserID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if members, ok := r.roomMembers[room]; ok {
		delete(members, id)
		if len(members) == 0 {
			delete(r.roomMembers, room)
		}
	}
	if rooms, ok := r.userRooms[id]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(r.userRooms, id)
		}
	}
}

func (r *Registry) IsInRoom(id domain.UserID, room domain.RoomID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.roomMembers[room][id]
	return ok
}

// LiveMembers returns a snapshot of the room's live membership. Empty for
// unknown rooms.
func (r *Registry) LiveMembers(room domain.RoomID) []domain.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.UserID, 0, len(r.roomMembers[room]))
	for id := range r.roomMembers[room] {
		out = append(out, id)
	}
	return out
}

func (r *Registry) ConnectionFor(id domain.UserID) (Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[id]
	return conn, ok
}

func (r *Registry) IsOnline(id domain.UserID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[id]
	return ok
}

// OnlineUsers snapshots every registered identity.
func (r *Registry) OnlineUsers() []domain.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.UserID, 0, len(r.conns))
	for id := range r.conns {
		out = append(out, id)
	}
	return out
}
