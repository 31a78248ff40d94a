package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dangmn/chatline/internal/domain"
)

type CreateRoomRequest struct {
	Name           string   `json:"name" binding:"required"`
	Type           string   `json:"type" binding:"required"`
	ParticipantIDs []string `json:"participant_ids"`
}

type RoomResponse struct {
	ID               domain.RoomID `json:"id"`
	Name             string        `json:"name"`
	Type             string        `json:"type"`
	CreatedAt        time.Time     `json:"create_at"`
	AdminID          domain.UserID `json:"admin_id"`
	ParticipantCount int           `json:"participant_count"`
}

type MessageResponse struct {
	ID             string        `json:"id"`
	Content        string        `json:"content"`
	SentAt         time.Time     `json:"sent_at"`
	SenderID       domain.UserID `json:"sender_id"`
	SenderUsername string        `json:"sender_username"`
	RoomID         domain.RoomID `json:"chat_room_id"`
	MessageType    string        `json:"message_type"`
}

type SetAliasRequest struct {
	Subject string `json:"user_get" binding:"required"`
	Name    string `json:"alias_name" binding:"required"`
}

func (a *API) createRoom(c *gin.Context) {
	uid := domain.UserID(c.GetString(ctxUserID))
	ctx := c.Request.Context()

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "missing or invalid fields"})
		return
	}

	room, err := domain.NewChatRoom(req.Name, req.Type, uid)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if err := a.Store.CreateRoom(ctx, room); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("create room")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to create room"})
		return
	}
	if err := a.Store.AddParticipant(ctx, domain.NewParticipant(uid, room.ID)); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("add admin participant")
	}
	count := 1

	for _, rawID := range req.ParticipantIDs {
		other := domain.UserID(rawID)
		if other == uid {
			continue
		}
		if err := a.Store.AddParticipant(ctx, domain.NewParticipant(other, room.ID)); err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Str("user", rawID).Msg("add participant")
			continue
		}
		count++
	}

	// Direct rooms seed reciprocal default aliases: each side starts out
	// seeing the other's real username.
	if room.Type == domain.RoomTypeDirect && len(req.ParticipantIDs) == 2 {
		a.seedDirectAliases(c, domain.UserID(req.ParticipantIDs[0]), domain.UserID(req.ParticipantIDs[1]))
	}

	c.JSON(http.StatusOK, RoomResponse{
		ID:               room.ID,
		Name:             room.Name,
		Type:             room.Type,
		CreatedAt:        room.CreatedAt,
		AdminID:          room.AdminID,
		ParticipantCount: count,
	})
}

func (a *API) seedDirectAliases(c *gin.Context, first, second domain.UserID) {
	ctx := c.Request.Context()
	userA, errA := a.Store.UserByID(ctx, first)
	userB, errB := a.Store.UserByID(ctx, second)
	if errA != nil || errB != nil {
		return
	}
	if alias, err := domain.NewAlias(first, second, userB.Username); err == nil {
		_ = a.Store.UpsertAlias(ctx, alias)
	}
	if alias, err := domain.NewAlias(second, first, userA.Username); err == nil {
		_ = a.Store.UpsertAlias(ctx, alias)
	}
}

func (a *API) myRooms(c *gin.Context) {
	uid := domain.UserID(c.GetString(ctxUserID))
	ctx := c.Request.Context()

	rooms, err := a.Store.RoomsByUser(ctx, uid)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("list rooms")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to list rooms"})
		return
	}

	out := make([]RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		count, err := a.Store.ParticipantCount(ctx, room.ID)
		if err != nil {
			count = 0
		}
		out = append(out, RoomResponse{
			ID:               room.ID,
			Name:             room.Name,
			Type:             room.Type,
			CreatedAt:        room.CreatedAt,
			AdminID:          room.AdminID,
			ParticipantCount: count,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (a *API) roomMessages(c *gin.Context) {
	uid := domain.UserID(c.GetString(ctxUserID))
	room := domain.RoomID(c.Param("room_id"))
	ctx := c.Request.Context()

	participants, err := a.Store.ParticipantIDs(ctx, room)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to load room"})
		return
	}
	allowed := false
	for _, id := range participants {
		if id == uid {
			allowed = true
			break
		}
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"detail": "You are not a participant of this room"})
		return
	}

	messages, err := a.Store.MessagesByRoom(ctx, room)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to load messages"})
		return
	}

	out := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		out = append(out, MessageResponse{
			ID:             msg.ID,
			Content:        msg.Content,
			SentAt:         msg.SentAt,
			SenderID:       msg.SenderID,
			SenderUsername: a.Resolver.DisplayName(ctx, uid, msg.SenderID),
			RoomID:         msg.RoomID,
			MessageType:    msg.Type,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (a *API) setAlias(c *gin.Context) {
	uid := domain.UserID(c.GetString(ctxUserID))

	var req SetAliasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "missing or invalid fields"})
		return
	}

	alias, err := domain.NewAlias(uid, domain.UserID(req.Subject), req.Name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if err := a.Store.UpsertAlias(c.Request.Context(), alias); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("upsert alias")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to set alias"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Alias set successfully"})
}

func (a *API) getAlias(c *gin.Context) {
	uid := domain.UserID(c.GetString(ctxUserID))
	subject := domain.UserID(c.Param("user_id"))

	name := a.Resolver.DisplayName(c.Request.Context(), uid, subject)
	c.JSON(http.StatusOK, gin.H{"alias": name})
}

func (a *API) listUsers(c *gin.Context) {
	uid := domain.UserID(c.GetString(ctxUserID))

	users, err := a.Store.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to list users"})
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, user := range users {
		if user.ID == uid {
			continue
		}
		out = append(out, gin.H{"id": user.ID, "username": user.Username})
	}
	c.JSON(http.StatusOK, out)
}

// onlineUsers exposes the live registry view: who has a socket open right
// now, regardless of room membership.
func (a *API) onlineUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"online": a.Registry.OnlineUsers()})
}
