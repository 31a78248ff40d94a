// Package http wires the REST API, the WebSocket endpoint, and metrics
// onto one gin router.
package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/dangmn/chatline/internal/adapters/signal"
	"github.com/dangmn/chatline/internal/auth"
	"github.com/dangmn/chatline/internal/config"
	"github.com/dangmn/chatline/internal/core"
	"github.com/dangmn/chatline/internal/store"
)

// API bundles the dependencies the REST handlers need.
type API struct {
	Store    *store.Store
	Tokens   *auth.TokenService
	Registry *core.Registry
	Resolver *core.Resolver
}

func SetupRouter(ctx context.Context, cfg *config.Config, api *API, ws *signal.ChatWSController) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	apiGroup := r.Group("/api")

	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/register", api.register)
	authGroup.POST("/login", api.login)
	authGroup.POST("/logout", AuthRequired(api.Tokens), api.logout)
	authGroup.GET("/me", AuthRequired(api.Tokens), api.me)

	chatGroup := apiGroup.Group("/chat", AuthRequired(api.Tokens))
	chatGroup.POST("/rooms", api.createRoom)
	chatGroup.GET("/rooms", api.myRooms)
	chatGroup.GET("/rooms/:room_id/messages", api.roomMessages)
	chatGroup.POST("/alias", api.setAlias)
	chatGroup.GET("/alias/:user_id", api.getAlias)
	chatGroup.GET("/users", api.listUsers)
	chatGroup.GET("/online", api.onlineUsers)

	apiGroup.GET("/ws/chat", func(c *gin.Context) {
		ws.HandleChat(ctx, c)
	})

	return r
}
