// Package signal is the WebSocket adapter: it authenticates incoming
// connections, binds them into the session registry, and runs the
// per-connection event loop.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dangmn/chatline/internal/core"
	"github.com/dangmn/chatline/internal/metrics"
)

var ErrBackpressure = errors.New("backpressure")

// ChatWSController owns the socket lifecycle for every chat connection.
type ChatWSController struct {
	Registry     *core.Registry
	Fanout       *core.Fanout
	Tokens       core.TokenVerifier
	Participants core.ParticipantSource
	Messages     core.MessageSink
	Users        core.UserSource

	ReadLimit  int64
	PingPeriod time.Duration
}

// WsConn wraps a websocket connection behind core.Connection. Writes go
// through a buffered channel drained by a single writer goroutine, so
// fanned-out payloads never interleave on the socket.
type WsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleChat upgrades the request and walks the connection through
// handshake, registration, and the dispatch loop. An invalid or absent
// token closes the socket with a policy-violation status before any
// event is processed.
func (ctl *ChatWSController) HandleChat(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	uid, err := ctl.Tokens.Verify(c.Query("token"))
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("handshake rejected")
		metrics.AuthFailures.WithLabelValues("ws_token").Inc()
		deadline := time.Now().Add(time.Second)
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid token"), deadline)
		_ = ws.Close()
		return
	}

	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}
	conn := &WsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	if superseded := ctl.Registry.Register(uid, conn); superseded != nil {
		superseded.Close()
	}
	metrics.TotalConnections.Inc()
	metrics.ActiveConnections.Inc()
	log.Info().Str("module", "signal").Str("user", string(uid)).Msg("new WS connection")

	ctl.Fanout.SendToUser(uid, core.ConnectedEvent{
		Type:    core.EventConnected,
		Message: "Connected successfully",
	})

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, uid, conn)
}
