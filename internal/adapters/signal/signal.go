// Package signal is the WebSocket adapter for the room protocol: one
// connection per client, one listener per event kind registered at
// connection setup, dispatching into the room's serialized handlers.
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

	"trivia-party-service/internal/app/orch"
	"trivia-party-service/internal/config"
	"trivia-party-service/internal/core"
	"trivia-party-service/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type GameWSController struct {
	Orch       *orch.Orchestrator
	chatLimit  *ChatRateLimiter
	readLimit  int64
	pingPeriod time.Duration
}

func NewGameWSController(o *orch.Orchestrator, cfg *config.Config) *GameWSController {
	return &GameWSController{
		Orch:       o,
		chatLimit:  NewChatRateLimiter(cfg.ChatRateLimit, cfg.ChatRateWin),
		readLimit:  cfg.ReadLimit,
		pingPeriod: cfg.PingPeriod,
	}
}

type wsGameConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsGameConn) TrySend(f core.Frame) error {
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

func (c *wsGameConn) Close() {
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

// HandleGame upgrades the request and runs the session until the
// transport closes. The session starts as an unnamed guest; identity
// and room placement arrive with the join-game event.
func (ctl *GameWSController) HandleGame(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}

	conn := &wsGameConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	// A reconnect under the same client token supersedes the previous
	// transport; the stale session is evicted before the new one binds.
	if _, ok := ctl.Orch.Registry.Session(sid); ok {
		ctl.Orch.Registry.Cancel(sid)
		ctl.evict(sid)
	}

	meta := &domain.Player{ID: domain.PlayerID(sid), Name: "guest"}
	sess := core.NewPlayerSession(meta, conn)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Registry.Bind(sid, sess, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}
