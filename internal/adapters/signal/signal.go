package signal

import (
	"context"
	"net/http"
	"sync"

	"github.com/dkeye/Callboard/internal/app/orch"
	"github.com/dkeye/Callboard/internal/config"
	"github.com/dkeye/Callboard/internal/core"
	"github.com/dkeye/Callboard/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

type SignalWSController struct {
	Orch     *orch.Orchestrator
	cfg      config.WSConfig
	rooms    *RoomRateLimiter
	validate *validator.Validate
	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, ws config.WSConfig, rooms config.RoomsConfig) *SignalWSController {
	return &SignalWSController{
		Orch:     o,
		cfg:      ws,
		rooms:    NewRoomRateLimiter(rooms.CreateLimit, rooms.CreateWindow),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// WsSignalConn is the outbound half of one websocket. Frames queue in send
// and are written by writePump.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
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

// session is the read side state of one connection.
type session struct {
	id     domain.ConnID
	client string
	events *rate.Limiter
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	client := c.GetString("client_token")
	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.cfg.ReadLimit)

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.cfg.SendBuffer),
	}
	sess := &session{
		id:     core.NewConnID(),
		client: client,
		events: rate.NewLimiter(rate.Limit(ctl.cfg.EventsPerSecond), ctl.cfg.EventsBurst),
	}
	log.Info().Str("module", "signal").Str("conn", string(sess.id)).Str("client", client).Msg("new WS connection")

	if err := ctl.Orch.Connect(sess.id, conn); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(sess.id)).Msg("attach")
		conn.Close()
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, sess, conn)
}

// rateKey groups connections of one browser; connections without a
// client token are limited on their own.
func (s *session) rateKey() string {
	if s.client != "" {
		return s.client
	}
	return string(s.id)
}
