package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/Callboard/internal/app"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(ctl.cfg.WriteWait)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, sess *session, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(sess.id)).Msg("readPump closing")
		cancel()
		c.Close()
		ctl.Orch.Disconnect(sess.id)
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			msgType, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Warn().Err(err).Str("module", "signal").Str("conn", string(sess.id)).Msg("readPump read error")
				}
				return
			}
			if msgType != websocket.TextMessage {
				log.Warn().Str("module", "signal").Str("conn", string(sess.id)).Msg("binary frame ignored")
				continue
			}
			_ = c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
			ctl.handleSignal(sess, c, data)
		}
	}
}

func (ctl *SignalWSController) handleSignal(sess *session, c *WsSignalConn, data []byte) {
	if !sess.events.Allow() {
		log.Warn().Str("module", "signal").Str("conn", string(sess.id)).Msg("event rate exceeded")
		ctl.sendError(c, "rate_limited")
		return
	}

	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(sess.id)).Msg("bad json")
		ctl.sendError(c, "bad_payload")
		return
	}

	switch env.Type {
	case "ping":
		ctl.handlePing(c)
	case "whoami":
		ctl.Orch.WhoAmI(sess.id)
	case "join":
		ctl.handleJoin(sess, c, data)
	case "get-users":
		ctl.Orch.GetUsers(sess.id)
	case "create-room":
		ctl.handleCreateRoom(sess, c, data)
	case "join-room":
		ctl.handleJoinRoom(sess, c, data)
	case "leave-room":
		ctl.handleLeaveRoom(sess, c, data)
	case "call-user":
		ctl.handleCallControl(sess, c, data, ctl.Orch.CallUser)
	case "accept-call":
		ctl.handleCallControl(sess, c, data, ctl.Orch.AcceptCall)
	case "reject-call":
		ctl.handleCallControl(sess, c, data, ctl.Orch.RejectCall)
	case "end-call":
		ctl.handleCallControl(sess, c, data, ctl.Orch.EndCall)
	case "send-message":
		ctl.handleSendMessage(sess, c, data)
	case app.EventOffer, app.EventAnswer, app.EventICECandidate:
		ctl.handleRelay(sess, c, env.Type, data)
	default:
		log.Warn().Str("module", "signal").Str("conn", string(sess.id)).Str("type", env.Type).Msg("unknown signal")
	}
}

// decode unmarshals and validates a payload. On failure the sender gets a
// bad_payload error and the event is dropped.
func (ctl *SignalWSController) decode(sess *session, c *WsSignalConn, data []byte, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(sess.id)).Msg("bad payload")
		ctl.sendError(c, "bad_payload")
		return false
	}
	if err := ctl.validate.Struct(v); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(sess.id)).Msg("invalid payload")
		ctl.sendError(c, "bad_payload")
		return false
	}
	return true
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *SignalWSController) sendError(c *WsSignalConn, msg string) {
	ctl.sendJSON(c, app.Error{Type: app.EventError, Error: msg})
}
