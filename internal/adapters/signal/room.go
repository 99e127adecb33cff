package signal

import (
	"github.com/dkeye/Callboard/internal/domain"
	"github.com/rs/zerolog/log"
)

type createRoomPayload struct {
	RoomName string `json:"roomName" validate:"required,max=256"`
}

type roomPayload struct {
	RoomID string `json:"roomId" validate:"required"`
}

func (ctl *SignalWSController) handleCreateRoom(
	sess *session,
	conn *WsSignalConn,
	data []byte,
) {
	var p createRoomPayload
	if !ctl.decode(sess, conn, data, &p) {
		return
	}
	name, err := domain.NewRoomName(p.RoomName)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(sess.id)).Msg("bad room name")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if !ctl.rooms.Allow(sess.rateKey()) {
		log.Warn().Str("module", "signal").Str("conn", string(sess.id)).Msg("room creation rate exceeded")
		ctl.sendError(conn, "rate_limited")
		return
	}
	ctl.Orch.CreateRoom(sess.id, name)
}

func (ctl *SignalWSController) handleJoinRoom(
	sess *session,
	conn *WsSignalConn,
	data []byte,
) {
	roomID, ok := ctl.decodeRoomID(sess, conn, data)
	if !ok {
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(sess.id)).Str("room_id", string(roomID)).Msg("join-room")
	ctl.Orch.JoinRoom(sess.id, roomID)
}

// handleLeaveRoom: выход из текущей комнаты, соединение при этом не рвётся.
func (ctl *SignalWSController) handleLeaveRoom(
	sess *session,
	conn *WsSignalConn,
	data []byte,
) {
	roomID, ok := ctl.decodeRoomID(sess, conn, data)
	if !ok {
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(sess.id)).Str("room_id", string(roomID)).Msg("leave-room")
	ctl.Orch.LeaveRoom(sess.id, roomID)
}

func (ctl *SignalWSController) decodeRoomID(sess *session, conn *WsSignalConn, data []byte) (domain.RoomID, bool) {
	var p roomPayload
	if !ctl.decode(sess, conn, data, &p) {
		return "", false
	}
	roomID, err := domain.ParseRoomID(p.RoomID)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(sess.id)).Str("room_id", p.RoomID).Msg("bad room id")
		ctl.sendError(conn, "bad_payload")
		return "", false
	}
	return roomID, true
}
