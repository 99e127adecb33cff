package signal

import (
	"encoding/json"

	"github.com/dkeye/Callboard/internal/app"
	"github.com/dkeye/Callboard/internal/domain"
	"github.com/rs/zerolog/log"
)

// relayPayload covers offer, answer and ice-candidate. The SDP or candidate
// stays raw; the coordinator never looks inside. fromRoom is the field name
// older clients use for roomId.
type relayPayload struct {
	TargetID  string          `json:"targetId" validate:"required,max=64"`
	Offer     json.RawMessage `json:"offer"`
	Answer    json.RawMessage `json:"answer"`
	Candidate json.RawMessage `json:"candidate"`
	RoomID    string          `json:"roomId" validate:"max=64"`
	FromRoom  string          `json:"fromRoom" validate:"max=64"`
}

type messagePayload struct {
	TargetID string `json:"targetId" validate:"required,max=64"`
	Message  string `json:"message" validate:"required,max=4096"`
}

func (ctl *SignalWSController) handleRelay(
	sess *session,
	conn *WsSignalConn,
	kind string,
	data []byte,
) {
	var p relayPayload
	if !ctl.decode(sess, conn, data, &p) {
		return
	}
	var payload json.RawMessage
	switch kind {
	case app.EventOffer:
		payload = p.Offer
	case app.EventAnswer:
		payload = p.Answer
	case app.EventICECandidate:
		payload = p.Candidate
	}
	if len(payload) == 0 || string(payload) == "null" {
		log.Error().Str("module", "signal").Str("conn", string(sess.id)).Str("kind", kind).Msg("relay without payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	roomID := p.RoomID
	if roomID == "" {
		roomID = p.FromRoom
	}
	ctl.Orch.Forward(sess.id, kind, domain.ConnID(p.TargetID), payload, domain.RoomID(roomID))
}

func (ctl *SignalWSController) handleSendMessage(
	sess *session,
	conn *WsSignalConn,
	data []byte,
) {
	var p messagePayload
	if !ctl.decode(sess, conn, data, &p) {
		return
	}
	ctl.Orch.SendMessage(sess.id, domain.ConnID(p.TargetID), p.Message)
}
