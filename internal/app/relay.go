package app

import (
	"encoding/json"

	"github.com/dkeye/Callboard/internal/domain"
	"github.com/rs/zerolog/log"
)

// chatTimeLayout matches JavaScript's Date.toISOString.
const chatTimeLayout = "2006-01-02T15:04:05.000Z"

// Relay forwards negotiation payloads and chat text to one named
// connection. Nothing is inspected and nothing is stored; a target that is
// not registered drops the message.
type Relay struct{}

// Forward relays an offer, answer or ICE candidate.
func (Relay) Forward(tx *Txn, fromID domain.ConnID, kind string, targetID domain.ConnID, payload json.RawMessage, roomID domain.RoomID) {
	ev := Relayed{Type: kind, From: fromID, RoomID: roomID}
	switch kind {
	case EventOffer:
		ev.Offer = payload
	case EventAnswer:
		ev.Answer = payload
	case EventICECandidate:
		ev.Candidate = payload
	default:
		log.Warn().Str("module", "app.relay").Str("kind", kind).Msg("not a relayable kind")
		return
	}
	if !deliverable(tx, fromID, targetID, kind) {
		return
	}
	tx.Send(targetID, ev)
}

// Chat relays one chat line stamped with the server clock.
func (Relay) Chat(tx *Txn, fromID, targetID domain.ConnID, message string) {
	if !deliverable(tx, fromID, targetID, "send-message") {
		return
	}
	tx.Send(targetID, ReceiveMessage{
		Type:      EventReceiveMessage,
		From:      fromID,
		Message:   message,
		Timestamp: tx.Now().UTC().Format(chatTimeLayout),
	})
}

func deliverable(tx *Txn, fromID, targetID domain.ConnID, kind string) bool {
	if targetID == fromID || !tx.Registered(targetID) {
		log.Debug().Str("module", "app.relay").Str("conn", string(fromID)).Str("target", string(targetID)).Str("kind", kind).Msg("dropped")
		return false
	}
	return true
}
