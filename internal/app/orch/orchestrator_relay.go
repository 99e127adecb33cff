package orch

import (
	"encoding/json"

	"github.com/dkeye/Callboard/internal/app"
	"github.com/dkeye/Callboard/internal/domain"
)

// Forward relays an offer, answer or ICE candidate to target.
func (o *Orchestrator) Forward(id domain.ConnID, kind string, target domain.ConnID, payload json.RawMessage, roomID domain.RoomID) {
	o.apply(func(tx *app.Txn) {
		o.Relay.Forward(tx, id, kind, target, payload, roomID)
	})
}

func (o *Orchestrator) SendMessage(id, target domain.ConnID, message string) {
	o.apply(func(tx *app.Txn) {
		o.Relay.Chat(tx, id, target, message)
	})
}
