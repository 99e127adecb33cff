package app

import "github.com/dkeye/Callboard/internal/domain"

// Reconciler unwinds the call or room state of a connection that closed,
// then drops it from the registry.
type Reconciler struct {
	Calls Calls
	Rooms *Rooms
}

func (rc Reconciler) Disconnect(tx *Txn, id domain.ConnID) {
	if p, ok := tx.Get(id); ok {
		if p.InCall() {
			rc.Calls.abandon(tx, p)
		}
		if p.InRoom() {
			rc.Rooms.leave(tx, &p)
		}
	}
	tx.Remove(id)
}
