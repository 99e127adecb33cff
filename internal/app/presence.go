package app

import "github.com/dkeye/Callboard/internal/domain"

// Presence sends full registry snapshots. Every mutation resends the whole
// list, which is O(N) frames per event.
type Presence struct{}

// Snapshot renders participants, in registration order, as one
// users-update event.
func Snapshot(all []domain.Participant) UsersUpdate {
	users := make([]PresenceEntry, len(all))
	for i, p := range all {
		users[i] = PresenceEntry{ID: p.ConnID, Participant: p}
	}
	return UsersUpdate{Type: EventUsersUpdate, Users: users}
}

// Publish queues the current snapshot to every registered connection.
func (Presence) Publish(tx *Txn) {
	all := tx.All()
	ids := make([]domain.ConnID, len(all))
	for i, p := range all {
		ids[i] = p.ConnID
	}
	tx.Broadcast(ids, Snapshot(all))
}

// Reply queues the current snapshot to one connection, registered or not.
func (Presence) Reply(tx *Txn, to domain.ConnID) {
	tx.Send(to, Snapshot(tx.All()))
}
