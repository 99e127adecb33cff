package app

import (
	"github.com/dkeye/Callboard/internal/domain"
	"github.com/rs/zerolog/log"
)

const maxRoomIDAttempts = 8

// Rooms coordinates mesh rooms: membership and peer discovery. Media links
// are negotiated by the members themselves, pair by pair.
type Rooms struct {
	NewID func() domain.RoomID
}

func NewRooms() *Rooms {
	return &Rooms{NewID: domain.NewRoomID}
}

// Create opens a room with actor as its only member.
func (r *Rooms) Create(tx *Txn, actorID domain.ConnID, name domain.RoomName) (domain.RoomID, bool) {
	actor, ok := tx.Get(actorID)
	if !ok {
		log.Warn().Str("module", "app.rooms").Str("conn", string(actorID)).Msg("create-room from unregistered connection")
		return "", false
	}
	if actor.InCall() {
		log.Warn().Str("module", "app.rooms").Str("conn", string(actorID)).Msg("create-room during a call")
		return "", false
	}

	id := r.NewID()
	for i := 1; tx.RoomExists(id); i++ {
		if i == maxRoomIDAttempts {
			log.Error().Str("module", "app.rooms").Str("conn", string(actorID)).Msg("no free room id")
			return "", false
		}
		id = r.NewID()
	}

	if actor.InRoom() {
		r.leave(tx, &actor)
	}
	tx.OpenRoom(id, name)
	actor.Status, actor.RoomID = domain.StatusOnCall, id
	_ = tx.Update(actor)

	tx.Send(actorID, RoomCreated{Type: EventRoomCreated, RoomID: id, RoomName: name})
	log.Info().Str("module", "app.rooms").Str("conn", string(actorID)).Str("room_id", string(id)).Str("room_name", string(name)).Msg("room created")
	return id, true
}

// Join adds actor to roomID. The joiner learns the existing members, each
// existing member learns about the joiner.
func (r *Rooms) Join(tx *Txn, actorID domain.ConnID, roomID domain.RoomID) {
	actor, ok := tx.Get(actorID)
	if !ok {
		log.Warn().Str("module", "app.rooms").Str("conn", string(actorID)).Msg("join-room from unregistered connection")
		return
	}
	if actor.InCall() {
		log.Warn().Str("module", "app.rooms").Str("conn", string(actorID)).Msg("join-room during a call")
		return
	}
	if actor.RoomID == roomID {
		tx.Send(actorID, joined(tx, actorID, roomID, others(tx.RoomMembers(roomID), actorID)))
		return
	}
	if actor.InRoom() {
		r.leave(tx, &actor)
	}

	existing := tx.RoomMembers(roomID)
	actor.Status, actor.RoomID = domain.StatusOnCall, roomID
	_ = tx.Update(actor)

	tx.Send(actorID, joined(tx, actorID, roomID, existing))
	for _, m := range existing {
		tx.Send(m, UserJoinedRoom{
			Type:     EventUserJoinedRoom,
			From:     actorID,
			Name:     actor.Identity.FullName,
			RoomID:   roomID,
			Initiate: domain.ShouldInitiate(m, actorID),
		})
	}
	log.Info().Str("module", "app.rooms").Str("conn", string(actorID)).Str("room_id", string(roomID)).Int("members", len(existing)+1).Msg("joined room")
}

// Leave takes actor out of roomID. A roomID that is not the actor's room is
// ignored.
func (r *Rooms) Leave(tx *Txn, actorID domain.ConnID, roomID domain.RoomID) {
	actor, ok := tx.Get(actorID)
	if !ok {
		log.Warn().Str("module", "app.rooms").Str("conn", string(actorID)).Msg("leave-room from unregistered connection")
		return
	}
	if !actor.InRoom() || actor.RoomID != roomID {
		log.Warn().Str("module", "app.rooms").Str("conn", string(actorID)).Str("room_id", string(roomID)).Msg("leave-room for a room not joined")
		return
	}
	r.leave(tx, &actor)
}

// leave resets p and tells the remaining members.
func (r *Rooms) leave(tx *Txn, p *domain.Participant) {
	roomID := p.RoomID
	p.Reset()
	_ = tx.Update(*p)
	remaining := tx.RoomMembers(roomID)
	for _, m := range remaining {
		tx.Send(m, UserLeftRoom{Type: EventUserLeftRoom, From: p.ConnID, RoomID: roomID})
	}
	log.Info().Str("module", "app.rooms").Str("conn", string(p.ConnID)).Str("room_id", string(roomID)).Int("remaining", len(remaining)).Msg("left room")
}

func joined(tx *Txn, self domain.ConnID, roomID domain.RoomID, peers []domain.ConnID) RoomJoined {
	initiate := make([]domain.ConnID, 0, len(peers))
	for _, peer := range peers {
		if domain.ShouldInitiate(self, peer) {
			initiate = append(initiate, peer)
		}
	}
	if peers == nil {
		peers = []domain.ConnID{}
	}
	return RoomJoined{
		Type:         EventRoomJoined,
		RoomID:       roomID,
		RoomName:     tx.RoomName(roomID),
		Participants: peers,
		InitiateTo:   initiate,
	}
}

func others(members []domain.ConnID, self domain.ConnID) []domain.ConnID {
	out := make([]domain.ConnID, 0, len(members))
	for _, m := range members {
		if m != self {
			out = append(out, m)
		}
	}
	return out
}
