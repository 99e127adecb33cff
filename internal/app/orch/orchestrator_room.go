package orch

import (
	"github.com/dkeye/Callboard/internal/app"
	"github.com/dkeye/Callboard/internal/domain"
)

func (o *Orchestrator) CreateRoom(id domain.ConnID, name domain.RoomName) (roomID domain.RoomID, ok bool) {
	o.apply(func(tx *app.Txn) {
		roomID, ok = o.Rooms.Create(tx, id, name)
	})
	return roomID, ok
}

func (o *Orchestrator) JoinRoom(id domain.ConnID, roomID domain.RoomID) {
	o.apply(func(tx *app.Txn) {
		o.Rooms.Join(tx, id, roomID)
	})
}

func (o *Orchestrator) LeaveRoom(id domain.ConnID, roomID domain.RoomID) {
	o.apply(func(tx *app.Txn) {
		o.Rooms.Leave(tx, id, roomID)
	})
}
