package app

import (
	"testing"

	"github.com/dkeye/Callboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedIDs hands out ids in order.
func fixedIDs(ids ...domain.RoomID) func() domain.RoomID {
	return func() domain.RoomID {
		id := ids[0]
		if len(ids) > 1 {
			ids = ids[1:]
		}
		return id
	}
}

func TestRoomCreate(t *testing.T) {
	reg := NewRegistry()
	conns := join(t, reg, "a")
	rooms := &Rooms{NewID: fixedIDs("room-1")}

	var (
		id domain.RoomID
		ok bool
	)
	reg.Do(func(tx *Txn) { id, ok = rooms.Create(tx, "a", "Standup") })

	require.True(t, ok)
	assert.Equal(t, domain.RoomID("room-1"), id)
	p := get(t, reg, "a")
	assert.Equal(t, domain.StatusOnCall, p.Status)
	assert.Equal(t, id, p.RoomID)
	assert.Equal(t,
		map[string]any{"type": EventRoomCreated, "roomId": "room-1", "roomName": "Standup"},
		conns["a"].last(t, EventRoomCreated))

	info := reg.Rooms()
	require.Len(t, info, 1)
	assert.Equal(t, 1, info[0].MemberCount)
}

func TestRoomCreateSkipsTakenID(t *testing.T) {
	reg := NewRegistry()
	join(t, reg, "a", "b")
	rooms := &Rooms{NewID: fixedIDs("room-1", "room-1", "room-2")}

	var second domain.RoomID
	reg.Do(func(tx *Txn) {
		_, ok := rooms.Create(tx, "a", "one")
		require.True(t, ok)
		second, ok = rooms.Create(tx, "b", "two")
		require.True(t, ok)
	})
	assert.Equal(t, domain.RoomID("room-2"), second)
}

func TestRoomCreateGivesUp(t *testing.T) {
	reg := NewRegistry()
	join(t, reg, "a", "b")
	rooms := &Rooms{NewID: fixedIDs("room-1")}

	reg.Do(func(tx *Txn) {
		_, ok := rooms.Create(tx, "a", "one")
		require.True(t, ok)
		_, ok = rooms.Create(tx, "b", "two")
		assert.False(t, ok)
	})
	requireIdle(t, reg, "b")
}

func TestRoomCreateDuringCallIsIgnored(t *testing.T) {
	reg := NewRegistry()
	conns := join(t, reg, "a", "b")
	ring(t, reg, "a", "b")

	var ok bool
	reg.Do(func(tx *Txn) { _, ok = NewRooms().Create(tx, "a", "x") })

	assert.False(t, ok)
	assert.Nil(t, conns["a"].last(t, EventRoomCreated))
	requirePaired(t, reg, "a", "b", domain.StatusRinging)
}

func TestRoomJoinMesh(t *testing.T) {
	reg := NewRegistry()
	conns := join(t, reg, "a", "b", "c")
	rooms := &Rooms{NewID: fixedIDs("room-1")}

	reg.Do(func(tx *Txn) { rooms.Create(tx, "b", "Mesh") })
	reg.Do(func(tx *Txn) { rooms.Join(tx, "a", "room-1") })
	reg.Do(func(tx *Txn) { rooms.Join(tx, "c", "room-1") })

	// a joined with b present: a < b so a initiates to b.
	assert.Equal(t, map[string]any{
		"type":         EventRoomJoined,
		"roomId":       "room-1",
		"roomName":     "Mesh",
		"participants": []any{"b"},
		"initiateTo":   []any{"b"},
	}, conns["a"].last(t, EventRoomJoined))

	// c joined last and is the largest id: it initiates to nobody.
	assert.Equal(t, map[string]any{
		"type":         EventRoomJoined,
		"roomId":       "room-1",
		"roomName":     "Mesh",
		"participants": []any{"a", "b"},
		"initiateTo":   []any{},
	}, conns["c"].last(t, EventRoomJoined))

	// Existing members learn about c and are told to initiate.
	for _, m := range []domain.ConnID{"a", "b"} {
		assert.Equal(t, map[string]any{
			"type":     EventUserJoinedRoom,
			"from":     "c",
			"name":     "c",
			"roomId":   "room-1",
			"initiate": true,
		}, conns[m].last(t, EventUserJoinedRoom))
	}

	// b learned about a with initiate=false, since a is smaller.
	var fromA map[string]any
	for _, ev := range conns["b"].events(t) {
		if ev["type"] == EventUserJoinedRoom && ev["from"] == "a" {
			fromA = ev
		}
	}
	require.NotNil(t, fromA)
	assert.Equal(t, false, fromA["initiate"])

	for _, id := range []domain.ConnID{"a", "b", "c"} {
		p := get(t, reg, id)
		assert.Equal(t, domain.StatusOnCall, p.Status)
		assert.Equal(t, domain.RoomID("room-1"), p.RoomID)
		assert.Empty(t, p.PartnerID)
	}
}

func TestRoomJoinUnknownRoomOpensIt(t *testing.T) {
	reg := NewRegistry()
	conns := join(t, reg, "a")

	reg.Do(func(tx *Txn) { NewRooms().Join(tx, "a", "room-shared") })

	assert.Equal(t, map[string]any{
		"type":         EventRoomJoined,
		"roomId":       "room-shared",
		"participants": []any{},
		"initiateTo":   []any{},
	}, conns["a"].last(t, EventRoomJoined))
	require.Len(t, reg.Rooms(), 1)
}

func TestRoomJoinSameRoomResends(t *testing.T) {
	reg := NewRegistry()
	conns := join(t, reg, "a", "b")
	rooms := NewRooms()
	reg.Do(func(tx *Txn) {
		rooms.Join(tx, "a", "room-1")
		rooms.Join(tx, "b", "room-1")
	})
	conns["a"].reset()

	reg.Do(func(tx *Txn) { rooms.Join(tx, "b", "room-1") })

	assert.Empty(t, conns["a"].types(t))
	assert.Equal(t, []any{"a"}, conns["b"].last(t, EventRoomJoined)["participants"])
}

func TestRoomJoinAnotherRoomLeavesFirst(t *testing.T) {
	reg := NewRegistry()
	conns := join(t, reg, "a", "b")
	rooms := NewRooms()
	reg.Do(func(tx *Txn) {
		rooms.Join(tx, "a", "room-1")
		rooms.Join(tx, "b", "room-1")
	})

	reg.Do(func(tx *Txn) { rooms.Join(tx, "b", "room-2") })

	assert.Equal(t,
		map[string]any{"type": EventUserLeftRoom, "from": "b", "roomId": "room-1"},
		conns["a"].last(t, EventUserLeftRoom))
	assert.Equal(t, domain.RoomID("room-2"), get(t, reg, "b").RoomID)
	assert.Len(t, reg.Rooms(), 2)
}

func TestRoomLeave(t *testing.T) {
	reg := NewRegistry()
	conns := join(t, reg, "a", "b")
	rooms := NewRooms()
	reg.Do(func(tx *Txn) {
		rooms.Join(tx, "a", "room-1")
		rooms.Join(tx, "b", "room-1")
	})

	reg.Do(func(tx *Txn) { rooms.Leave(tx, "a", "room-other") })
	assert.Equal(t, domain.RoomID("room-1"), get(t, reg, "a").RoomID)

	reg.Do(func(tx *Txn) { rooms.Leave(tx, "a", "room-1") })
	requireIdle(t, reg, "a")
	assert.Equal(t,
		map[string]any{"type": EventUserLeftRoom, "from": "a", "roomId": "room-1"},
		conns["b"].last(t, EventUserLeftRoom))

	reg.Do(func(tx *Txn) { rooms.Leave(tx, "b", "room-1") })
	requireIdle(t, reg, "b")
	assert.Empty(t, reg.Rooms())
}
