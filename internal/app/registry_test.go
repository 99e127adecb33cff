package app

import (
	"testing"
	"time"

	"github.com/dkeye/Callboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAttachAndRegister(t *testing.T) {
	reg := NewRegistry()
	c := &fakeConn{}

	require.NoError(t, reg.Attach("a", c))
	assert.ErrorIs(t, reg.Attach("a", c), ErrAlreadyAttached)

	reg.Do(func(tx *Txn) {
		_, err := tx.Register("ghost", domain.Identity{FullName: "Ghost"})
		assert.ErrorIs(t, err, ErrNotAttached)

		p, err := tx.Register("a", domain.Identity{FullName: "Ada"})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusIdle, p.Status)
		assert.True(t, tx.Dirty())

		_, err = tx.Register("a", domain.Identity{FullName: "Ada"})
		assert.ErrorIs(t, err, ErrAlreadyRegistered)
	})
	assert.Equal(t, 1, reg.Len())

	reg.Do(func(tx *Txn) {
		err := tx.Update(domain.NewParticipant("ghost", domain.Identity{}))
		assert.ErrorIs(t, err, ErrNotRegistered)
		assert.False(t, tx.Dirty())
	})
}

func TestRegistryAllKeepsRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	join(t, reg, "c", "a", "b")

	var ids []domain.ConnID
	for _, p := range reg.All() {
		ids = append(ids, p.ConnID)
	}
	assert.Equal(t, []domain.ConnID{"c", "a", "b"}, ids)
}

func TestRegistryRoomIndex(t *testing.T) {
	reg := NewRegistry()
	reg.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	join(t, reg, "a", "b")

	reg.Do(func(tx *Txn) {
		require.True(t, tx.OpenRoom("room-1", "Standup"))
		require.False(t, tx.OpenRoom("room-1", "Again"))
		for _, id := range []domain.ConnID{"b", "a"} {
			p, _ := tx.Get(id)
			p.Status, p.RoomID = domain.StatusOnCall, "room-1"
			require.NoError(t, tx.Update(p))
		}
		assert.Equal(t, []domain.ConnID{"a", "b"}, tx.RoomMembers("room-1"))
	})

	rooms := reg.Rooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, RoomInfo{
		ID:          "room-1",
		Name:        "Standup",
		MemberCount: 2,
		CreatedAt:   time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}, rooms[0])

	reg.Do(func(tx *Txn) {
		for _, id := range []domain.ConnID{"a", "b"} {
			p, _ := tx.Get(id)
			p.Reset()
			require.NoError(t, tx.Update(p))
		}
		assert.False(t, tx.RoomExists("room-1"))
	})
	assert.Empty(t, reg.Rooms())
}

func TestRegistryFlushOrderAndBackpressure(t *testing.T) {
	reg := NewRegistry()
	conns := join(t, reg, "a", "b")
	conns["b"].full = true

	slow := reg.Do(func(tx *Txn) {
		tx.Send("a", Pong{Type: EventPong})
		tx.Broadcast([]domain.ConnID{"a", "b", "missing"}, Error{Type: EventError, Error: "x"})
		tx.Send("b", Pong{Type: EventPong})
	})

	assert.Equal(t, []string{EventPong, EventError}, conns["a"].types(t))
	assert.Equal(t, []domain.ConnID{"b"}, slow)
}

func TestRegistryRemoveDetaches(t *testing.T) {
	reg := NewRegistry()
	conns := join(t, reg, "a")

	reg.Do(func(tx *Txn) {
		tx.Remove("a")
		assert.False(t, tx.Registered("a"))
		assert.False(t, tx.Attached("a"))
		tx.Send("a", Pong{Type: EventPong})
	})
	assert.Empty(t, conns["a"].frames)
	assert.Equal(t, 0, reg.Len())
	assert.False(t, reg.Kick("a"))
}

func TestRegistryKickClosesConnection(t *testing.T) {
	reg := NewRegistry()
	conns := join(t, reg, "a")

	assert.True(t, reg.Kick("a"))
	assert.True(t, conns["a"].closed)
}

func TestNextRingIsUnique(t *testing.T) {
	reg := NewRegistry()
	var first, second uint64
	reg.Do(func(tx *Txn) {
		first = tx.NextRing()
		second = tx.NextRing()
	})
	assert.NotZero(t, first)
	assert.NotEqual(t, first, second)
}
