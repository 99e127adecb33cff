package app

import (
	"encoding/json"
	"testing"

	"github.com/dkeye/Callboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresencePublish(t *testing.T) {
	reg := NewRegistry()
	conns := join(t, reg, "b", "a")
	outsider := &fakeConn{}
	require.NoError(t, reg.Attach("x", outsider))
	ring(t, reg, "b", "a")

	reg.Do(func(tx *Txn) { Presence{}.Publish(tx) })

	want := `{"type":"users-update","users":[
		["b",{"_id":"","fullName":"b","profilePic":"","status":"ringing","partnerId":"a","roomId":null}],
		["a",{"_id":"","fullName":"a","profilePic":"","status":"ringing","partnerId":"b","roomId":null}]
	]}`
	for _, id := range []domain.ConnID{"a", "b"} {
		c := conns[id]
		require.NotEmpty(t, c.frames)
		assert.JSONEq(t, want, string(c.frames[len(c.frames)-1]))
	}
	assert.Empty(t, outsider.frames, "unregistered connections get no broadcast")
}

func TestPresenceReplyToUnregistered(t *testing.T) {
	reg := NewRegistry()
	join(t, reg, "a")
	outsider := &fakeConn{}
	require.NoError(t, reg.Attach("x", outsider))

	reg.Do(func(tx *Txn) { Presence{}.Reply(tx, "x") })

	require.Len(t, outsider.frames, 1)
	var raw struct {
		Type  string            `json:"type"`
		Users []json.RawMessage `json:"users"`
	}
	require.NoError(t, json.Unmarshal(outsider.frames[0], &raw))
	assert.Equal(t, EventUsersUpdate, raw.Type)
	assert.Len(t, raw.Users, 1)
}

func TestSnapshotEmpty(t *testing.T) {
	b, err := json.Marshal(Snapshot(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"users-update","users":[]}`, string(b))
}
