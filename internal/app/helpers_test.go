package app

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/dkeye/Callboard/internal/core"
	"github.com/dkeye/Callboard/internal/domain"
	"github.com/stretchr/testify/require"
)

// fakeConn records frames instead of writing them to a socket.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
	closed bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return core.ErrConnClosed
	}
	if f.full {
		return core.ErrBackpressure
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.frames))
	for _, fr := range f.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(fr, &m))
		out = append(out, m)
	}
	return out
}

func (f *fakeConn) types(t *testing.T) []string {
	t.Helper()
	var out []string
	for _, ev := range f.events(t) {
		out = append(out, ev["type"].(string))
	}
	return out
}

// last returns the most recent event of type typ, or nil.
func (f *fakeConn) last(t *testing.T, typ string) map[string]any {
	t.Helper()
	evs := f.events(t)
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i]["type"] == typ {
			return evs[i]
		}
	}
	return nil
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = nil
}

// join attaches and registers each id with a display name equal to the id.
func join(t *testing.T, reg *Registry, ids ...domain.ConnID) map[domain.ConnID]*fakeConn {
	t.Helper()
	conns := make(map[domain.ConnID]*fakeConn, len(ids))
	for _, id := range ids {
		c := &fakeConn{}
		require.NoError(t, reg.Attach(id, c))
		reg.Do(func(tx *Txn) {
			_, err := tx.Register(id, domain.Identity{FullName: string(id)})
			require.NoError(t, err)
		})
		conns[id] = c
	}
	return conns
}

func get(t *testing.T, reg *Registry, id domain.ConnID) domain.Participant {
	t.Helper()
	p, ok := reg.Get(id)
	require.True(t, ok, "participant %s not registered", id)
	return p
}

// requirePaired checks both sides of a one-to-one pair point at each other.
func requirePaired(t *testing.T, reg *Registry, a, b domain.ConnID, status domain.Status) {
	t.Helper()
	pa, pb := get(t, reg, a), get(t, reg, b)
	require.Equal(t, status, pa.Status)
	require.Equal(t, status, pb.Status)
	require.Equal(t, b, pa.PartnerID)
	require.Equal(t, a, pb.PartnerID)
}

func requireIdle(t *testing.T, reg *Registry, ids ...domain.ConnID) {
	t.Helper()
	for _, id := range ids {
		p := get(t, reg, id)
		require.True(t, p.IsIdle(), "%s is %s partner=%q room=%q", id, p.Status, p.PartnerID, p.RoomID)
	}
}
