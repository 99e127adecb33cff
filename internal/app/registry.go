package app

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dkeye/Callboard/internal/core"
	"github.com/dkeye/Callboard/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

var (
	ErrAlreadyAttached   = errors.New("connection already attached")
	ErrAlreadyRegistered = errors.New("connection already registered")
	ErrNotAttached       = errors.New("connection not attached")
	ErrNotRegistered     = errors.New("connection not registered")
)

type entry struct {
	p   domain.Participant
	seq uint64
}

type roomEntry struct {
	name    domain.RoomName
	created time.Time
	members map[domain.ConnID]struct{}
}

// RoomInfo is a read-only view of one open room.
type RoomInfo struct {
	ID          domain.RoomID   `json:"id"`
	Name        domain.RoomName `json:"name"`
	MemberCount int             `json:"member_count"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Registry owns every participant record, the room membership index and
// the outbound connection of each websocket. All compound changes go
// through Do, which holds one lock for the whole event.
type Registry struct {
	mu      sync.Mutex
	conns   map[domain.ConnID]core.SignalConnection
	entries map[domain.ConnID]*entry
	rooms   map[domain.RoomID]*roomEntry
	seq     uint64
	rings   uint64
	now     func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		conns:   make(map[domain.ConnID]core.SignalConnection),
		entries: make(map[domain.ConnID]*entry),
		rooms:   make(map[domain.RoomID]*roomEntry),
		now:     time.Now,
	}
}

// Attach binds the transport of a fresh connection. The connection can
// receive frames from now on, even before it registers.
func (r *Registry) Attach(id domain.ConnID, conn core.SignalConnection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[id]; ok {
		return ErrAlreadyAttached
	}
	r.conns[id] = conn
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("attached")
	return nil
}

func (r *Registry) Get(id domain.ConnID) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return domain.Participant{}, false
	}
	return e.p, true
}

// All returns a copy of every participant in registration order.
func (r *Registry) All() []domain.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allLocked()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) Rooms() []RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RoomInfo, 0, len(r.rooms))
	for id, room := range r.rooms {
		out = append(out, RoomInfo{
			ID:          id,
			Name:        room.name,
			MemberCount: len(room.members),
			CreatedAt:   room.created,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Kick closes the transport of id. The read loop of that connection then
// ends and reports the disconnect.
func (r *Registry) Kick(id domain.ConnID) bool {
	r.mu.Lock()
	conn, ok := r.conns[id]
	r.mu.Unlock()
	if !ok {
		return false
	}
	conn.Close()
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("kicked")
	return true
}

// Do runs fn with exclusive access to the registry. Frames queued by fn are
// handed to the connections before the lock is released, so every
// connection sees frames in the order the state changed. Do returns the
// connections whose send buffer was full.
func (r *Registry) Do(fn func(tx *Txn)) []domain.ConnID {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx := &Txn{r: r}
	fn(tx)
	return tx.flush()
}

func (r *Registry) allLocked() []domain.Participant {
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := make([]domain.Participant, len(entries))
	for i, e := range entries {
		out[i] = e.p
	}
	return out
}

type outbound struct {
	to []domain.ConnID
	v  any
}

// Txn is the view of the registry handed to one event handler. It must not
// escape the Do callback.
type Txn struct {
	r     *Registry
	out   []outbound
	dirty bool
}

func (tx *Txn) Get(id domain.ConnID) (domain.Participant, bool) {
	e, ok := tx.r.entries[id]
	if !ok {
		return domain.Participant{}, false
	}
	return e.p, true
}

func (tx *Txn) Registered(id domain.ConnID) bool {
	_, ok := tx.r.entries[id]
	return ok
}

func (tx *Txn) Attached(id domain.ConnID) bool {
	_, ok := tx.r.conns[id]
	return ok
}

// Register creates an idle participant for an attached connection.
func (tx *Txn) Register(id domain.ConnID, identity domain.Identity) (domain.Participant, error) {
	if _, ok := tx.r.entries[id]; ok {
		return domain.Participant{}, ErrAlreadyRegistered
	}
	if _, ok := tx.r.conns[id]; !ok {
		return domain.Participant{}, ErrNotAttached
	}
	tx.r.seq++
	p := domain.NewParticipant(id, identity)
	tx.r.entries[id] = &entry{p: p, seq: tx.r.seq}
	tx.dirty = true
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("name", identity.FullName).Msg("registered")
	return p, nil
}

// Update stores p and keeps the room index in step with p.RoomID.
func (tx *Txn) Update(p domain.Participant) error {
	e, ok := tx.r.entries[p.ConnID]
	if !ok {
		return ErrNotRegistered
	}
	if old := e.p.RoomID; old != p.RoomID {
		if old != "" {
			tx.removeMember(old, p.ConnID)
		}
		if p.RoomID != "" {
			tx.addMember(p.RoomID, p.ConnID)
		}
	}
	e.p = p
	tx.dirty = true
	return nil
}

// Remove drops the participant and detaches its connection.
func (tx *Txn) Remove(id domain.ConnID) {
	if e, ok := tx.r.entries[id]; ok {
		if e.p.RoomID != "" {
			tx.removeMember(e.p.RoomID, id)
		}
		delete(tx.r.entries, id)
		tx.dirty = true
	}
	delete(tx.r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("removed")
}

func (tx *Txn) All() []domain.Participant { return tx.r.allLocked() }

// OpenRoom records a new room. It reports false if the id is taken.
func (tx *Txn) OpenRoom(id domain.RoomID, name domain.RoomName) bool {
	if _, ok := tx.r.rooms[id]; ok {
		return false
	}
	tx.r.rooms[id] = &roomEntry{
		name:    name,
		created: tx.r.now(),
		members: make(map[domain.ConnID]struct{}),
	}
	log.Info().Str("module", "app.registry").Str("room_id", string(id)).Str("room_name", string(name)).Msg("room opened")
	return true
}

func (tx *Txn) RoomExists(id domain.RoomID) bool {
	_, ok := tx.r.rooms[id]
	return ok
}

func (tx *Txn) RoomName(id domain.RoomID) domain.RoomName {
	if room, ok := tx.r.rooms[id]; ok {
		return room.name
	}
	return ""
}

// RoomMembers returns the members of id sorted by connection id.
func (tx *Txn) RoomMembers(id domain.RoomID) []domain.ConnID {
	room, ok := tx.r.rooms[id]
	if !ok {
		return nil
	}
	out := make([]domain.ConnID, 0, len(room.members))
	for m := range room.members {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}

func (tx *Txn) NextRing() uint64 {
	tx.r.rings++
	return tx.r.rings
}

func (tx *Txn) Now() time.Time { return tx.r.now() }

func (tx *Txn) Send(to domain.ConnID, v any) {
	tx.out = append(tx.out, outbound{to: []domain.ConnID{to}, v: v})
}

func (tx *Txn) Broadcast(to []domain.ConnID, v any) {
	if len(to) == 0 {
		return
	}
	tx.out = append(tx.out, outbound{to: to, v: v})
}

// Dirty reports whether a participant was created, changed or removed.
func (tx *Txn) Dirty() bool { return tx.dirty }

func (tx *Txn) addMember(id domain.RoomID, member domain.ConnID) {
	room, ok := tx.r.rooms[id]
	if !ok {
		tx.OpenRoom(id, "")
		room = tx.r.rooms[id]
	}
	room.members[member] = struct{}{}
}

func (tx *Txn) removeMember(id domain.RoomID, member domain.ConnID) {
	room, ok := tx.r.rooms[id]
	if !ok {
		return
	}
	delete(room.members, member)
	if len(room.members) == 0 {
		delete(tx.r.rooms, id)
		log.Info().Str("module", "app.registry").Str("room_id", string(id)).Msg("room closed")
	}
}

func (tx *Txn) flush() []domain.ConnID {
	var slow []domain.ConnID
	for _, o := range tx.out {
		frame, err := json.Marshal(o.v)
		if err != nil {
			log.Error().Err(err).Str("module", "app.registry").Msg("marshal outbound")
			continue
		}
		for _, to := range o.to {
			conn, ok := tx.r.conns[to]
			if !ok {
				continue
			}
			err := conn.TrySend(frame)
			if errors.Is(err, core.ErrBackpressure) && !slices.Contains(slow, to) {
				slow = append(slow, to)
			}
		}
	}
	tx.out = nil
	return slow
}
