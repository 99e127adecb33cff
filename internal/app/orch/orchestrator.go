package orch

import (
	"time"

	"github.com/dkeye/Callboard/internal/app"
	"github.com/dkeye/Callboard/internal/core"
	"github.com/dkeye/Callboard/internal/domain"
	"github.com/rs/zerolog/log"
)

// Orchestrator dispatches decoded events to the coordinator components.
// Each event runs inside one registry transaction; a transaction that
// changed any participant publishes presence before it commits.
type Orchestrator struct {
	Registry   *app.Registry
	Presence   app.Presence
	Calls      app.Calls
	Rooms      *app.Rooms
	Relay      app.Relay
	Reconciler app.Reconciler
	Policy     app.Policy

	// RingTimeout resets calls nobody answered. Zero leaves rings open
	// until one side cancels.
	RingTimeout time.Duration
	afterFunc   func(time.Duration, func())
}

func New(reg *app.Registry, policy app.Policy, ringTimeout time.Duration) *Orchestrator {
	rooms := app.NewRooms()
	return &Orchestrator{
		Registry:    reg,
		Rooms:       rooms,
		Reconciler:  app.Reconciler{Rooms: rooms},
		Policy:      policy,
		RingTimeout: ringTimeout,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

func (o *Orchestrator) apply(fn func(tx *app.Txn)) {
	slow := o.Registry.Do(func(tx *app.Txn) {
		fn(tx)
		if tx.Dirty() {
			o.Presence.Publish(tx)
		}
	})
	for _, id := range slow {
		o.onBackPressure(id)
	}
}

func (o *Orchestrator) onBackPressure(id domain.ConnID) {
	if o.Policy == nil {
		return
	}
	switch o.Policy.OnBackPressure(id) {
	case app.KickMember:
		log.Warn().Str("module", "orch").Str("conn", string(id)).Msg("send buffer full, kicking")
		o.Registry.Kick(id)
	case app.NoAction:
	}
}

// Connect attaches a new transport and tells the client its id.
func (o *Orchestrator) Connect(id domain.ConnID, conn core.SignalConnection) error {
	if err := o.Registry.Attach(id, conn); err != nil {
		return err
	}
	o.apply(func(tx *app.Txn) {
		tx.Send(id, app.Connected{Type: app.EventConnected, ID: id})
	})
	return nil
}

// Join registers the connection under identity. A second join refreshes
// the identity and keeps call and room state.
func (o *Orchestrator) Join(id domain.ConnID, identity domain.Identity) {
	o.apply(func(tx *app.Txn) {
		if p, ok := tx.Get(id); ok {
			p.Identity = identity
			_ = tx.Update(p)
			log.Info().Str("module", "orch").Str("conn", string(id)).Str("name", identity.FullName).Msg("identity refreshed")
			return
		}
		if _, err := tx.Register(id, identity); err != nil {
			log.Warn().Err(err).Str("module", "orch").Str("conn", string(id)).Msg("join")
		}
	})
}

func (o *Orchestrator) GetUsers(id domain.ConnID) {
	o.apply(func(tx *app.Txn) {
		o.Presence.Reply(tx, id)
	})
}

func (o *Orchestrator) WhoAmI(id domain.ConnID) {
	o.apply(func(tx *app.Txn) {
		resp := app.WhoAmI{Type: app.EventWhoAmI, ID: id}
		if p, ok := tx.Get(id); ok {
			resp.Participant = &p
		}
		tx.Send(id, resp)
	})
}

// Disconnect unwinds whatever the connection held and forgets it.
func (o *Orchestrator) Disconnect(id domain.ConnID) {
	o.apply(func(tx *app.Txn) {
		o.Reconciler.Disconnect(tx, id)
	})
	log.Info().Str("module", "orch").Str("conn", string(id)).Msg("disconnected")
}
