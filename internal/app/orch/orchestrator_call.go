package orch

import (
	"github.com/dkeye/Callboard/internal/app"
	"github.com/dkeye/Callboard/internal/domain"
)

func (o *Orchestrator) CallUser(id, target domain.ConnID) {
	var (
		ring    uint64
		ringing bool
	)
	o.apply(func(tx *app.Txn) {
		ring, ringing = o.Calls.Initiate(tx, id, target)
	})
	if ringing && o.RingTimeout > 0 {
		o.afterFunc(o.RingTimeout, func() {
			o.apply(func(tx *app.Txn) {
				o.Calls.Expire(tx, id, target, ring)
			})
		})
	}
}

func (o *Orchestrator) AcceptCall(id, target domain.ConnID) {
	o.apply(func(tx *app.Txn) {
		o.Calls.Accept(tx, id, target)
	})
}

func (o *Orchestrator) RejectCall(id, target domain.ConnID) {
	o.apply(func(tx *app.Txn) {
		o.Calls.Reject(tx, id, target)
	})
}

func (o *Orchestrator) EndCall(id, target domain.ConnID) {
	o.apply(func(tx *app.Txn) {
		o.Calls.End(tx, id, target)
	})
}
