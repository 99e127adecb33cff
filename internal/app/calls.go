package app

import (
	"github.com/dkeye/Callboard/internal/domain"
	"github.com/rs/zerolog/log"
)

// Calls is the one-to-one call state machine:
// idle -> ringing -> on-call -> idle. Both sides of a pair always point at
// each other when a method returns.
type Calls struct{}

// Initiate rings target on behalf of caller. A missing or busy target gets
// the caller a busy rejection and leaves everything untouched. It returns
// the ring id when the pair started ringing.
func (Calls) Initiate(tx *Txn, callerID, targetID domain.ConnID) (uint64, bool) {
	caller, ok := tx.Get(callerID)
	if !ok {
		log.Warn().Str("module", "app.calls").Str("conn", string(callerID)).Msg("call-user from unregistered connection")
		return 0, false
	}
	if !caller.IsIdle() {
		log.Warn().Str("module", "app.calls").Str("conn", string(callerID)).Str("status", string(caller.Status)).Msg("call-user while not idle")
		return 0, false
	}
	target, ok := tx.Get(targetID)
	if !ok || targetID == callerID || !target.IsIdle() {
		log.Info().Str("module", "app.calls").Str("conn", string(callerID)).Str("target", string(targetID)).Msg("target busy")
		tx.Send(callerID, CallRejected{Type: EventCallRejected, Reason: ReasonBusy, From: targetID})
		return 0, false
	}

	ring := tx.NextRing()
	caller.Status, caller.PartnerID, caller.RingID, caller.Outgoing = domain.StatusRinging, targetID, ring, true
	target.Status, target.PartnerID, target.RingID = domain.StatusRinging, callerID, ring
	_ = tx.Update(caller)
	_ = tx.Update(target)

	tx.Send(callerID, CallInitiated{Type: EventCallInitiated, TargetID: targetID})
	tx.Send(targetID, IncomingCall{
		Type:     EventIncomingCall,
		From:     callerID,
		FromName: caller.Identity.DisplayName(),
		FromPic:  caller.Identity.ProfilePic,
	})
	log.Info().Str("module", "app.calls").Str("conn", string(callerID)).Str("target", string(targetID)).Uint64("ring", ring).Msg("ringing")
	return ring, true
}

// Accept moves a ringing pair on-call. Only the called side may accept.
func (Calls) Accept(tx *Txn, actorID, callerID domain.ConnID) {
	actor, ok := tx.Get(actorID)
	if !ok {
		log.Warn().Str("module", "app.calls").Str("conn", string(actorID)).Msg("accept-call from unregistered connection")
		return
	}
	caller, ok := tx.Get(callerID)
	if !ok {
		// The caller vanished between ring and accept. Never leave the
		// callee answering a call nobody is on.
		if actor.PartnerID == callerID {
			actor.Reset()
			_ = tx.Update(actor)
			tx.Send(actorID, CallEnded{Type: EventCallEnded, From: callerID})
		}
		log.Warn().Str("module", "app.calls").Str("conn", string(actorID)).Str("target", string(callerID)).Msg("accept-call for gone caller")
		return
	}
	if actor.Status != domain.StatusRinging || caller.Status != domain.StatusRinging ||
		actor.PartnerID != callerID || caller.PartnerID != actorID || actor.Outgoing {
		log.Warn().Str("module", "app.calls").Str("conn", string(actorID)).Str("target", string(callerID)).Msg("accept-call without matching ring")
		return
	}

	actor.Status, actor.RingID = domain.StatusOnCall, 0
	caller.Status, caller.RingID = domain.StatusOnCall, 0
	_ = tx.Update(actor)
	_ = tx.Update(caller)
	tx.Send(callerID, CallAccepted{Type: EventCallAccepted, From: actorID})
	log.Info().Str("module", "app.calls").Str("conn", string(actorID)).Str("target", string(callerID)).Msg("on call")
}

// Reject clears the actor's pairing, ringing or not, and tells the former
// partner it was declined.
func (c Calls) Reject(tx *Txn, actorID, targetID domain.ConnID) {
	c.hangUp(tx, actorID, targetID, "reject-call", CallRejected{Type: EventCallRejected, Reason: ReasonDeclined, From: actorID})
}

// End clears the actor's pairing and tells the former partner the call ended.
func (c Calls) End(tx *Txn, actorID, targetID domain.ConnID) {
	c.hangUp(tx, actorID, targetID, "end-call", CallEnded{Type: EventCallEnded, From: actorID})
}

// Expire resets a pair still ringing under ring. Later rings between the
// same pair carry another id and are left alone.
func (c Calls) Expire(tx *Txn, callerID, targetID domain.ConnID, ring uint64) {
	caller, ok := tx.Get(callerID)
	if !ok {
		return
	}
	target, ok := tx.Get(targetID)
	if !ok {
		return
	}
	if caller.Status != domain.StatusRinging || caller.RingID != ring || caller.PartnerID != targetID ||
		target.Status != domain.StatusRinging || target.RingID != ring || target.PartnerID != callerID {
		return
	}
	caller.Reset()
	target.Reset()
	_ = tx.Update(caller)
	_ = tx.Update(target)
	tx.Send(callerID, CallRejected{Type: EventCallRejected, Reason: ReasonNoAnswer, From: targetID})
	tx.Send(targetID, CallEnded{Type: EventCallEnded, From: callerID})
	log.Info().Str("module", "app.calls").Str("conn", string(callerID)).Str("target", string(targetID)).Uint64("ring", ring).Msg("ring expired")
}

// abandon releases the partner of a participant that is going away.
func (c Calls) abandon(tx *Txn, p domain.Participant) {
	if !p.InCall() {
		return
	}
	c.release(tx, p.PartnerID, p.ConnID, CallEnded{Type: EventCallEnded, From: p.ConnID})
}

func (c Calls) hangUp(tx *Txn, actorID, targetID domain.ConnID, what string, notify any) {
	actor, ok := tx.Get(actorID)
	if !ok {
		log.Warn().Str("module", "app.calls").Str("conn", string(actorID)).Str("event", what).Msg("from unregistered connection")
		return
	}
	if !actor.InCall() {
		log.Warn().Str("module", "app.calls").Str("conn", string(actorID)).Str("event", what).Msg("no call to hang up")
		return
	}
	if targetID != actor.PartnerID {
		log.Warn().Str("module", "app.calls").Str("conn", string(actorID)).Str("event", what).
			Str("target", string(targetID)).Str("partner", string(actor.PartnerID)).Msg("target is not the partner, hanging up the partner")
	}
	partnerID := actor.PartnerID
	actor.Reset()
	_ = tx.Update(actor)
	c.release(tx, partnerID, actorID, notify)
	log.Info().Str("module", "app.calls").Str("conn", string(actorID)).Str("partner", string(partnerID)).Str("event", what).Msg("call cleared")
}

// release resets partnerID if it is still paired with fromID and sends it
// notify.
func (Calls) release(tx *Txn, partnerID, fromID domain.ConnID, notify any) {
	partner, ok := tx.Get(partnerID)
	if !ok || partner.PartnerID != fromID {
		return
	}
	partner.Reset()
	_ = tx.Update(partner)
	tx.Send(partnerID, notify)
}
