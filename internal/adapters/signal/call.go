package signal

import "github.com/dkeye/Callboard/internal/domain"

type targetPayload struct {
	TargetID string `json:"targetId" validate:"required,max=64"`
}

// handleCallControl decodes the target of call-user, accept-call,
// reject-call and end-call and hands it to op.
func (ctl *SignalWSController) handleCallControl(
	sess *session,
	conn *WsSignalConn,
	data []byte,
	op func(id, target domain.ConnID),
) {
	var p targetPayload
	if !ctl.decode(sess, conn, data, &p) {
		return
	}
	op(sess.id, domain.ConnID(p.TargetID))
}
