package signal

import (
	"github.com/dkeye/Callboard/internal/domain"
	"github.com/rs/zerolog/log"
)

type joinPayload struct {
	User struct {
		ID         string `json:"_id" validate:"max=64"`
		FullName   string `json:"fullName" validate:"required"`
		ProfilePic string `json:"profilePic" validate:"max=2048"`
	} `json:"user" validate:"required"`
}

// handleJoin registers the connection with the identity the auth service
// gave the browser.
func (ctl *SignalWSController) handleJoin(
	sess *session,
	conn *WsSignalConn,
	data []byte,
) {
	var p joinPayload
	if !ctl.decode(sess, conn, data, &p) {
		return
	}
	identity, err := domain.NewIdentity(p.User.ID, p.User.FullName, p.User.ProfilePic)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(sess.id)).Msg("bad identity")
		ctl.sendError(conn, "invalid_name")
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(sess.id)).Str("name", identity.FullName).Msg("join")
	ctl.Orch.Join(sess.id, identity)
}
