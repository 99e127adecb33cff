package signal

import "github.com/dkeye/Callboard/internal/app"

func (ctl *SignalWSController) handlePing(
	conn *WsSignalConn,
) {
	ctl.sendJSON(conn, app.Pong{Type: app.EventPong})
}
