package signal

import "context"

func (ctl *SignalWSController) handlePing(ctx context.Context, conn *WsSignalConn) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.sendJSON(ctx, conn, resp)
}
