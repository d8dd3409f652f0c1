package signal

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Classroom/internal/core"
)

func (ctl *SignalWSController) handleWebRTCInit(ctx context.Context, st *core.SessionState, conn *WsSignalConn) {
	caps, err := ctl.Orch.InitMedia(ctx, st)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(st.ID)).Msg("webrtc init")
		ctl.sendError(ctx, conn, ActionWebRTCInit, err)
		return
	}
	ctl.sendJSON(ctx, conn, caps)
}

// handleMediaAction validates the payload shape of a media action and hands it
// to the orchestrator, answering with an error frame until the engine serves it.
func handleMediaAction[P any](ctx context.Context, ctl *SignalWSController, st *core.SessionState, conn *WsSignalConn, env Envelope) {
	var p P
	if err := decodePayload(env.Payload, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("type", env.Type).Msg("bad media payload")
		ctl.sendError(ctx, conn, env.Type, err)
		return
	}
	if err := ctl.Orch.Media(ctx, st, env.Type); err != nil {
		ctl.sendError(ctx, conn, env.Type, err)
	}
}
