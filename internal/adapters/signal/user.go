package signal

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Classroom/internal/core"
	"github.com/dkeye/Classroom/internal/domain"
)

func (ctl *SignalWSController) handleMove(
	ctx context.Context,
	st *core.SessionState,
	conn *WsSignalConn,
	raw json.RawMessage,
) {
	var p MovePayload
	if err := decodePayload(raw, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad move payload")
		ctl.sendError(ctx, conn, ActionMove, err)
		return
	}
	accepted, err := ctl.Orch.Move(ctx, st, domain.Position{X: p.X, Y: p.Y})
	if err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(st.ID)).Msg("move ignored")
		return
	}
	log.Debug().Str("module", "signal").Str("sid", string(st.ID)).Bool("accepted", accepted).Msg("move")
}

func (ctl *SignalWSController) handleSendMessage(
	ctx context.Context,
	st *core.SessionState,
	conn *WsSignalConn,
	raw json.RawMessage,
) {
	var text string
	if err := decodePayload(raw, &text); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad send_message payload")
		ctl.sendError(ctx, conn, ActionSendMessage, err)
		return
	}
	err := ctl.Orch.SendMessage(ctx, st, text)
	switch {
	case err == nil:
	case errors.Is(err, core.ErrRateLimited):
		ctl.sendError(ctx, conn, ActionSendMessage, err)
	default:
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(st.ID)).Msg("message ignored")
	}
}

func (ctl *SignalWSController) handleNearby(ctx context.Context, st *core.SessionState, conn *WsSignalConn) {
	resp, err := ctl.Orch.Nearby(st)
	if err != nil {
		ctl.sendError(ctx, conn, ActionNearby, err)
		return
	}
	ctl.sendJSON(ctx, conn, resp)
}
