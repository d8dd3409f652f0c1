package signal

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Classroom/internal/app/orch"
	"github.com/dkeye/Classroom/internal/core"
	"github.com/dkeye/Classroom/internal/domain"
)

func (ctl *SignalWSController) handleJoin(
	ctx context.Context,
	st *core.SessionState,
	conn *WsSignalConn,
	raw json.RawMessage,
) {
	var p JoinPayload
	if err := decodePayload(raw, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(ctx, conn, ActionJoin, err)
		return
	}

	state, err := ctl.Orch.Join(ctx, st, conn, orch.JoinRequest{
		CourseID:      domain.RoomID(p.CourseID),
		PubAddress:    p.PubAddress,
		Signature:     p.Signature,
		MessageSigned: p.MessageSigned,
	})
	if err != nil {
		ev := log.Warn()
		if errors.Is(err, core.ErrRoomNotFound) {
			ev = log.Debug()
		}
		ev.Err(err).Str("module", "signal").Str("sid", string(st.ID)).Uint32("course_id", p.CourseID).Msg("join rejected")
		ctl.sendError(ctx, conn, ActionJoin, err)
		return
	}
	ctl.sendJSON(ctx, conn, state)
}

// handleLeave leaves the current room; the connection stays open.
func (ctl *SignalWSController) handleLeave(ctx context.Context, st *core.SessionState) {
	if !ctl.Orch.Leave(ctx, st) {
		log.Debug().Str("module", "signal").Str("sid", string(st.ID)).Msg("leave while not joined")
	}
}
