package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Classroom/internal/core"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) error {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return nil
		case <-c.done:
			return nil
		case data := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return fmt.Errorf("writePump set deadline: %w", err)
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return fmt.Errorf("writePump write: %w", err)
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return fmt.Errorf("writePump ping: %w", err)
			}
		}
	}
}

// readPump is the only place the session state is mutated. Frames are
// handled one at a time in arrival order.
func (ctl *SignalWSController) readPump(ctx context.Context, st *core.SessionState, c *WsSignalConn) error {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(st.ID)).Msg("readPump closing")
		ctl.Orch.Disconnect(ctx, st)
		c.Close()
	}()

	pongWait := ctl.opts.PingPeriod * 10 / 9
	c.conn.SetReadLimit(ctl.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("%w: %w", core.ErrTransportClosed, err)
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		ctl.handleSignal(ctx, st, c, data)
	}
}

func (ctl *SignalWSController) handleSignal(ctx context.Context, st *core.SessionState, c *WsSignalConn, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(st.ID)).Msg("bad json")
		ctl.sendError(ctx, c, "", fmt.Errorf("%w: %w", core.ErrDecode, err))
		return
	}

	switch env.Type {
	case ActionJoin:
		ctl.handleJoin(ctx, st, c, env.Payload)
	case ActionLeave:
		ctl.handleLeave(ctx, st)
	case ActionMove:
		ctl.handleMove(ctx, st, c, env.Payload)
	case ActionSendMessage:
		ctl.handleSendMessage(ctx, st, c, env.Payload)
	case ActionNearby:
		ctl.handleNearby(ctx, st, c)
	case ActionWebRTCInit:
		ctl.handleWebRTCInit(ctx, st, c)
	case ActionConnectTransport:
		handleMediaAction[ConnectTransportPayload](ctx, ctl, st, c, env)
	case ActionProduce:
		handleMediaAction[ProducePayload](ctx, ctl, st, c, env)
	case ActionConsume:
		handleMediaAction[ConsumePayload](ctx, ctl, st, c, env)
	case ActionResume:
		handleMediaAction[ResumePayload](ctx, ctl, st, c, env)
	case ActionPing:
		ctl.handlePing(ctx, c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		ctl.sendJSON(ctx, c, ErrorResponse{Type: "error", Action: env.Type, Error: "unknown_type"})
	}
}

// decodePayload unmarshals raw into v, mapping failures to core.ErrDecode.
func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing payload", core.ErrDecode)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %w", core.ErrDecode, err)
	}
	return nil
}

// sendJSON queues v for this connection only.
func (ctl *SignalWSController) sendJSON(ctx context.Context, c core.SignalConnection, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), replyTimeout)
	defer cancel()
	if err := c.Send(ctx, b); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("sendJSON")
	}
}

func (ctl *SignalWSController) sendError(ctx context.Context, c core.SignalConnection, action string, err error) {
	ctl.sendJSON(ctx, c, ErrorResponse{Type: "error", Action: action, Error: errorCode(err)})
}
