package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dkeye/Classroom/internal/app"
	"github.com/dkeye/Classroom/internal/app/orch"
	"github.com/dkeye/Classroom/internal/core"
)

const (
	defaultReadLimit  = 32768
	defaultPingPeriod = 54 * time.Second
	defaultSendBuffer = 32
	writeWait         = 5 * time.Second
	replyTimeout      = 5 * time.Second
)

type Options struct {
	ReadLimit  int64
	PingPeriod time.Duration
	SendBuffer int
}

// SignalWSController runs the session protocol for every WebSocket connection.
type SignalWSController struct {
	Orch     *orch.Orchestrator
	Sessions *app.Sessions
	opts     Options
}

func NewSignalWSController(o *orch.Orchestrator, sessions *app.Sessions, opts Options) *SignalWSController {
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = defaultReadLimit
	}
	if opts.PingPeriod <= 0 {
		opts.PingPeriod = defaultPingPeriod
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaultSendBuffer
	}
	return &SignalWSController{Orch: o, Sessions: sessions, opts: opts}
}

// WsSignalConn is the send handle of one connection. Only the write pump
// touches the socket for data frames.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	done chan struct{}
	once sync.Once
}

func newWsSignalConn(ws *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, buffer),
		done: make(chan struct{}),
	}
}

func (c *WsSignalConn) Send(ctx context.Context, f core.Frame) error {
	select {
	case <-c.done:
		return core.ErrTransportClosed
	default:
	}
	select {
	case c.send <- f:
		return nil
	case <-c.done:
		return core.ErrTransportClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *WsSignalConn) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	log.Info().Str("module", "signal").Str("client_token", c.GetString("client_token")).Msg("new WS connection")
	ctl.ServeWS(ctx, c.Writer, c.Request, core.SessionID(uuid.NewString()))
}

// ServeWS upgrades the request and runs the session until the connection ends
// or ctx is cancelled. It returns once the pumps are started.
func (ctl *SignalWSController) ServeWS(ctx context.Context, w http.ResponseWriter, r *http.Request, sid core.SessionID) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	conn := newWsSignalConn(ws, ctl.opts.SendBuffer)
	st := core.NewSessionState(sid)

	ctx, cancel := context.WithCancel(ctx)
	if ctl.Sessions != nil {
		ctl.Sessions.Bind(sid, cancel)
	}

	go func() {
		defer cancel()
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return ctl.writePump(gctx, conn) })
		g.Go(func() error { return ctl.readPump(gctx, st, conn) })
		if err := g.Wait(); err != nil {
			log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("session ended")
		}
		if ctl.Sessions != nil {
			ctl.Sessions.Unbind(sid)
		}
	}()
}
