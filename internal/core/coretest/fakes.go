// Package coretest provides in-memory fakes of the core collaborators for tests.
package coretest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dkeye/Classroom/internal/core"
)

// Engine hands out Workers with sequential ids w1, w2, ...
type Engine struct {
	mu      sync.Mutex
	created int
	// FailAfter makes CreateWorker fail once this many workers exist. Zero never fails.
	FailAfter int
	// RouterDelay is copied to every worker created.
	RouterDelay time.Duration
}

func (e *Engine) CreateWorker(context.Context) (core.Worker, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.FailAfter > 0 && e.created >= e.FailAfter {
		return nil, errors.New("engine exhausted")
	}
	e.created++
	return &Worker{id: fmt.Sprintf("w%d", e.created), RouterDelay: e.RouterDelay}, nil
}

type Worker struct {
	id      string
	routers atomic.Int32
	// RouterErr is returned by CreateRouter when set.
	RouterErr error
	// RouterDelay makes CreateRouter sleep before answering.
	RouterDelay time.Duration
	closed      atomic.Bool
}

func NewWorker(id string) *Worker { return &Worker{id: id} }

func (w *Worker) ID() string { return w.id }

func (w *Worker) CreateRouter(_ context.Context, codecs []core.Codec) (core.Router, error) {
	if w.RouterDelay > 0 {
		time.Sleep(w.RouterDelay)
	}
	if w.RouterErr != nil {
		return nil, w.RouterErr
	}
	n := w.routers.Add(1)
	return &Router{id: fmt.Sprintf("%s-r%d", w.id, n), codecs: codecs}, nil
}

func (w *Worker) Close() error {
	w.closed.Store(true)
	return nil
}

func (w *Worker) Closed() bool { return w.closed.Load() }

type Router struct {
	id         string
	codecs     []core.Codec
	transports atomic.Int32
	closed     atomic.Bool
}

func (r *Router) ID() string           { return r.id }
func (r *Router) Codecs() []core.Codec { return r.codecs }

func (r *Router) CreateTransport(_ context.Context, sid core.SessionID) (core.Transport, error) {
	n := r.transports.Add(1)
	return &Transport{id: fmt.Sprintf("%s-%s-t%d", r.id, sid, n)}, nil
}

func (r *Router) Close() error {
	r.closed.Store(true)
	return nil
}

func (r *Router) Closed() bool { return r.closed.Load() }

type Transport struct {
	id     string
	closed atomic.Bool
}

func (t *Transport) ID() string { return t.id }
func (t *Transport) Close() error {
	t.closed.Store(true)
	return nil
}
func (t *Transport) Closed() bool { return t.closed.Load() }

// Signal records every frame sent to it.
// With Block set, Send waits until ctx is done.
type Signal struct {
	mu     sync.Mutex
	frames []core.Frame
	Block  bool
	closed atomic.Bool
}

func (s *Signal) Send(ctx context.Context, f core.Frame) error {
	if s.closed.Load() {
		return core.ErrTransportClosed
	}
	if s.Block {
		<-ctx.Done()
		return ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, append(core.Frame(nil), f...))
	return nil
}

func (s *Signal) Close()       { s.closed.Store(true) }
func (s *Signal) Closed() bool { return s.closed.Load() }

func (s *Signal) Frames() []core.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Frame(nil), s.frames...)
}

// Messages decodes every recorded frame as a JSON object.
func (s *Signal) Messages() []map[string]any {
	frames := s.Frames()
	out := make([]map[string]any, 0, len(frames))
	for _, f := range frames {
		var m map[string]any
		if err := json.Unmarshal(f, &m); err == nil {
			out = append(out, m)
		}
	}
	return out
}

// Types lists the "type" field of every recorded message.
func (s *Signal) Types() []string {
	msgs := s.Messages()
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		t, _ := m["type"].(string)
		out = append(out, t)
	}
	return out
}

func (s *Signal) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = nil
}

// Verifier accepts a signature equal to "ok" and rejects everything else.
type Verifier struct {
	calls atomic.Int32
}

func (v *Verifier) Verify(_, signatureHex, _ string) error {
	v.calls.Add(1)
	if signatureHex == "ok" {
		return nil
	}
	return core.ErrSignatureInvalid
}

func (v *Verifier) Calls() int { return int(v.calls.Load()) }
