package rtc

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Classroom/internal/core"
)

type Router struct {
	id     string
	api    *webrtc.API
	config webrtc.Configuration
	codecs []core.Codec

	mu         sync.Mutex
	transports map[string]*Transport
	closed     bool
	onClose    func(id string)
}

func (r *Router) ID() string { return r.id }

func (r *Router) Codecs() []core.Codec { return slices.Clone(r.codecs) }

// CreateTransport opens a peer connection for sid on this router.
func (r *Router) CreateTransport(_ context.Context, sid core.SessionID) (core.Transport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, fmt.Errorf("router %s closed: %w", r.id, core.ErrTransportClosed)
	}
	pc, err := r.api.NewPeerConnection(r.config)
	if err != nil {
		return nil, fmt.Errorf("new peer connection: %w", err)
	}
	t := &Transport{pc: pc, sid: sid, onClose: r.forget}
	t.watch()
	r.transports[t.ID()] = t
	return t, nil
}

func (r *Router) forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.transports, id)
}

func (r *Router) TransportCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.transports)
}

func (r *Router) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	transports := make([]*Transport, 0, len(r.transports))
	for _, t := range r.transports {
		transports = append(transports, t)
	}
	r.mu.Unlock()

	for _, t := range transports {
		_ = t.Close()
	}
	if r.onClose != nil {
		r.onClose(r.id)
	}
	log.Info().Str("module", "rtc").Str("router", r.id).Msg("router closed")
	return nil
}
