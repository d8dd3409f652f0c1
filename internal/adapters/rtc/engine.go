// Package rtc implements the media engine on pion/webrtc.
// A worker groups routers sharing one ICE setting engine; a router owns a
// webrtc.API configured with the room's codecs; transports are peer
// connections created from that API.
package rtc

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Classroom/internal/core"
)

type Options struct {
	STUNURLs   []string
	UDPPortMin uint16
	UDPPortMax uint16
}

func DefaultWebRTCConfig(stunURLs []string) webrtc.Configuration {
	if len(stunURLs) == 0 {
		return webrtc.Configuration{}
	}
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: stunURLs,
			},
		},
	}
}

// Engine creates pion backed workers.
type Engine struct {
	opts Options
}

func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

func (e *Engine) CreateWorker(_ context.Context) (core.Worker, error) {
	se := webrtc.SettingEngine{}
	if e.opts.UDPPortMin != 0 || e.opts.UDPPortMax != 0 {
		if err := se.SetEphemeralUDPPortRange(e.opts.UDPPortMin, e.opts.UDPPortMax); err != nil {
			return nil, fmt.Errorf("udp port range: %w", err)
		}
	}
	w := &Worker{
		id:      uuid.NewString(),
		setting: se,
		config:  DefaultWebRTCConfig(e.opts.STUNURLs),
		routers: make(map[string]*Router),
	}
	log.Info().Str("module", "rtc").Str("worker", w.id).Msg("worker created")
	return w, nil
}

type Worker struct {
	id      string
	setting webrtc.SettingEngine
	config  webrtc.Configuration

	mu      sync.Mutex
	routers map[string]*Router
	closed  bool
}

func (w *Worker) ID() string { return w.id }

func (w *Worker) CreateRouter(_ context.Context, codecs []core.Codec) (core.Router, error) {
	m := &webrtc.MediaEngine{}
	registered := make([]core.Codec, 0, len(codecs))
	for i, c := range codecs {
		params, typ, err := toRTPCodec(c, i)
		if err != nil {
			return nil, err
		}
		if err := m.RegisterCodec(params, typ); err != nil {
			return nil, fmt.Errorf("register codec %s: %w", c.MimeType, err)
		}
		registered = append(registered, c)
	}
	api := webrtc.NewAPI(webrtc.WithMediaEngine(m), webrtc.WithSettingEngine(w.setting))

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, fmt.Errorf("worker %s: %w", w.id, core.ErrNoWorkersAvailable)
	}
	r := &Router{
		id:         uuid.NewString(),
		api:        api,
		config:     w.config,
		codecs:     registered,
		transports: make(map[string]*Transport),
		onClose:    w.forget,
	}
	w.routers[r.id] = r
	log.Info().Str("module", "rtc").Str("worker", w.id).Str("router", r.id).Int("codecs", len(registered)).Msg("router created")
	return r, nil
}

func (w *Worker) forget(routerID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.routers, routerID)
}

func (w *Worker) Close() error {
	w.mu.Lock()
	w.closed = true
	routers := make([]*Router, 0, len(w.routers))
	for _, r := range w.routers {
		routers = append(routers, r)
	}
	w.mu.Unlock()

	var firstErr error
	for _, r := range routers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	log.Info().Str("module", "rtc").Str("worker", w.id).Msg("worker closed")
	return firstErr
}

// payload types follow the common browser defaults
func toRTPCodec(c core.Codec, index int) (webrtc.RTPCodecParameters, webrtc.RTPCodecType, error) {
	capability := webrtc.RTPCodecCapability{
		MimeType:  c.MimeType,
		ClockRate: c.ClockRate,
		Channels:  c.Channels,
	}
	switch c.Kind {
	case core.MediaAudio:
		return webrtc.RTPCodecParameters{RTPCodecCapability: capability, PayloadType: webrtc.PayloadType(111 + index)}, webrtc.RTPCodecTypeAudio, nil
	case core.MediaVideo:
		return webrtc.RTPCodecParameters{RTPCodecCapability: capability, PayloadType: webrtc.PayloadType(96 + index)}, webrtc.RTPCodecTypeVideo, nil
	default:
		return webrtc.RTPCodecParameters{}, 0, fmt.Errorf("codec %s: unknown kind %q", c.MimeType, c.Kind)
	}
}
