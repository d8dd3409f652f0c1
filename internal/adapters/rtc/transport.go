package rtc

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Classroom/internal/core"
)

// Transport is one session's peer connection on a router.
type Transport struct {
	pc  *webrtc.PeerConnection
	sid core.SessionID

	idOnce sync.Once
	id     string

	closeOnce sync.Once
	closeErr  error
	onClose   func(id string)
}

func (t *Transport) ID() string {
	t.idOnce.Do(func() { t.id = uuid.NewString() })
	return t.id
}

func (t *Transport) watch() {
	t.pc.OnICEConnectionStateChange(func(s webrtc.ICEConnectionState) {
		log.Info().Str("module", "rtc").Str("sid", string(t.sid)).Str("ice_state", s.String()).Msg("ICE state")
	})
	t.pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		log.Info().Str("module", "rtc").Str("sid", string(t.sid)).Str("peer_connection_state", s.String()).Msg("Peer state")
	})
}

func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.pc.Close()
		if t.closeErr != nil {
			log.Error().Err(t.closeErr).Str("module", "rtc").Str("sid", string(t.sid)).Msg("close error")
		} else {
			log.Info().Str("module", "rtc").Str("sid", string(t.sid)).Msg("closed")
		}
		if t.onClose != nil {
			t.onClose(t.ID())
		}
	})
	return t.closeErr
}
