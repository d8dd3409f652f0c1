package rtc

import (
	"context"
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Classroom/internal/core"
)

func TestEngine_RouterLifecycle(t *testing.T) {
	ctx := context.Background()
	w, err := NewEngine(Options{}).CreateWorker(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, w.ID())

	r, err := w.CreateRouter(ctx, core.DefaultRouterCodecs())
	require.NoError(t, err)
	assert.Equal(t, core.DefaultRouterCodecs(), r.Codecs())

	tr, err := r.CreateTransport(ctx, "sid")
	require.NoError(t, err)
	assert.NotEmpty(t, tr.ID())
	assert.Equal(t, 1, r.(*Router).TransportCount())

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
	assert.Equal(t, 0, r.(*Router).TransportCount())

	_, err = r.CreateTransport(ctx, "sid2")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, 0, r.(*Router).TransportCount())

	_, err = r.CreateTransport(ctx, "sid3")
	assert.ErrorIs(t, err, core.ErrTransportClosed)
	_, err = w.CreateRouter(ctx, core.DefaultRouterCodecs())
	assert.Error(t, err)
}

func TestEngine_UnknownCodecKind(t *testing.T) {
	w, err := NewEngine(Options{}).CreateWorker(context.Background())
	require.NoError(t, err)
	_, err = w.CreateRouter(context.Background(), []core.Codec{{Kind: "data", MimeType: "x/y"}})
	assert.Error(t, err)
}

func TestToRTPCodec(t *testing.T) {
	params, typ, err := toRTPCodec(core.Codec{Kind: core.MediaAudio, MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2}, 0)
	require.NoError(t, err)
	assert.Equal(t, webrtc.RTPCodecTypeAudio, typ)
	assert.Equal(t, webrtc.PayloadType(111), params.PayloadType)
	assert.Equal(t, uint16(2), params.Channels)

	_, typ, err = toRTPCodec(core.Codec{Kind: core.MediaVideo, MimeType: webrtc.MimeTypeVP8, ClockRate: 90000}, 1)
	require.NoError(t, err)
	assert.Equal(t, webrtc.RTPCodecTypeVideo, typ)
}

func TestDefaultWebRTCConfig(t *testing.T) {
	assert.Empty(t, DefaultWebRTCConfig(nil).ICEServers)
	cfg := DefaultWebRTCConfig([]string{"stun:stun.l.google.com:19302"})
	require.Len(t, cfg.ICEServers, 1)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, cfg.ICEServers[0].URLs)
}
