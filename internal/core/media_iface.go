package core

import "context"

type MediaKind string

const (
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
)

// Codec is one entry of a router's RTP capabilities.
type Codec struct {
	Kind      MediaKind `json:"kind"`
	MimeType  string    `json:"mime_type"`
	ClockRate uint32    `json:"clock_rate"`
	Channels  uint16    `json:"channels,omitempty"`
}

// DefaultRouterCodecs is what every classroom router is configured with.
func DefaultRouterCodecs() []Codec {
	return []Codec{
		{Kind: MediaAudio, MimeType: "audio/opus", ClockRate: 48000, Channels: 2},
		{Kind: MediaVideo, MimeType: "video/VP8", ClockRate: 90000},
	}
}

// MediaEngine provisions workers. Implemented outside the core.
type MediaEngine interface {
	CreateWorker(ctx context.Context) (Worker, error)
}

type Worker interface {
	ID() string
	CreateRouter(ctx context.Context, codecs []Codec) (Router, error)
	Close() error
}

// Router is the media relay configuration of one room.
// It is immutable once created.
type Router interface {
	ID() string
	Codecs() []Codec
	CreateTransport(ctx context.Context, sid SessionID) (Transport, error)
	Close() error
}

// Transport is a per-session media endpoint on a router.
type Transport interface {
	ID() string
	Close() error
}
