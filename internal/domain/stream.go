package domain

type StreamKind string

const (
	StreamCamera StreamKind = "camera"
	StreamScreen StreamKind = "screen"
	StreamAudio  StreamKind = "audio"
)

type QualityLevel string

const (
	QualityHigh   QualityLevel = "high"   // 1080p
	QualityMedium QualityLevel = "medium" // 720p
	QualityLow    QualityLevel = "low"    // 480p
)

// StreamSettings are the knobs a producer publishes with.
type StreamSettings struct {
	Quality    QualityLevel `json:"quality"`
	MaxBitrate uint32       `json:"max_bitrate"`
	Range      int32        `json:"range"`
}

// StreamInfo describes one active media stream in a room.
type StreamInfo struct {
	Owner    UserID         `json:"owner"`
	Kind     StreamKind     `json:"kind"`
	Settings StreamSettings `json:"settings"`
	Position Position       `json:"position"`
}
