package signal

import (
	"encoding/json"
	"errors"

	"github.com/dkeye/Classroom/internal/core"
)

// Inbound action tags.
const (
	ActionJoin             = "join"
	ActionLeave            = "leave"
	ActionMove             = "move"
	ActionSendMessage      = "send_message"
	ActionWebRTCInit       = "webrtc_init"
	ActionConnectTransport = "connect_transport"
	ActionProduce          = "produce"
	ActionConsume          = "consume"
	ActionResume           = "resume"
	ActionPing             = "ping"
	ActionNearby           = "nearby"
)

// Envelope wraps every inbound frame.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinPayload struct {
	CourseID      uint32 `json:"course_id"`
	PubAddress    string `json:"pub_address"`
	Signature     string `json:"signature"`
	MessageSigned string `json:"message_signed"`
}

type MovePayload struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// Media payloads are accepted as opaque JSON until the engine negotiates them.
type ConnectTransportPayload struct {
	ID             string          `json:"id"`
	ICEParameters  json.RawMessage `json:"ice_parameters"`
	ICECandidates  json.RawMessage `json:"ice_candidates"`
	DTLSParameters json.RawMessage `json:"dtls_parameters"`
}

type ProducePayload struct {
	Kind          string          `json:"kind"`
	RTPParameters json.RawMessage `json:"rtp_parameters"`
}

type ConsumePayload struct {
	ProducerID string `json:"producer_id"`
}

type ResumePayload struct {
	ConsumerID string `json:"consumer_id"`
}

type ErrorResponse struct {
	Type   string `json:"type"`
	Action string `json:"action,omitempty"`
	Error  string `json:"error"`
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, core.ErrDecode):
		return "bad_payload"
	case errors.Is(err, core.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, core.ErrSignatureInvalid):
		return "signature_invalid"
	case errors.Is(err, core.ErrNotJoined):
		return "not_joined"
	case errors.Is(err, core.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, core.ErrCapabilityUnavailable):
		return "capability_unavailable"
	default:
		return "internal"
	}
}
