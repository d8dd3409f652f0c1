package orch

import (
	"github.com/dkeye/Classroom/internal/core"
	"github.com/dkeye/Classroom/internal/domain"
)

// Outbound message types.
const (
	TypeUserJoined         = "user_joined"
	TypeUserLeft           = "user_left"
	TypeUserMoved          = "user_moved"
	TypeMovementRejected   = "movement_rejected"
	TypeMessage            = "message"
	TypeRoomState          = "room_state"
	TypeRouterCapabilities = "router_capabilities"
	TypeNearby             = "nearby"
)

type UserJoined struct {
	Type        string          `json:"type"`
	UserID      domain.UserID   `json:"user_id"`
	Coordinates domain.Position `json:"coordinates"`
}

type UserLeft struct {
	Type   string        `json:"type"`
	UserID domain.UserID `json:"user_id"`
}

// UserMoved is shared by user_moved and movement_rejected.
type UserMoved struct {
	Type        string          `json:"type"`
	UserID      domain.UserID   `json:"user_id"`
	Coordinates domain.Position `json:"coordinates"`
}

type ChatMessage struct {
	Type    string        `json:"type"`
	Sender  domain.UserID `json:"sender"`
	Content string        `json:"content"`
}

// RoomState is sent to a session right after it joined.
type RoomState struct {
	Type        string           `json:"type"`
	RoomID      domain.RoomID    `json:"room_id"`
	Title       domain.RoomTitle `json:"title"`
	Owner       domain.UserID    `json:"owner"`
	UserID      domain.UserID    `json:"user_id"`
	Coordinates domain.Position  `json:"coordinates"`
	Members     []domain.Member  `json:"members"`
}

type RouterCapabilities struct {
	Type        string        `json:"type"`
	RoomID      domain.RoomID `json:"room_id"`
	RouterID    string        `json:"router_id"`
	TransportID string        `json:"transport_id"`
	Codecs      []core.Codec  `json:"codecs"`
}

type Nearby struct {
	Type    string          `json:"type"`
	Range   int32           `json:"range"`
	UserIDs []domain.UserID `json:"user_ids"`
}
