package core

import (
	"github.com/dkeye/Classroom/internal/domain"
)

// PublishResult reports delivery stats to the caller of a broadcast.
type PublishResult struct {
	SendTo  int
	Dropped []MemberSession
}

// RoomService is the core-facing API of a room.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	Room() *domain.Room
	Router() Router
	MemberCount() int
	MembersSnapshot() []domain.Member
	Recipients(from domain.UserID) []MemberSession

	// AddMember returns the session previously bound to the same identity,
	// or nil when there was none.
	AddMember(ms MemberSession, pos domain.Position) MemberSession
	RemoveMember(id domain.UserID, signal SignalConnection) bool
	MoveMember(id domain.UserID, pos domain.Position) bool
	Neighbors(pos domain.Position, rangeUnits int32) []domain.UserID

	AddStream(streamID string, info domain.StreamInfo)
	RemoveStream(streamID string)
	RemoveStreamsOf(owner domain.UserID) int
	Streams() map[string]domain.StreamInfo
}

type RoomInfo struct {
	ID          domain.RoomID    `json:"id"`
	Owner       domain.UserID    `json:"owner"`
	Title       domain.RoomTitle `json:"title"`
	MemberCount int              `json:"member_count"`
	Worker      string           `json:"worker"`
}
