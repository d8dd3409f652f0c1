package app

import (
	"github.com/dkeye/Classroom/internal/core"
	"github.com/dkeye/Classroom/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a member whose delivery failed during a broadcast.
type Policy interface {
	OnBackPressure(room domain.RoomID, member core.MemberSession) BackpressureAction
}

// SkipPolicy leaves slow members connected; the frame is simply lost for them.
type SkipPolicy struct{}

func (SkipPolicy) OnBackPressure(domain.RoomID, core.MemberSession) BackpressureAction {
	return NoAction
}

// KickPolicy closes a slow member's connection so its own read loop cleans up.
type KickPolicy struct{}

func (KickPolicy) OnBackPressure(domain.RoomID, core.MemberSession) BackpressureAction {
	return KickMember
}

func PolicyByName(name string) Policy {
	if name == "kick" {
		return KickPolicy{}
	}
	return SkipPolicy{}
}
