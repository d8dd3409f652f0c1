package orch

import (
	"context"

	"github.com/dkeye/Classroom/internal/core"
	"github.com/dkeye/Classroom/internal/domain"
)

// Move accepts target only when it is a single step from the current position.
// Either way exactly one of user_moved or movement_rejected is broadcast.
func (o *Orchestrator) Move(ctx context.Context, st *core.SessionState, target domain.Position) (bool, error) {
	if !st.Joined() {
		return false, core.ErrNotJoined
	}
	roomID, _ := st.Room()
	id, _ := st.Identity()

	accepted := st.Position.IsStep(target)
	msgType := TypeMovementRejected
	if accepted {
		st.Position = target
		o.Rooms.MoveMember(roomID, id, target)
		msgType = TypeUserMoved
	}
	o.broadcast(ctx, roomID, id, UserMoved{Type: msgType, UserID: id, Coordinates: target})
	return accepted, nil
}

func (o *Orchestrator) SendMessage(ctx context.Context, st *core.SessionState, text string) error {
	if !st.Joined() {
		return core.ErrNotJoined
	}
	roomID, _ := st.Room()
	id, _ := st.Identity()
	if !o.Chat.Allow(id) {
		return core.ErrRateLimited
	}
	o.broadcast(ctx, roomID, id, ChatMessage{Type: TypeMessage, Sender: id, Content: text})
	return nil
}

// Nearby lists the other members within the session's audio range.
func (o *Orchestrator) Nearby(st *core.SessionState) (*Nearby, error) {
	if !st.Joined() {
		return nil, core.ErrNotJoined
	}
	roomID, _ := st.Room()
	self, _ := st.Identity()
	out := &Nearby{Type: TypeNearby, Range: st.AudioRange, UserIDs: []domain.UserID{}}
	for _, id := range o.Rooms.Nearby(roomID, st.Position, st.AudioRange) {
		if id != self {
			out.UserIDs = append(out.UserIDs, id)
		}
	}
	return out, nil
}
