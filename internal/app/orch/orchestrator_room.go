package orch

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/Classroom/internal/core"
	"github.com/dkeye/Classroom/internal/domain"
	"github.com/rs/zerolog/log"
)

type JoinRequest struct {
	CourseID      domain.RoomID
	PubAddress    string
	Signature     string
	MessageSigned string
}

// Join verifies the request and places the session in the course room.
// A session already in a room leaves it first.
func (o *Orchestrator) Join(ctx context.Context, st *core.SessionState, signal core.SignalConnection, req JoinRequest) (*RoomState, error) {
	room, ok := o.Rooms.GetRoom(req.CourseID)
	if !ok {
		return nil, fmt.Errorf("room %d: %w", req.CourseID, core.ErrRoomNotFound)
	}
	uid, err := domain.NewUserID(req.PubAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrSignatureInvalid, err)
	}
	if err := o.verify(ctx, req); err != nil {
		return nil, err
	}

	if st.Joined() {
		from, _ := st.Room()
		o.Leave(ctx, st)
		log.Info().Str("module", "orch").Str("sid", string(st.ID)).Str("from_room", from.String()).Msg("left previous room on join")
	}

	id := st.SetIdentity(uid)
	pos := o.spawn()
	st.EnterRoom(req.CourseID, pos, signal)
	if displaced := o.Rooms.AddMember(req.CourseID, core.NewMemberSession(id, signal), pos); displaced != nil {
		log.Warn().Str("module", "orch").Str("user_id", string(id)).Str("room_id", req.CourseID.String()).Msg("closing session displaced by a newer one")
		displaced.Signal().Close()
	}
	log.Info().Str("module", "orch").Str("sid", string(st.ID)).Str("user_id", string(id)).Str("room_id", req.CourseID.String()).Msg("joined")

	o.broadcast(ctx, req.CourseID, id, UserJoined{Type: TypeUserJoined, UserID: id, Coordinates: pos})

	meta := room.Room()
	return &RoomState{
		Type:        TypeRoomState,
		RoomID:      meta.ID,
		Title:       meta.Title,
		Owner:       meta.Owner,
		UserID:      id,
		Coordinates: pos,
		Members:     room.MembersSnapshot(),
	}, nil
}

// verify runs the verifier off the caller's goroutine, bounded by VerifyTimeout.
func (o *Orchestrator) verify(ctx context.Context, req JoinRequest) error {
	if o.Verifier == nil {
		return fmt.Errorf("%w: no verifier configured", core.ErrSignatureInvalid)
	}
	timeout := o.VerifyTimeout
	if timeout <= 0 {
		timeout = DefaultVerifyTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- o.Verifier.Verify(req.PubAddress, req.Signature, req.MessageSigned)
	}()
	select {
	case err := <-done:
		if err == nil {
			return nil
		}
		if errors.Is(err, core.ErrSignatureInvalid) {
			return err
		}
		return fmt.Errorf("%w: %w", core.ErrSignatureInvalid, err)
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", core.ErrSignatureInvalid, ctx.Err())
	}
}

// Leave removes the session from its room and releases its media. It reports
// whether the session was joined. A session displaced by a newer one of the
// same identity leaves silently and keeps the newer membership intact.
func (o *Orchestrator) Leave(ctx context.Context, st *core.SessionState) bool {
	if !st.Joined() {
		return false
	}
	roomID, _ := st.Room()
	id, _ := st.Identity()

	if o.Rooms.RemoveMember(roomID, id, st.Signal()) {
		if room, ok := o.Rooms.GetRoom(roomID); ok {
			if n := room.RemoveStreamsOf(id); n > 0 {
				log.Info().Str("module", "orch").Str("user_id", string(id)).Int("streams", n).Msg("dropped streams on leave")
			}
		}
		o.broadcast(ctx, roomID, id, UserLeft{Type: TypeUserLeft, UserID: id})
	} else {
		log.Debug().Str("module", "orch").Str("sid", string(st.ID)).Str("user_id", string(id)).Msg("membership already taken over")
	}
	st.ExitRoom()
	o.releaseMedia(st)
	log.Info().Str("module", "orch").Str("sid", string(st.ID)).Str("user_id", string(id)).Str("room_id", roomID.String()).Msg("left")
	return true
}

// Disconnect is the cleanup run when a connection ends. Chat history is kept
// so that reconnecting does not reset the rate limit window.
func (o *Orchestrator) Disconnect(ctx context.Context, st *core.SessionState) {
	o.Leave(ctx, st)
	o.releaseMedia(st)
}

func (o *Orchestrator) releaseMedia(st *core.SessionState) {
	if err := st.ReleaseMedia(); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(st.ID)).Msg("release media")
	}
}
