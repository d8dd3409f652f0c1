package orch

import (
	"context"
	"fmt"

	"github.com/dkeye/Classroom/internal/core"
	"github.com/rs/zerolog/log"
)

// InitMedia allocates the session's transport on the room router and
// returns the router capabilities the client negotiates against.
func (o *Orchestrator) InitMedia(ctx context.Context, st *core.SessionState) (*RouterCapabilities, error) {
	if !st.Joined() {
		return nil, core.ErrNotJoined
	}
	roomID, _ := st.Room()
	room, ok := o.Rooms.GetRoom(roomID)
	if !ok {
		return nil, fmt.Errorf("room %d: %w", roomID, core.ErrRoomNotFound)
	}
	router := room.Router()
	if router == nil {
		return nil, fmt.Errorf("room %d has no router: %w", roomID, core.ErrCapabilityUnavailable)
	}
	if st.Media.Transport == nil {
		tr, err := router.CreateTransport(ctx, st.ID)
		if err != nil {
			return nil, fmt.Errorf("create transport: %w", err)
		}
		st.Media.Transport = tr
		log.Info().Str("module", "orch").Str("sid", string(st.ID)).Str("transport", tr.ID()).Msg("transport created")
	}
	return &RouterCapabilities{
		Type:        TypeRouterCapabilities,
		RoomID:      roomID,
		RouterID:    router.ID(),
		TransportID: st.Media.Transport.ID(),
		Codecs:      router.Codecs(),
	}, nil
}

// Media is the entry point of the media actions the engine does not serve yet.
func (o *Orchestrator) Media(_ context.Context, st *core.SessionState, action string) error {
	log.Debug().Str("module", "orch").Str("sid", string(st.ID)).Str("action", action).Msg("media action unavailable")
	return fmt.Errorf("%s: %w", action, core.ErrCapabilityUnavailable)
}
