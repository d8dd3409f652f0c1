package orch

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"time"

	"github.com/dkeye/Classroom/internal/app"
	"github.com/dkeye/Classroom/internal/core"
	"github.com/dkeye/Classroom/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	DefaultVerifyTimeout = 3 * time.Second
	// SpawnArea bounds the random position a member joins at.
	SpawnArea = 100
)

// Orchestrator turns decoded session actions into room mutations and broadcasts.
// It is shared by every connection; per-session state is passed in.
type Orchestrator struct {
	Rooms         *app.RoomManager
	Verifier      core.Verifier
	Policy        app.Policy
	Chat          *app.RateLimiter
	VerifyTimeout time.Duration
	// Spawn picks the initial position of a joining member.
	Spawn func() domain.Position
}

func RandomSpawn() domain.Position {
	return domain.Position{X: rand.Int32N(SpawnArea), Y: rand.Int32N(SpawnArea)}
}

func (o *Orchestrator) spawn() domain.Position {
	if o.Spawn != nil {
		return o.Spawn()
	}
	return RandomSpawn()
}

// broadcast fans v out to the room. It is detached from ctx cancellation so
// that a closing connection never aborts deliveries to other members.
func (o *Orchestrator) broadcast(ctx context.Context, roomID domain.RoomID, from domain.UserID, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("broadcast marshal")
		return
	}
	res := o.Rooms.Broadcast(context.WithoutCancel(ctx), roomID, from, core.Frame(data))
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(roomID, slow) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("room_id", roomID.String()).Str("user_id", string(slow.Identity())).Msg("kicking slow member")
			slow.Signal().Close()
		case app.NoAction:
		}
	}
}
