package core

import (
	"maps"
	"sync"

	"github.com/dkeye/Classroom/internal/domain"
	"github.com/rs/zerolog/log"
)

type memberEntry struct {
	session MemberSession
	pos     domain.Position
}

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	room   *domain.Room
	router Router

	mu      sync.RWMutex
	members map[domain.UserID]*memberEntry
	spatial *SpatialIndex
	streams map[string]domain.StreamInfo
}

func NewRoomService(room *domain.Room, router Router) RoomService {
	return &roomImpl{
		room:    room,
		router:  router,
		members: make(map[domain.UserID]*memberEntry),
		spatial: NewSpatialIndex(),
		streams: make(map[string]domain.StreamInfo),
	}
}

func (r *roomImpl) Room() *domain.Room { return r.room }
func (r *roomImpl) Router() Router     { return r.router }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// AddMember inserts ms at pos. A session with the same identity is replaced
// and returned so the caller can close it.
func (r *roomImpl) AddMember(ms MemberSession, pos domain.Position) MemberSession {
	id := ms.Identity()
	r.mu.Lock()
	defer r.mu.Unlock()
	var displaced MemberSession
	if old, ok := r.members[id]; ok && old.session.Signal() != ms.Signal() {
		displaced = old.session
	}
	r.members[id] = &memberEntry{session: ms, pos: pos}
	r.spatial.Insert(id, pos)
	log.Info().Str("module", "core.room").Str("room_id", r.room.ID.String()).Str("user_id", string(id)).Bool("displaced", displaced != nil).Msg("member added")
	return displaced
}

// RemoveMember drops id when its entry is bound to signal, or unconditionally
// when signal is nil. A session displaced by a newer one removes nothing.
func (r *roomImpl) RemoveMember(id domain.UserID, signal SignalConnection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return false
	}
	if signal != nil && m.session.Signal() != signal {
		return false
	}
	delete(r.members, id)
	r.spatial.Remove(id)
	log.Info().Str("module", "core.room").Str("room_id", r.room.ID.String()).Str("user_id", string(id)).Msg("member removed")
	return true
}

func (r *roomImpl) MoveMember(id domain.UserID, pos domain.Position) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return false
	}
	r.spatial.Move(id, m.pos, pos)
	m.pos = pos
	return true
}

func (r *roomImpl) Neighbors(pos domain.Position, rangeUnits int32) []domain.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.spatial.NeighborsWithin(pos, RangeCells(rangeUnits))
}

// Recipients snapshots every member except from. An empty from selects all.
func (r *roomImpl) Recipients(from domain.UserID) []MemberSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MemberSession, 0, len(r.members))
	for id, m := range r.members {
		if from != "" && id == from {
			continue
		}
		out = append(out, m.session)
	}
	return out
}

func (r *roomImpl) MembersSnapshot() []domain.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Member, 0, len(r.members))
	for id, m := range r.members {
		out = append(out, domain.NewMember(id, m.pos))
	}
	return out
}

func (r *roomImpl) AddStream(streamID string, info domain.StreamInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.streams[streamID] = info
}

func (r *roomImpl) RemoveStream(streamID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.streams, streamID)
}

func (r *roomImpl) RemoveStreamsOf(owner domain.UserID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.streams {
		if s.Owner == owner {
			delete(r.streams, id)
			n++
		}
	}
	return n
}

func (r *roomImpl) Streams() map[string]domain.StreamInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.streams)
}
