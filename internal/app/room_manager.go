package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dkeye/Classroom/internal/core"
	"github.com/dkeye/Classroom/internal/domain"
	"github.com/rs/zerolog/log"
)

const DefaultBroadcastTimeout = 5 * time.Second

// RoomManager owns every room of the process and the worker pool they run on.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]core.RoomService
	// creating holds course ids with an exclusive creation in flight.
	creating map[domain.RoomID]struct{}

	pool        *WorkerPool
	sendTimeout time.Duration
}

func NewRoomManager(pool *WorkerPool, sendTimeout time.Duration) *RoomManager {
	if sendTimeout <= 0 {
		sendTimeout = DefaultBroadcastTimeout
	}
	return &RoomManager{
		rooms:       make(map[domain.RoomID]core.RoomService),
		creating:    make(map[domain.RoomID]struct{}),
		pool:        pool,
		sendTimeout: sendTimeout,
	}
}

func (m *RoomManager) Pool() *WorkerPool { return m.pool }

// CreateRoom builds a room for a course on the least loaded worker.
// Calling it twice for the same course replaces the earlier room.
func (m *RoomManager) CreateRoom(ctx context.Context, owner domain.UserID, courseID domain.RoomID, title domain.RoomTitle) (domain.RoomID, error) {
	return m.createRoom(ctx, owner, courseID, title, true)
}

// CreateRoomExclusive is CreateRoom for callers that cannot guarantee unique
// course ids. It fails with core.ErrRoomExists instead of replacing.
func (m *RoomManager) CreateRoomExclusive(ctx context.Context, owner domain.UserID, courseID domain.RoomID, title domain.RoomTitle) (domain.RoomID, error) {
	m.mu.Lock()
	_, exists := m.rooms[courseID]
	_, pending := m.creating[courseID]
	if exists || pending {
		m.mu.Unlock()
		return 0, fmt.Errorf("room %d: %w", courseID, core.ErrRoomExists)
	}
	m.creating[courseID] = struct{}{}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.creating, courseID)
		m.mu.Unlock()
	}()
	return m.createRoom(ctx, owner, courseID, title, false)
}

func (m *RoomManager) createRoom(ctx context.Context, owner domain.UserID, courseID domain.RoomID, title domain.RoomTitle, replace bool) (domain.RoomID, error) {
	worker, release, err := m.pool.Acquire(courseID)
	if err != nil {
		return 0, fmt.Errorf("room %d: %w: %w", courseID, core.ErrWorkerAcquisitionFailed, err)
	}
	router, err := worker.CreateRouter(ctx, core.DefaultRouterCodecs())
	if err != nil {
		release()
		return 0, fmt.Errorf("room %d: create router: %w: %w", courseID, core.ErrWorkerAcquisitionFailed, err)
	}

	room := core.NewRoomService(&domain.Room{ID: courseID, Owner: owner, Title: title}, router)

	m.mu.Lock()
	old, replaced := m.rooms[courseID]
	if replaced && !replace {
		m.mu.Unlock()
		release()
		if err := router.Close(); err != nil {
			log.Warn().Err(err).Str("module", "app.rooms").Str("room_id", courseID.String()).Msg("close unused router")
		}
		return 0, fmt.Errorf("room %d: %w", courseID, core.ErrRoomExists)
	}
	m.rooms[courseID] = room
	m.mu.Unlock()

	if replaced && old.Router() != nil {
		if err := old.Router().Close(); err != nil {
			log.Warn().Err(err).Str("module", "app.rooms").Str("room_id", courseID.String()).Msg("close replaced router")
		}
	}
	log.Info().
		Str("module", "app.rooms").
		Str("room_id", courseID.String()).
		Str("owner", string(owner)).
		Str("title", string(title)).
		Str("worker", worker.ID()).
		Bool("replaced", replaced).
		Msg("room created")
	return courseID, nil
}

func (m *RoomManager) GetRoom(id domain.RoomID) (core.RoomService, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

func (m *RoomManager) RoomExists(id domain.RoomID) bool {
	_, ok := m.GetRoom(id)
	return ok
}

func (m *RoomManager) List() []core.RoomInfo {
	m.mu.RLock()
	rooms := make([]core.RoomService, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	out := make([]core.RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		meta := r.Room()
		wid, _ := m.pool.WorkerOf(meta.ID)
		out = append(out, core.RoomInfo{
			ID:          meta.ID,
			Owner:       meta.Owner,
			Title:       meta.Title,
			MemberCount: r.MemberCount(),
			Worker:      wid,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddMember returns the session ms displaced, if any.
func (m *RoomManager) AddMember(roomID domain.RoomID, ms core.MemberSession, pos domain.Position) core.MemberSession {
	if r, ok := m.GetRoom(roomID); ok {
		return r.AddMember(ms, pos)
	}
	return nil
}

// RemoveMember removes id if its entry is bound to signal. A nil signal
// removes whatever entry id has.
func (m *RoomManager) RemoveMember(roomID domain.RoomID, id domain.UserID, signal core.SignalConnection) bool {
	if r, ok := m.GetRoom(roomID); ok {
		return r.RemoveMember(id, signal)
	}
	return false
}

func (m *RoomManager) MoveMember(roomID domain.RoomID, id domain.UserID, pos domain.Position) bool {
	if r, ok := m.GetRoom(roomID); ok {
		return r.MoveMember(id, pos)
	}
	return false
}

func (m *RoomManager) Nearby(roomID domain.RoomID, pos domain.Position, rangeUnits int32) []domain.UserID {
	if r, ok := m.GetRoom(roomID); ok {
		return r.Neighbors(pos, rangeUnits)
	}
	return nil
}

// Broadcast delivers payload to every member of the room except from.
// Each delivery is bounded by the send timeout; failures are skipped.
func (m *RoomManager) Broadcast(ctx context.Context, roomID domain.RoomID, from domain.UserID, payload core.Frame) core.PublishResult {
	res := core.PublishResult{}
	r, ok := m.GetRoom(roomID)
	if !ok {
		return res
	}
	// the room lock is released before any send
	for _, member := range r.Recipients(from) {
		sendCtx, cancel := context.WithTimeout(ctx, m.sendTimeout)
		err := member.Signal().Send(sendCtx, payload)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = fmt.Errorf("%w: %w", core.ErrDeliveryTimeout, err)
			}
			log.Warn().
				Err(err).
				Str("module", "app.rooms").
				Str("room_id", roomID.String()).
				Str("user_id", string(member.Identity())).
				Msg("delivery skipped")
			res.Dropped = append(res.Dropped, member)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "app.rooms").Str("room_id", roomID.String()).Str("from", string(from)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
