package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dkeye/Classroom/internal/core"
	"github.com/dkeye/Classroom/internal/core/coretest"
	"github.com/dkeye/Classroom/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, workers int) *RoomManager {
	t.Helper()
	pool, err := NewWorkerPool(context.Background(), &coretest.Engine{}, workers)
	require.NoError(t, err)
	return NewRoomManager(pool, 50*time.Millisecond)
}

func TestRoomManager_CreateRoom(t *testing.T) {
	m := newTestManager(t, 1)
	id, err := m.CreateRoom(context.Background(), "teacher", 5, "Go 101")
	require.NoError(t, err)
	assert.Equal(t, domain.RoomID(5), id)
	assert.True(t, m.RoomExists(5))
	assert.False(t, m.RoomExists(6))

	r, ok := m.GetRoom(5)
	require.True(t, ok)
	assert.Equal(t, domain.UserID("teacher"), r.Room().Owner)
	assert.Equal(t, core.DefaultRouterCodecs(), r.Router().Codecs())
}

func TestRoomManager_CreateRoomOverwrites(t *testing.T) {
	m := newTestManager(t, 1)
	_, err := m.CreateRoom(context.Background(), "t1", 5, "first")
	require.NoError(t, err)
	first, _ := m.GetRoom(5)

	_, err = m.CreateRoom(context.Background(), "t2", 5, "second")
	require.NoError(t, err)
	second, _ := m.GetRoom(5)

	assert.Equal(t, domain.RoomTitle("second"), second.Room().Title)
	assert.True(t, first.Router().(*coretest.Router).Closed())
	assert.Len(t, m.List(), 1)
	assert.Equal(t, map[string]int{"w1": 1}, m.Pool().Loads())
}

func TestRoomManager_CreateRoomWorkerFailure(t *testing.T) {
	w := coretest.NewWorker("broken")
	w.RouterErr = errors.New("router boom")
	pool := &WorkerPool{workers: []core.Worker{w}, roomToWorker: map[domain.RoomID]string{}}
	m := NewRoomManager(pool, 0)

	_, err := m.CreateRoom(context.Background(), "t", 1, "x")
	assert.ErrorIs(t, err, core.ErrWorkerAcquisitionFailed)
	assert.False(t, m.RoomExists(1))

	empty := NewRoomManager(&WorkerPool{roomToWorker: map[domain.RoomID]string{}}, 0)
	_, err = empty.CreateRoom(context.Background(), "t", 1, "x")
	assert.ErrorIs(t, err, core.ErrWorkerAcquisitionFailed)
	assert.ErrorIs(t, err, core.ErrNoWorkersAvailable)
}

func TestRoomManager_TwoWorkersFourRooms(t *testing.T) {
	m := newTestManager(t, 2)
	for id := domain.RoomID(1); id <= 4; id++ {
		_, err := m.CreateRoom(context.Background(), "t", id, "c")
		require.NoError(t, err)
	}
	assert.Equal(t, map[string]int{"w1": 2, "w2": 2}, m.Pool().Loads())

	infos := m.List()
	require.Len(t, infos, 4)
	assert.Equal(t, domain.RoomID(1), infos[0].ID)
	assert.NotEmpty(t, infos[0].Worker)
}

func TestRoomManager_MembershipNoopsOnMissingRoom(t *testing.T) {
	m := newTestManager(t, 1)
	sig := &coretest.Signal{}
	assert.Nil(t, m.AddMember(9, core.NewMemberSession("a", sig), domain.Position{}))
	assert.False(t, m.RemoveMember(9, "a", nil))
	assert.False(t, m.MoveMember(9, "a", domain.Position{X: 1}))
	assert.Nil(t, m.Nearby(9, domain.Position{}, 50))
	res := m.Broadcast(context.Background(), 9, "", core.Frame("x"))
	assert.Zero(t, res.SendTo)
}

func TestRoomManager_RemoveThenAddKeepsCount(t *testing.T) {
	m := newTestManager(t, 1)
	_, err := m.CreateRoom(context.Background(), "t", 1, "c")
	require.NoError(t, err)
	m.AddMember(1, core.NewMemberSession("a", &coretest.Signal{}), domain.Position{})
	m.AddMember(1, core.NewMemberSession("b", &coretest.Signal{}), domain.Position{})
	r, _ := m.GetRoom(1)
	before := r.MemberCount()

	assert.True(t, m.RemoveMember(1, "a", nil))
	m.AddMember(1, core.NewMemberSession("a", &coretest.Signal{}), domain.Position{})
	assert.Equal(t, before, r.MemberCount())
}

func TestRoomManager_BroadcastSkipsSender(t *testing.T) {
	m := newTestManager(t, 1)
	_, err := m.CreateRoom(context.Background(), "t", 1, "c")
	require.NoError(t, err)
	sigs := map[domain.UserID]*coretest.Signal{"a": {}, "b": {}, "c": {}}
	for id, s := range sigs {
		m.AddMember(1, core.NewMemberSession(id, s), domain.Position{})
	}

	res := m.Broadcast(context.Background(), 1, "a", core.Frame(`{"type":"x"}`))
	assert.Equal(t, 2, res.SendTo)
	assert.Empty(t, sigs["a"].Frames())
	assert.Len(t, sigs["b"].Frames(), 1)
	assert.Len(t, sigs["c"].Frames(), 1)

	res = m.Broadcast(context.Background(), 1, "", core.Frame(`{"type":"y"}`))
	assert.Equal(t, 3, res.SendTo)
	assert.Len(t, sigs["a"].Frames(), 1)
}

func TestRoomManager_BroadcastSurvivesStalledMember(t *testing.T) {
	m := newTestManager(t, 1)
	_, err := m.CreateRoom(context.Background(), "t", 1, "c")
	require.NoError(t, err)
	stalled := &coretest.Signal{Block: true}
	closed := &coretest.Signal{}
	closed.Close()
	healthy := &coretest.Signal{}
	m.AddMember(1, core.NewMemberSession("stalled", stalled), domain.Position{})
	m.AddMember(1, core.NewMemberSession("closed", closed), domain.Position{})
	m.AddMember(1, core.NewMemberSession("healthy", healthy), domain.Position{})

	start := time.Now()
	res := m.Broadcast(context.Background(), 1, "", core.Frame("hello"))
	assert.Less(t, time.Since(start), time.Second)

	assert.Equal(t, 1, res.SendTo)
	assert.Len(t, res.Dropped, 2)
	assert.Len(t, healthy.Frames(), 1)
}

func TestRoomManager_BroadcastDoesNotHoldRoomLock(t *testing.T) {
	m := newTestManager(t, 1)
	_, err := m.CreateRoom(context.Background(), "t", 1, "c")
	require.NoError(t, err)
	m.AddMember(1, core.NewMemberSession("stalled", &coretest.Signal{Block: true}), domain.Position{})

	done := make(chan struct{})
	go func() {
		m.Broadcast(context.Background(), 1, "", core.Frame("x"))
		close(done)
	}()
	// membership changes proceed while the stalled delivery is pending
	m.AddMember(1, core.NewMemberSession("late", &coretest.Signal{}), domain.Position{})
	r, _ := m.GetRoom(1)
	assert.Equal(t, 2, r.MemberCount())
	<-done
}

func TestRoomManager_ConcurrentCreateBalances(t *testing.T) {
	pool, err := NewWorkerPool(context.Background(), &coretest.Engine{RouterDelay: 20 * time.Millisecond}, 2)
	require.NoError(t, err)
	m := NewRoomManager(pool, 0)

	var wg sync.WaitGroup
	for id := domain.RoomID(1); id <= 4; id++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.CreateRoom(context.Background(), "t", id, "c")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, map[string]int{"w1": 2, "w2": 2}, pool.Loads())
}

func TestRoomManager_FailedCreateReleasesReservation(t *testing.T) {
	good := coretest.NewWorker("good")
	broken := coretest.NewWorker("broken")
	broken.RouterErr = errors.New("router boom")
	pool := &WorkerPool{workers: []core.Worker{broken, good}, roomToWorker: map[domain.RoomID]string{}}
	m := NewRoomManager(pool, 0)

	_, err := m.CreateRoom(context.Background(), "t", 1, "x")
	require.ErrorIs(t, err, core.ErrWorkerAcquisitionFailed)
	assert.Equal(t, map[string]int{"broken": 0, "good": 0}, pool.Loads())
	_, ok := pool.WorkerOf(1)
	assert.False(t, ok)
}

func TestRoomManager_CreateRoomExclusive(t *testing.T) {
	m := newTestManager(t, 2)
	_, err := m.CreateRoomExclusive(context.Background(), "t1", 5, "first")
	require.NoError(t, err)
	first, _ := m.GetRoom(5)

	_, err = m.CreateRoomExclusive(context.Background(), "t2", 5, "second")
	assert.ErrorIs(t, err, core.ErrRoomExists)

	kept, _ := m.GetRoom(5)
	assert.Same(t, first, kept)
	assert.Equal(t, domain.UserID("t1"), kept.Room().Owner)
	assert.False(t, first.Router().(*coretest.Router).Closed())
	assert.Equal(t, map[string]int{"w1": 1, "w2": 0}, m.Pool().Loads())
}

func TestRoomManager_ExclusiveRaceCreatesOnce(t *testing.T) {
	pool, err := NewWorkerPool(context.Background(), &coretest.Engine{RouterDelay: 10 * time.Millisecond}, 2)
	require.NoError(t, err)
	m := NewRoomManager(pool, 0)

	var wg sync.WaitGroup
	var created, exists atomic.Int32
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.CreateRoomExclusive(context.Background(), "t", 9, "c")
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, core.ErrRoomExists):
				exists.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(3), exists.Load())
	assert.Len(t, m.List(), 1)
	total := 0
	for _, c := range pool.Loads() {
		total += c
	}
	assert.Equal(t, 1, total)
}
