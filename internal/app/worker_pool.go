package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/dkeye/Classroom/internal/core"
	"github.com/dkeye/Classroom/internal/domain"
	"github.com/rs/zerolog/log"
)

// WorkerPool is a fixed set of media workers. The load of a worker is the
// number of rooms mapped to it, recomputed on every query.
type WorkerPool struct {
	mu           sync.Mutex
	workers      []core.Worker
	roomToWorker map[domain.RoomID]string
	// reservations holds the token of the latest Acquire per room.
	reservations map[domain.RoomID]uint64
	seq          uint64
}

// NewWorkerPool provisions n workers. It fails only when none could be created.
func NewWorkerPool(ctx context.Context, engine core.MediaEngine, n int) (*WorkerPool, error) {
	p := &WorkerPool{
		roomToWorker: make(map[domain.RoomID]string),
		reservations: make(map[domain.RoomID]uint64),
	}
	for i := 0; i < n; i++ {
		w, err := engine.CreateWorker(ctx)
		if err != nil {
			log.Error().Err(err).Str("module", "app.pool").Int("index", i).Msg("create worker")
			continue
		}
		p.workers = append(p.workers, w)
	}
	if len(p.workers) == 0 {
		return nil, fmt.Errorf("create %d workers: %w", n, core.ErrNoWorkersAvailable)
	}
	log.Info().Str("module", "app.pool").Int("workers", len(p.workers)).Msg("worker pool ready")
	return p, nil
}

func (p *WorkerPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

// LeastLoaded returns the first worker with the fewest assigned rooms.
func (p *WorkerPool) LeastLoaded() (core.Worker, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.leastLoadedLocked()
}

func (p *WorkerPool) leastLoadedLocked() (core.Worker, error) {
	if len(p.workers) == 0 {
		return nil, core.ErrNoWorkersAvailable
	}
	counts := p.countsLocked()
	best := p.workers[0]
	for _, w := range p.workers[1:] {
		if counts[w.ID()] < counts[best.ID()] {
			best = w
		}
	}
	return best, nil
}

func (p *WorkerPool) countsLocked() map[string]int {
	counts := make(map[string]int, len(p.workers))
	for _, wid := range p.roomToWorker {
		counts[wid]++
	}
	return counts
}

// Acquire picks the least loaded worker and records room on it under one
// lock, so concurrent creations see each other's reservations. An earlier
// mapping of room does not count against its worker. release restores the
// previous mapping unless a later Acquire of room superseded this one.
func (p *WorkerPool) Acquire(room domain.RoomID) (w core.Worker, release func(), err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev, hadPrev := p.roomToWorker[room]
	delete(p.roomToWorker, room)
	w, err = p.leastLoadedLocked()
	if err != nil {
		if hadPrev {
			p.roomToWorker[room] = prev
		}
		return nil, nil, err
	}
	p.roomToWorker[room] = w.ID()
	if p.reservations == nil {
		p.reservations = make(map[domain.RoomID]uint64)
	}
	p.seq++
	token := p.seq
	p.reservations[room] = token

	release = func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.reservations[room] != token {
			return
		}
		delete(p.reservations, room)
		if hadPrev {
			p.roomToWorker[room] = prev
		} else {
			delete(p.roomToWorker, room)
		}
	}
	return w, release, nil
}

// Assign records that room now lives on worker.
func (p *WorkerPool) Assign(room domain.RoomID, w core.Worker) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.roomToWorker[room] = w.ID()
}

func (p *WorkerPool) WorkerOf(room domain.RoomID) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	wid, ok := p.roomToWorker[room]
	return wid, ok
}

// Loads returns worker id -> assigned room count, including idle workers.
func (p *WorkerPool) Loads() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	counts := p.countsLocked()
	out := make(map[string]int, len(p.workers))
	for _, w := range p.workers {
		out[w.ID()] = counts[w.ID()]
	}
	return out
}

// Close shuts every worker down.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, w := range p.workers {
		if err := w.Close(); err != nil {
			log.Error().Err(err).Str("module", "app.pool").Str("worker", w.ID()).Msg("close worker")
		}
	}
}
