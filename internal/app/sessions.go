package app

import (
	"context"
	"sync"

	"github.com/dkeye/Classroom/internal/core"
	"github.com/rs/zerolog/log"
)

// Sessions tracks live connections so they can be cancelled together.
type Sessions struct {
	mu      sync.RWMutex
	cancels map[core.SessionID]context.CancelFunc
}

func NewSessions() *Sessions {
	return &Sessions{cancels: make(map[core.SessionID]context.CancelFunc)}
}

func (s *Sessions) Bind(sid core.SessionID, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.cancels[sid]; ok && old != nil {
		old()
	}
	s.cancels[sid] = cancel
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Msg("bound session")
}

func (s *Sessions) Unbind(sid core.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cancels, sid)
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Msg("unbind session")
}

func (s *Sessions) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cancels)
}

func (s *Sessions) Cancel(sid core.SessionID) bool {
	s.mu.RLock()
	cancel, ok := s.cancels[sid]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if cancel != nil {
		cancel()
	}
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Msg("canceled session")
	return true
}

// CancelAll stops every live session, used on shutdown.
func (s *Sessions) CancelAll() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cancel := range s.cancels {
		if cancel != nil {
			cancel()
		}
	}
}
