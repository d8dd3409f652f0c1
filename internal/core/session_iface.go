package core

import "github.com/dkeye/Classroom/internal/domain"

type SessionID string

// MemberSession binds identity and its transport endpoint.
// This is what a room stores and fans out to.
type MemberSession interface {
	Identity() domain.UserID
	Signal() SignalConnection
}

type memberSession struct {
	id     domain.UserID
	signal SignalConnection
}

func NewMemberSession(id domain.UserID, signal SignalConnection) MemberSession {
	return &memberSession{id: id, signal: signal}
}

func (m *memberSession) Identity() domain.UserID  { return m.id }
func (m *memberSession) Signal() SignalConnection { return m.signal }
