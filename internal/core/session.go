package core

import (
	"github.com/dkeye/Classroom/internal/domain"
)

// DefaultAudioRange is the proximity radius, in canvas units, a new session hears within.
const DefaultAudioRange int32 = 50

// MediaHandles are the media engine resources a session owns.
type MediaHandles struct {
	Transport Transport
	Producers map[string]domain.StreamKind
	Consumers map[string]string // consumer id -> producer id
}

// SessionState is the mutable state of one live connection.
// It is owned by the connection's read loop and never shared.
type SessionState struct {
	ID         SessionID
	Position   domain.Position
	AudioRange int32
	Media      MediaHandles

	identity domain.UserID
	roomID   domain.RoomID
	inRoom   bool
	signal   SignalConnection
}

func NewSessionState(sid SessionID) *SessionState {
	return &SessionState{
		ID:         sid,
		AudioRange: DefaultAudioRange,
		Media: MediaHandles{
			Producers: make(map[string]domain.StreamKind),
			Consumers: make(map[string]string),
		},
	}
}

func (s *SessionState) Identity() (domain.UserID, bool) {
	return s.identity, s.identity != ""
}

// SetIdentity records id unless an identity is already set.
// It returns the identity in effect afterwards.
func (s *SessionState) SetIdentity(id domain.UserID) domain.UserID {
	if s.identity == "" {
		s.identity = id
	}
	return s.identity
}

func (s *SessionState) Room() (domain.RoomID, bool) {
	return s.roomID, s.inRoom
}

// EnterRoom records the room and the connection the session joined it with.
func (s *SessionState) EnterRoom(id domain.RoomID, pos domain.Position, signal SignalConnection) {
	s.roomID = id
	s.inRoom = true
	s.Position = pos
	s.signal = signal
}

func (s *SessionState) ExitRoom() {
	s.roomID = 0
	s.inRoom = false
	s.signal = nil
}

// Signal is the connection the session is a room member through.
func (s *SessionState) Signal() SignalConnection {
	return s.signal
}

// Joined reports whether the session has both an identity and a room.
func (s *SessionState) Joined() bool {
	return s.inRoom && s.identity != ""
}

// ReleaseMedia closes every media handle the session holds.
func (s *SessionState) ReleaseMedia() error {
	var err error
	if s.Media.Transport != nil {
		err = s.Media.Transport.Close()
		s.Media.Transport = nil
	}
	clear(s.Media.Producers)
	clear(s.Media.Consumers)
	return err
}
