package core

import (
	"testing"

	"github.com/dkeye/Classroom/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTransport struct{ closed int }

func (t *countingTransport) ID() string   { return "t1" }
func (t *countingTransport) Close() error { t.closed++; return nil }

func TestSessionState_IdentityIsSticky(t *testing.T) {
	s := NewSessionState("sid")
	_, ok := s.Identity()
	assert.False(t, ok)

	assert.Equal(t, domain.UserID("alice"), s.SetIdentity("alice"))
	assert.Equal(t, domain.UserID("alice"), s.SetIdentity("mallory"))
	id, ok := s.Identity()
	require.True(t, ok)
	assert.Equal(t, domain.UserID("alice"), id)
}

func TestSessionState_RoomLifecycle(t *testing.T) {
	s := NewSessionState("sid")
	assert.Equal(t, DefaultAudioRange, s.AudioRange)
	assert.False(t, s.Joined())

	s.EnterRoom(5, domain.Position{X: 3, Y: 4}, nopSignal{})
	assert.False(t, s.Joined(), "no identity yet")
	assert.Equal(t, nopSignal{}, s.Signal())
	s.SetIdentity("alice")
	assert.True(t, s.Joined())
	room, ok := s.Room()
	assert.True(t, ok)
	assert.Equal(t, domain.RoomID(5), room)

	s.ExitRoom()
	assert.False(t, s.Joined())
	assert.Nil(t, s.Signal())
}

func TestSessionState_ReleaseMedia(t *testing.T) {
	s := NewSessionState("sid")
	tr := &countingTransport{}
	s.Media.Transport = tr
	s.Media.Producers["p1"] = domain.StreamAudio
	s.Media.Consumers["c1"] = "p9"

	require.NoError(t, s.ReleaseMedia())
	require.NoError(t, s.ReleaseMedia())
	assert.Equal(t, 1, tr.closed)
	assert.Nil(t, s.Media.Transport)
	assert.Empty(t, s.Media.Producers)
	assert.Empty(t, s.Media.Consumers)
}
