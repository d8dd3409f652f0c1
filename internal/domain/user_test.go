package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserID(t *testing.T) {
	id, err := NewUserID("  5GrwvaEF  ")
	require.NoError(t, err)
	assert.Equal(t, UserID("5GrwvaEF"), id)

	_, err = NewUserID("   ")
	assert.ErrorIs(t, err, ErrUserIDEmpty)

	long := make([]byte, MaxUserIDLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = NewUserID(string(long))
	assert.ErrorIs(t, err, ErrUserIDTooLong)
}

func TestPosition_IsStep(t *testing.T) {
	origin := Position{}
	cases := []struct {
		to   Position
		want bool
	}{
		{Position{X: 1}, true},
		{Position{X: -1}, true},
		{Position{Y: 1}, true},
		{Position{Y: -1}, true},
		{Position{}, false},
		{Position{X: 1, Y: 1}, false},
		{Position{X: 2}, false},
		{Position{X: 5, Y: 5}, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, origin.IsStep(c.to), "move to %+v", c.to)
	}
}

func TestPosition_ManhattanNoOverflow(t *testing.T) {
	a := Position{X: math.MinInt32, Y: math.MinInt32}
	b := Position{X: math.MaxInt32, Y: math.MaxInt32}
	assert.Equal(t, int64(2*(int64(math.MaxInt32)-int64(math.MinInt32))), a.Manhattan(b))
	assert.False(t, a.IsStep(b))
}
