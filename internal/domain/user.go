// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
)

const MaxUserIDLen = 130

var (
	ErrUserIDEmpty   = errors.New("user id empty")
	ErrUserIDTooLong = errors.New("user id too long")
)

// UserID is the public address a student signed in with.
type UserID string

// NewUserID is a tiny helper to avoid ad-hoc conversions in adapters.
func NewUserID(pubAddress string) (UserID, error) {
	pubAddress = strings.TrimSpace(pubAddress)
	if len(pubAddress) == 0 {
		return "", ErrUserIDEmpty
	}
	if len(pubAddress) > MaxUserIDLen {
		return "", ErrUserIDTooLong
	}
	return UserID(pubAddress), nil
}

// Position is a cell on the classroom canvas.
type Position struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// Manhattan returns |dx|+|dy| without overflowing int32.
func (p Position) Manhattan(q Position) int64 {
	return abs64(int64(p.X)-int64(q.X)) + abs64(int64(p.Y)-int64(q.Y))
}

// IsStep reports whether q is exactly one unit away from p along one axis.
func (p Position) IsStep(q Position) bool {
	return p.Manhattan(q) == 1
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
