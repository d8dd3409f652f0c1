package domain

import "strconv"

type (
	RoomID    uint32
	RoomTitle string
)

func (id RoomID) String() string { return strconv.FormatUint(uint64(id), 10) }

// Room is the course a teacher registered on the ledger.
type Room struct {
	ID    RoomID
	Owner UserID
	Title RoomTitle
}
