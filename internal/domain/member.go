package domain

// Member represents user's presence meta for a room.
// No transport or lifecycle logic here.
type Member struct {
	UserID      UserID   `json:"user_id"`
	Coordinates Position `json:"coordinates"`
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(id UserID, pos Position) Member {
	return Member{UserID: id, Coordinates: pos}
}
