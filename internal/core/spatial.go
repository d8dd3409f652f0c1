package core

import "github.com/dkeye/Classroom/internal/domain"

// CellSize is the edge of one spatial grid bucket in canvas units.
const CellSize int32 = 10

const maxWindowCells = 1024

type Cell struct {
	X, Y int32
}

// CellOf returns the grid bucket containing pos. Negative coordinates
// round toward minus infinity so that every bucket has the same size.
func CellOf(pos domain.Position) Cell {
	return Cell{X: floorDiv(pos.X, CellSize), Y: floorDiv(pos.Y, CellSize)}
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// SpatialIndex buckets identities by grid cell.
// Not safe for concurrent use; the owning room guards it.
type SpatialIndex struct {
	cells map[Cell]map[domain.UserID]struct{}
	where map[domain.UserID]Cell
}

func NewSpatialIndex() *SpatialIndex {
	return &SpatialIndex{
		cells: make(map[Cell]map[domain.UserID]struct{}),
		where: make(map[domain.UserID]Cell),
	}
}

func (s *SpatialIndex) Len() int { return len(s.where) }

func (s *SpatialIndex) Insert(id domain.UserID, pos domain.Position) {
	s.Remove(id)
	c := CellOf(pos)
	bucket, ok := s.cells[c]
	if !ok {
		bucket = make(map[domain.UserID]struct{})
		s.cells[c] = bucket
	}
	bucket[id] = struct{}{}
	s.where[id] = c
}

func (s *SpatialIndex) Remove(id domain.UserID) {
	c, ok := s.where[id]
	if !ok {
		return
	}
	delete(s.where, id)
	if bucket, ok := s.cells[c]; ok {
		delete(bucket, id)
		if len(bucket) == 0 {
			delete(s.cells, c)
		}
	}
}

// Move relocates id from the cell of oldPos to the cell of newPos.
func (s *SpatialIndex) Move(id domain.UserID, oldPos, newPos domain.Position) {
	from, to := CellOf(oldPos), CellOf(newPos)
	if cur, ok := s.where[id]; ok && cur == to {
		return
	}
	if cur, ok := s.where[id]; !ok || cur != from {
		// the caller's view of oldPos is stale; trust the index
		s.Insert(id, newPos)
		return
	}
	s.Remove(id)
	s.Insert(id, newPos)
}

func (s *SpatialIndex) CellOf(id domain.UserID) (Cell, bool) {
	c, ok := s.where[id]
	return c, ok
}

// NeighborsWithin returns every identity whose cell is at most rangeCells
// away from the cell of pos, measured per axis.
func (s *SpatialIndex) NeighborsWithin(pos domain.Position, rangeCells int32) []domain.UserID {
	if rangeCells < 0 {
		return nil
	}
	center := CellOf(pos)
	side := 2*int64(rangeCells) + 1
	out := make([]domain.UserID, 0)

	// few occupied cells compared to the window: scan occupied cells instead
	if rangeCells > maxWindowCells || side*side > int64(len(s.cells)) {
		for c, bucket := range s.cells {
			if within(center, c, rangeCells) {
				for id := range bucket {
					out = append(out, id)
				}
			}
		}
		return out
	}
	for dx := -rangeCells; dx <= rangeCells; dx++ {
		for dy := -rangeCells; dy <= rangeCells; dy++ {
			for id := range s.cells[Cell{X: center.X + dx, Y: center.Y + dy}] {
				out = append(out, id)
			}
		}
	}
	return out
}

func within(a, b Cell, r int32) bool {
	dx := int64(a.X) - int64(b.X)
	dy := int64(a.Y) - int64(b.Y)
	return dx >= -int64(r) && dx <= int64(r) && dy >= -int64(r) && dy <= int64(r)
}

// RangeCells converts a radius in canvas units to a radius in cells.
func RangeCells(units int32) int32 {
	if units <= 0 {
		return 0
	}
	return (units + CellSize - 1) / CellSize
}
