package metadata

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// PositionSet is a deduplicated set of dataset positions backed by a
// 32-bit Roaring Bitmap.
//
// Adding the same position twice is a no-op, so callers may add freely and
// rely on the set for idempotent removal.
type PositionSet struct {
	rb *roaring.Bitmap
}

// NewPositionSet creates a new empty position set.
func NewPositionSet(positions ...int) *PositionSet {
	s := &PositionSet{rb: roaring.New()}
	for _, p := range positions {
		s.Add(p)
	}
	return s
}

// Add adds a position. Negative positions are ignored.
func (s *PositionSet) Add(pos int) {
	if pos < 0 {
		return
	}
	s.rb.Add(uint32(pos))
}

// Contains reports whether pos is in the set.
func (s *PositionSet) Contains(pos int) bool {
	if pos < 0 {
		return false
	}
	return s.rb.Contains(uint32(pos))
}

// Len returns the number of distinct positions.
func (s *PositionSet) Len() int {
	return int(s.rb.GetCardinality())
}

// IsEmpty returns true if the set is empty.
func (s *PositionSet) IsEmpty() bool {
	return s.rb.IsEmpty()
}

// Clone returns a deep copy of the set.
func (s *PositionSet) Clone() *PositionSet {
	return &PositionSet{rb: s.rb.Clone()}
}

// Ascending iterates positions from lowest to highest.
func (s *PositionSet) Ascending() iter.Seq[int] {
	return func(yield func(int) bool) {
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(int(it.Next())) {
				return
			}
		}
	}
}

// Descending iterates positions from highest to lowest.
func (s *PositionSet) Descending() iter.Seq[int] {
	return func(yield func(int) bool) {
		it := s.rb.ReverseIterator()
		for it.HasNext() {
			if !yield(int(it.Next())) {
				return
			}
		}
	}
}

// ToSlice returns the positions in ascending order.
func (s *PositionSet) ToSlice() []int {
	out := make([]int, 0, s.Len())
	for p := range s.Ascending() {
		out = append(out, p)
	}
	return out
}
