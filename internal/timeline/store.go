package timeline

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidRange = errors.New("start time must be less than end time")
	ErrIndex        = errors.New("clip index out of range")
)

// Clip is a half-open interval [Start, End) in seconds.
type Clip struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (c Clip) Duration() float64 {
	return c.End - c.Start
}

// Overlaps reports whether the half-open intervals intersect. Touching
// endpoints do not count.
func (c Clip) Overlaps(other Clip) bool {
	return !(c.End <= other.Start || c.Start >= other.End)
}

func validateRange(start, end float64) error {
	if math.IsNaN(start) || math.IsNaN(end) || start < 0 {
		return fmt.Errorf("%w: got %v-%v", ErrInvalidRange, start, end)
	}
	if start >= end {
		return fmt.Errorf("%w: got %v-%v", ErrInvalidRange, start, end)
	}
	return nil
}

// Store is the ordered clip collection of one editing session. A clip's
// identity is its index; clips are never reordered or removed.
//
// Store is not safe for concurrent use. The owning session serializes access.
type Store struct {
	clips    []Clip
	selected int
	hasSel   bool
}

func NewStore() *Store {
	return &Store{}
}

// Add appends a clip and returns its index. The current selection is cleared.
func (s *Store) Add(start, end float64) (int, error) {
	if err := validateRange(start, end); err != nil {
		return 0, err
	}
	s.clips = append(s.clips, Clip{Start: start, End: end})
	s.ClearSelection()
	return len(s.clips) - 1, nil
}

// Update replaces the clip at index in place and clears the selection.
func (s *Store) Update(index int, start, end float64) error {
	if err := validateRange(start, end); err != nil {
		return err
	}
	if !s.valid(index) {
		return fmt.Errorf("%w: %d", ErrIndex, index)
	}
	s.clips[index] = Clip{Start: start, End: end}
	s.ClearSelection()
	return nil
}

// Select marks index as the clip being edited and returns its current range
// so the caller can pre-fill an edit form.
func (s *Store) Select(index int) (Clip, error) {
	if !s.valid(index) {
		return Clip{}, fmt.Errorf("%w: %d", ErrIndex, index)
	}
	s.selected = index
	s.hasSel = true
	return s.clips[index], nil
}

// Selection returns the selected index; ok is false in "add new clip" mode.
func (s *Store) Selection() (index int, ok bool) {
	return s.selected, s.hasSel
}

func (s *Store) ClearSelection() {
	s.selected = 0
	s.hasSel = false
}

// Overlaps reports whether the clip at index intersects any other clip. It is
// a query for display only and never blocks Add or Update.
func (s *Store) Overlaps(index int) bool {
	if !s.valid(index) {
		return false
	}
	c := s.clips[index]
	for j, other := range s.clips {
		if j != index && c.Overlaps(other) {
			return true
		}
	}
	return false
}

// OverlapFlags returns Overlaps(i) for every clip, in order.
func (s *Store) OverlapFlags() []bool {
	flags := make([]bool, len(s.clips))
	for i := range s.clips {
		flags[i] = s.Overlaps(i)
	}
	return flags
}

// SetBounds writes a clip's range without validating start < end. Callers
// (drag and resize) keep the invariant themselves. An unknown index is a
// no-op and reports false.
func (s *Store) SetBounds(index int, start, end float64) bool {
	if !s.valid(index) {
		return false
	}
	s.clips[index] = Clip{Start: start, End: end}
	return true
}

// Clip returns the clip at index.
func (s *Store) Clip(index int) (Clip, bool) {
	if !s.valid(index) {
		return Clip{}, false
	}
	return s.clips[index], true
}

// Clips returns a copy of the collection in display order.
func (s *Store) Clips() []Clip {
	out := make([]Clip, len(s.clips))
	copy(out, s.clips)
	return out
}

func (s *Store) Len() int {
	return len(s.clips)
}

func (s *Store) valid(index int) bool {
	return index >= 0 && index < len(s.clips)
}
