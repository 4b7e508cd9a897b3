package timecode

import (
	"errors"
	"fmt"
	"sort"
)

var ErrNotMonotonic = errors.New("timecodes must be non-decreasing")

// Table is an immutable snapshot of frame start times in milliseconds.
//
// A nil *Table is valid and behaves like an empty one. Tables are never
// mutated after construction; loading a new video produces a new Table.
type Table struct {
	values []int64
}

// copies values into a new table, rejecting decreasing input
func NewTable(values []int64) (*Table, error) {
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			return nil, fmt.Errorf(
				"%w: frame %d at %dms follows %dms",
				ErrNotMonotonic,
				i,
				values[i],
				values[i-1],
			)
		}
	}

	cp := make([]int64, len(values))
	copy(cp, values)
	return &Table{values: cp}, nil
}

// sorts values before building the table
func NewSortedTable(values []int64) *Table {
	cp := make([]int64, len(values))
	copy(cp, values)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	return &Table{values: cp}
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.values)
}

func (t *Table) Empty() bool {
	return t.Len() == 0
}

// first frame boundary, or EmptyFallback
func (t *Table) First() int64 {
	if t.Empty() {
		return EmptyFallback
	}
	return t.values[0]
}

// last frame boundary, or EmptyFallback
func (t *Table) Last() int64 {
	if t.Empty() {
		return EmptyFallback
	}
	return t.values[len(t.values)-1]
}

func (t *Table) At(i int) int64 {
	return t.values[i]
}

// returns a copy of the underlying timecodes
func (t *Table) Values() []int64 {
	if t == nil {
		return nil
	}
	cp := make([]int64, len(t.values))
	copy(cp, t.values)
	return cp
}

func (t *Table) view() []int64 {
	if t == nil {
		return nil
	}
	return t.values
}

func (t *Table) AlignPrev(origin int64) int64 {
	return AlignToPrevFrame(t.view(), origin)
}

func (t *Table) AlignNext(origin int64) int64 {
	return AlignToNextFrame(t.view(), origin)
}

func (t *Table) AlignNear(origin int64) int64 {
	return AlignToNearFrame(t.view(), origin)
}

func (t *Table) Align(mode Mode, origin int64) int64 {
	return Align(mode, t.view(), origin)
}

// FrameIndex returns the index of the frame displayed at pts. Positions before
// the first frame map to 0, past the last to the last index. With duplicate
// boundaries the last frame starting at that boundary wins. Returns -1 when
// the table is empty.
func (t *Table) FrameIndex(pts int64) int {
	n := t.Len()
	if n == 0 {
		return -1
	}
	idx := sort.Search(n, func(i int) bool { return t.values[i] > pts }) - 1
	if idx < 0 {
		return 0
	}
	return idx
}

// StepFrames moves n frames (negative for backwards) from the frame displayed
// at pts and returns that frame's start, clamped to the table.
func (t *Table) StepFrames(pts int64, n int) int64 {
	idx := t.FrameIndex(pts)
	if idx < 0 {
		return EmptyFallback
	}

	// skip over duplicate boundaries so each step lands on a distinct time
	for n > 0 && idx < t.Len()-1 {
		cur := t.values[idx]
		idx++
		for idx < t.Len()-1 && t.values[idx] == cur {
			idx++
		}
		if t.values[idx] != cur {
			n--
		}
	}
	for n < 0 && idx > 0 {
		cur := t.values[idx]
		idx--
		for idx > 0 && t.values[idx] == cur {
			idx--
		}
		if t.values[idx] != cur {
			n++
		}
	}
	return t.values[idx]
}
