package subtitle

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mgpai22/kaal/internal/timecode"
)

// represents single subtitle entry, times in milliseconds
type Entry struct {
	Index int    `json:"index"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
	Text  string `json:"text"`
}

func (e Entry) Duration() int64 {
	return e.End - e.Start
}

// in-memory subtitle track kept ordered by start time
type Track struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewTrack() *Track {
	return &Track{}
}

// adds an entry and returns its index after reordering
func (t *Track) Insert(start, end int64, text string) (int, error) {
	if end < start {
		return -1, fmt.Errorf("end %dms is before start %dms", end, start)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	pos := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].Start > start
	})
	t.entries = append(t.entries, Entry{})
	copy(t.entries[pos+1:], t.entries[pos:])
	t.entries[pos] = Entry{Start: start, End: end, Text: text}
	t.reindex()
	return pos, nil
}

func (t *Track) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

func (t *Track) Get(index int) (Entry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if err := t.checkIndex(index); err != nil {
		return Entry{}, err
	}
	return t.entries[index], nil
}

// replaces the entry at index, keeping the track ordered. Returns the
// entry's index after reordering.
func (t *Track) Set(index int, e Entry) (int, error) {
	if e.End < e.Start {
		return -1, fmt.Errorf("end %dms is before start %dms", e.End, e.Start)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkIndex(index); err != nil {
		return -1, err
	}

	// mark the moved entry so it can be found after sorting
	e.Index = -1
	t.entries[index] = e
	sort.SliceStable(t.entries, func(i, j int) bool {
		return t.entries[i].Start < t.entries[j].Start
	})

	pos := -1
	for i := range t.entries {
		if t.entries[i].Index == -1 {
			pos = i
			break
		}
	}
	t.reindex()
	return pos, nil
}

// copy of all entries
func (t *Track) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Track) checkIndex(index int) error {
	if index < 0 || index >= len(t.entries) {
		return fmt.Errorf(
			"index %d out of range (0-%d)",
			index,
			len(t.entries)-1,
		)
	}
	return nil
}

func (t *Track) reindex() {
	for i := range t.entries {
		t.entries[i].Index = i
	}
}

// SnapSpan moves both boundaries of e to their nearest frames. The end is
// never placed before the start.
func SnapSpan(e Entry, table *timecode.Table) Entry {
	e.Start = table.AlignNear(e.Start)
	e.End = table.AlignNear(e.End)
	if e.End < e.Start {
		e.End = e.Start
	}
	return e
}

// ShiftFrames moves both boundaries of e by n frames, keeping them on frame
// boundaries.
func ShiftFrames(e Entry, table *timecode.Table, n int) Entry {
	e.Start = table.StepFrames(table.AlignNear(e.Start), n)
	e.End = table.StepFrames(table.AlignNear(e.End), n)
	if e.End < e.Start {
		e.End = e.Start
	}
	return e
}

// SetStart aligns pts with mode and uses it as the new start, pushing the end
// out if needed.
func SetStart(e Entry, table *timecode.Table, pts int64, mode timecode.Mode) Entry {
	e.Start = table.Align(mode, pts)
	if e.End < e.Start {
		e.End = e.Start
	}
	return e
}

// SetEnd aligns pts with mode and uses it as the new end, pulling the start
// in if needed.
func SetEnd(e Entry, table *timecode.Table, pts int64, mode timecode.Mode) Entry {
	e.End = table.Align(mode, pts)
	if e.Start > e.End {
		e.Start = e.End
	}
	return e
}
