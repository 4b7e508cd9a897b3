package timecode

import (
	"fmt"
	"sort"
	"strings"
)

// value every policy returns when there are no frames to align to
const EmptyFallback int64 = 0

// rounding policy used when snapping a PTS to a frame boundary
type Mode int

const (
	ModeNear Mode = iota
	ModePrev
	ModeNext
)

func (m Mode) String() string {
	switch m {
	case ModePrev:
		return "prev"
	case ModeNext:
		return "next"
	case ModeNear:
		return "near"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// parses prev, next or near (case-insensitive)
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prev", "previous":
		return ModePrev, nil
	case "next":
		return ModeNext, nil
	case "near", "nearest":
		return ModeNear, nil
	default:
		return ModeNear, fmt.Errorf("unknown alignment mode %q: use prev, next, or near", s)
	}
}

// AlignToPrevFrame returns the greatest timecode <= origin. Origins below the
// first frame pass through unchanged; origins past the last frame clamp to it.
func AlignToPrevFrame(timecodes []int64, origin int64) int64 {
	n := len(timecodes)
	if n == 0 {
		return EmptyFallback
	}
	if origin < timecodes[0] {
		return origin
	}
	if origin >= timecodes[n-1] {
		return timecodes[n-1]
	}
	// first index whose value is > origin, its predecessor is the answer
	idx := sort.Search(n, func(i int) bool { return timecodes[i] > origin })
	return timecodes[idx-1]
}

// AlignToNextFrame returns the smallest timecode >= origin. Origins before the
// first frame clamp to it; origins past the last frame pass through unchanged.
func AlignToNextFrame(timecodes []int64, origin int64) int64 {
	n := len(timecodes)
	if n == 0 {
		return EmptyFallback
	}
	if origin <= timecodes[0] {
		return timecodes[0]
	}
	if origin > timecodes[n-1] {
		return origin
	}
	idx := sort.Search(n, func(i int) bool { return timecodes[i] >= origin })
	return timecodes[idx]
}

// AlignToNearFrame returns whichever neighbouring boundary is closer to origin,
// clamped to the table on both ends. Ties go to the lower boundary.
func AlignToNearFrame(timecodes []int64, origin int64) int64 {
	n := len(timecodes)
	if n == 0 {
		return EmptyFallback
	}
	if origin <= timecodes[0] {
		return timecodes[0]
	}
	if origin >= timecodes[n-1] {
		return timecodes[n-1]
	}

	idx := sort.Search(n, func(i int) bool { return timecodes[i] >= origin })
	next := timecodes[idx]
	if next == origin {
		return next
	}
	prev := timecodes[idx-1]
	if origin-prev <= next-origin {
		return prev
	}
	return next
}

// dispatches to the policy selected by mode
func Align(mode Mode, timecodes []int64, origin int64) int64 {
	switch mode {
	case ModePrev:
		return AlignToPrevFrame(timecodes, origin)
	case ModeNext:
		return AlignToNextFrame(timecodes, origin)
	default:
		return AlignToNearFrame(timecodes, origin)
	}
}
