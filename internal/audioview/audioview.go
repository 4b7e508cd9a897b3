package audioview

import (
	"math"

	"github.com/mgpai22/kaal/internal/timecode"
)

const (
	minZoomFactor = 0.001
	minViewSize   = 1
)

// View tracks the visible window and selection of the spectrogram, in
// milliseconds, inside the media bounds [Min, Max].
type View struct {
	min, max           int64
	viewStart, viewEnd int64

	selStart, selEnd int64
	hasSelection     bool
}

// a view showing the whole of [min, max]
func New(min, max int64) *View {
	if max < min {
		min, max = max, min
	}
	return &View{min: min, max: max, viewStart: min, viewEnd: max}
}

// covers the whole timecode range of table
func FromTable(table *timecode.Table) *View {
	return New(table.First(), table.Last())
}

func (v *View) Min() int64       { return v.min }
func (v *View) Max() int64       { return v.max }
func (v *View) Size() int64      { return v.max - v.min }
func (v *View) ViewStart() int64 { return v.viewStart }
func (v *View) ViewEnd() int64   { return v.viewEnd }
func (v *View) ViewSize() int64  { return v.viewEnd - v.viewStart }

// fraction of the media currently visible, 1 when fully zoomed out
func (v *View) ZoomFactor() float64 {
	if v.Size() == 0 {
		return 1
	}
	return float64(v.ViewSize()) / float64(v.Size())
}

// Zoom shows factor of the whole media. anchor (0..1) is the point inside
// the current window that stays put, 0.5 zooms around the centre.
func (v *View) Zoom(factor, anchor float64) {
	if v.Size() == 0 {
		return
	}
	factor = clampFloat(factor, minZoomFactor, 1)
	anchor = clampFloat(anchor, 0, 1)

	oldSize := float64(v.ViewSize())
	newSize := math.Max(float64(minViewSize), math.Round(float64(v.Size())*factor))

	start := float64(v.viewStart) + (oldSize-newSize)*anchor
	v.viewStart = int64(math.Round(start))
	v.viewEnd = v.viewStart + int64(newSize)
	v.clip()
}

// multiplies the current zoom factor by delta; delta < 1 zooms in
func (v *View) ZoomBy(delta, anchor float64) {
	v.Zoom(v.ZoomFactor()*delta, anchor)
}

// moves the window by delta milliseconds without resizing it
func (v *View) Scroll(delta int64) {
	v.viewStart += delta
	v.viewEnd += delta
	v.clip()
}

// Select snaps start and end to their nearest frames and stores them as the
// selection. Reversed bounds are swapped.
func (v *View) Select(start, end int64, table *timecode.Table) {
	if end < start {
		start, end = end, start
	}
	if !table.Empty() {
		start = table.AlignNear(start)
		end = table.AlignNear(end)
	}
	v.selStart, v.selEnd = start, end
	v.hasSelection = true
}

func (v *View) ClearSelection() {
	v.selStart, v.selEnd = 0, 0
	v.hasSelection = false
}

func (v *View) Selection() (start, end int64, ok bool) {
	return v.selStart, v.selEnd, v.hasSelection
}

// keeps the window inside the media, shifting before shrinking
func (v *View) clip() {
	size := v.ViewSize()
	if size > v.Size() {
		size = v.Size()
	}
	if v.viewStart < v.min {
		v.viewStart = v.min
	}
	if v.viewStart+size > v.max {
		v.viewStart = v.max - size
	}
	v.viewEnd = v.viewStart + size
}

func clampFloat(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return hi
	}
	return math.Max(lo, math.Min(hi, x))
}
