package audioview

import (
	"testing"

	"github.com/mgpai22/kaal/internal/timecode"
)

func TestNewShowsEverything(t *testing.T) {
	v := New(0, 10000)
	if v.ViewStart() != 0 || v.ViewEnd() != 10000 {
		t.Errorf("expected full window, got %d-%d", v.ViewStart(), v.ViewEnd())
	}
	if v.ZoomFactor() != 1 {
		t.Errorf("expected zoom factor 1, got %f", v.ZoomFactor())
	}

	swapped := New(500, 100)
	if swapped.Min() != 100 || swapped.Max() != 500 {
		t.Errorf("expected swapped bounds, got %d-%d", swapped.Min(), swapped.Max())
	}
}

func TestZoomAroundCentre(t *testing.T) {
	v := New(0, 10000)
	v.ZoomBy(0.5, 0.5)

	if v.ViewStart() != 2500 || v.ViewEnd() != 7500 {
		t.Errorf("expected 2500-7500, got %d-%d", v.ViewStart(), v.ViewEnd())
	}

	v.ZoomBy(2, 0.5)
	if v.ViewStart() != 0 || v.ViewEnd() != 10000 {
		t.Errorf("expected full window after zooming out, got %d-%d", v.ViewStart(), v.ViewEnd())
	}
}

func TestZoomAnchors(t *testing.T) {
	tests := []struct {
		anchor    float64
		wantStart int64
	}{
		{0, 0},
		{1, 8000},
		{0.25, 2000},
	}
	for _, tt := range tests {
		v := New(0, 10000)
		v.Zoom(0.2, tt.anchor)
		if v.ViewStart() != tt.wantStart || v.ViewSize() != 2000 {
			t.Errorf("Zoom(0.2, %.2f) = %d-%d, want start %d size 2000",
				tt.anchor, v.ViewStart(), v.ViewEnd(), tt.wantStart)
		}
	}
}

func TestZoomClampsFactor(t *testing.T) {
	v := New(0, 10000)
	v.Zoom(0, 0.5)
	if v.ViewSize() != 10 {
		t.Errorf("expected minimum window of 10ms, got %d", v.ViewSize())
	}

	v.Zoom(50, 0.5)
	if v.ViewSize() != 10000 {
		t.Errorf("expected factor to clamp at 1, got size %d", v.ViewSize())
	}
}

func TestZoomEmptyMedia(t *testing.T) {
	v := New(100, 100)
	v.Zoom(0.5, 0.5)
	if v.ViewStart() != 100 || v.ViewEnd() != 100 {
		t.Errorf("zooming empty media should be a no-op, got %d-%d", v.ViewStart(), v.ViewEnd())
	}
}

func TestScrollStaysInBounds(t *testing.T) {
	v := New(0, 10000)
	v.Zoom(0.1, 0)

	v.Scroll(500)
	if v.ViewStart() != 500 || v.ViewEnd() != 1500 {
		t.Errorf("expected 500-1500, got %d-%d", v.ViewStart(), v.ViewEnd())
	}

	v.Scroll(100000)
	if v.ViewStart() != 9000 || v.ViewEnd() != 10000 {
		t.Errorf("expected clamp to end, got %d-%d", v.ViewStart(), v.ViewEnd())
	}

	v.Scroll(-100000)
	if v.ViewStart() != 0 || v.ViewEnd() != 1000 {
		t.Errorf("expected clamp to start, got %d-%d", v.ViewStart(), v.ViewEnd())
	}
}

func TestSelectSnapsToFrames(t *testing.T) {
	table, err := timecode.NewTable([]int64{0, 40, 80, 120})
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	v := FromTable(table)
	if v.Max() != 120 {
		t.Errorf("expected max 120, got %d", v.Max())
	}

	v.Select(95, 30, table)
	start, end, ok := v.Selection()
	if !ok || start != 40 || end != 80 {
		t.Errorf("expected selection 40-80, got %d-%d (ok=%v)", start, end, ok)
	}

	v.ClearSelection()
	if _, _, ok := v.Selection(); ok {
		t.Error("expected selection to be cleared")
	}
}

func TestSelectWithoutTimecodes(t *testing.T) {
	v := New(0, 1000)
	v.Select(13, 27, nil)
	start, end, ok := v.Selection()
	if !ok || start != 13 || end != 27 {
		t.Errorf("expected unaligned selection 13-27, got %d-%d", start, end)
	}
}
