package subtitle

import (
	"testing"

	"github.com/mgpai22/kaal/internal/timecode"
)

func mustTable(t *testing.T, values ...int64) *timecode.Table {
	t.Helper()
	table, err := timecode.NewTable(values)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	return table
}

func TestTrackInsertKeepsOrder(t *testing.T) {
	track := NewTrack()
	for _, e := range []Entry{
		{Start: 2000, End: 3000, Text: "second"},
		{Start: 0, End: 1000, Text: "first"},
		{Start: 5000, End: 6000, Text: "third"},
	} {
		if _, err := track.Insert(e.Start, e.End, e.Text); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	entries := track.Entries()
	want := []string{"first", "second", "third"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, text := range want {
		if entries[i].Text != text {
			t.Errorf("entry %d: expected %q, got %q", i, text, entries[i].Text)
		}
		if entries[i].Index != i {
			t.Errorf("entry %d: expected index %d, got %d", i, i, entries[i].Index)
		}
	}
}

func TestTrackInsertRejectsInvertedSpan(t *testing.T) {
	if _, err := NewTrack().Insert(100, 50, "bad"); err == nil {
		t.Error("expected error for end before start")
	}
}

func TestTrackGetOutOfRange(t *testing.T) {
	track := NewTrack()
	if _, err := track.Get(0); err == nil {
		t.Error("expected error for empty track")
	}
	_, _ = track.Insert(0, 10, "x")
	if _, err := track.Get(1); err == nil {
		t.Error("expected error for index past end")
	}
	if _, err := track.Get(-1); err == nil {
		t.Error("expected error for negative index")
	}
}

func TestTrackSetReorders(t *testing.T) {
	track := NewTrack()
	_, _ = track.Insert(0, 100, "a")
	_, _ = track.Insert(200, 300, "b")

	idx, err := track.Set(0, Entry{Start: 400, End: 500, Text: "a"})
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if idx != 1 {
		t.Errorf("expected new index 1, got %d", idx)
	}
	entries := track.Entries()
	if entries[0].Text != "b" || entries[1].Text != "a" {
		t.Errorf("expected reorder, got %+v", entries)
	}
	if entries[1].Index != 1 {
		t.Errorf("expected reindex, got %d", entries[1].Index)
	}
}

func TestTrackSetRejectsInvertedSpan(t *testing.T) {
	track := NewTrack()
	_, _ = track.Insert(0, 100, "a")
	if _, err := track.Set(0, Entry{Start: 50, End: 10}); err == nil {
		t.Error("expected error for end before start")
	}
	if _, err := track.Set(3, Entry{Start: 0, End: 10}); err == nil {
		t.Error("expected error for out of range index")
	}
}

func TestSnapSpan(t *testing.T) {
	table := mustTable(t, 0, 10, 20, 30)
	tests := []struct {
		in   Entry
		want Entry
	}{
		{Entry{Start: 4, End: 16}, Entry{Start: 0, End: 20}},
		{Entry{Start: 5, End: 15}, Entry{Start: 0, End: 10}},
		{Entry{Start: -100, End: 1000}, Entry{Start: 0, End: 30}},
		{Entry{Start: 11, End: 12}, Entry{Start: 10, End: 10}},
	}
	for _, tt := range tests {
		got := SnapSpan(tt.in, table)
		if got.Start != tt.want.Start || got.End != tt.want.End {
			t.Errorf("SnapSpan(%d-%d) = %d-%d, want %d-%d",
				tt.in.Start, tt.in.End, got.Start, got.End, tt.want.Start, tt.want.End)
		}
	}
}

func TestShiftFrames(t *testing.T) {
	table := mustTable(t, 0, 10, 20, 30, 40)
	tests := []struct {
		in   Entry
		n    int
		want Entry
	}{
		{Entry{Start: 10, End: 30}, 1, Entry{Start: 20, End: 40}},
		{Entry{Start: 10, End: 30}, -1, Entry{Start: 0, End: 20}},
		{Entry{Start: 12, End: 28}, 1, Entry{Start: 20, End: 40}},
		{Entry{Start: 10, End: 30}, 5, Entry{Start: 40, End: 40}},
		{Entry{Start: 10, End: 30}, -5, Entry{Start: 0, End: 0}},
	}
	for _, tt := range tests {
		got := ShiftFrames(tt.in, table, tt.n)
		if got.Start != tt.want.Start || got.End != tt.want.End {
			t.Errorf("ShiftFrames(%d-%d, %d) = %d-%d, want %d-%d",
				tt.in.Start, tt.in.End, tt.n, got.Start, got.End, tt.want.Start, tt.want.End)
		}
	}
}

func TestSetStartAndEnd(t *testing.T) {
	table := mustTable(t, 0, 10, 20, 30)
	e := Entry{Start: 10, End: 20}

	got := SetStart(e, table, 25, timecode.ModeNext)
	if got.Start != 30 || got.End != 30 {
		t.Errorf("SetStart pushed end incorrectly: %+v", got)
	}

	got = SetEnd(e, table, 3, timecode.ModePrev)
	if got.End != 0 || got.Start != 0 {
		t.Errorf("SetEnd pulled start incorrectly: %+v", got)
	}

	got = SetEnd(e, table, 21, timecode.ModeNext)
	if got.End != 30 || got.Start != 10 {
		t.Errorf("SetEnd next-frame: %+v", got)
	}
}
