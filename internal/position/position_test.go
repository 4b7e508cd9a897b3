package position

import (
	"errors"
	"testing"

	"github.com/mgpai22/kaal/internal/playback"
	"github.com/mgpai22/kaal/internal/timecode"
)

type testEnv struct {
	table     *timecode.Table
	selection *playback.Span
}

func (e testEnv) Timecodes() *timecode.Table {
	return e.table
}

func (e testEnv) Selection() (playback.Span, bool) {
	if e.selection == nil {
		return playback.Span{}, false
	}
	return *e.selection, true
}

func newEnv(t *testing.T) testEnv {
	t.Helper()
	table, err := timecode.NewTable([]int64{0, 40, 80, 120, 160, 200})
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	return testEnv{table: table, selection: &playback.Span{Start: 80, End: 160}}
}

func TestResolve(t *testing.T) {
	env := newEnv(t)
	const origin = 100

	tests := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"1500", 1500},
		{"250ms", 250},
		{"1.5s", 1500},
		{"1:02.5", 62500},
		{"1:00:00", 3600000},
		{"0:01.2345", 1234},
		{"c", 100},
		{"+500ms", 600},
		{"-40", 60},
		{"+1f", 120},
		{"-1f", 40},
		{"+2f", 160},
		{"-10f", 0},
		{"+99f", 200},
		{"cf", 80},
		{"pf", 40},
		{"nf", 120},
		{"vs", 0},
		{"ve", 200},
		{"ve-1f", 160},
		{"ss", 80},
		{"se", 160},
		{"ss+1f", 120},
		{"se - 10ms", 150},
		{"3f", 120},
		{"99f", 200},
		{"3f+1f", 160},
		{"c+1s-250ms", 850},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			expr, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.in, err)
			}
			got, err := expr.Resolve(env, origin)
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{
		"",
		"   ",
		"abc",
		"+",
		"1++2",
		"1:2:3:4",
		"1:xx",
		"-1.5f",
		"1e3",
		"xf",
		"nan",
		"inf",
		"infs",
		"nanms",
		"+infs",
		"0x10",
		"1_000",
		"1.2.3",
		"9999999999999999999",
		"9999999999999999s",
		"99999999999999999:00",
	} {
		t.Run(in, func(t *testing.T) {
			if _, err := Parse(in); err == nil {
				t.Errorf("expected error for %q", in)
			}
		})
	}
}

func TestParseRejectsOverflow(t *testing.T) {
	for _, in := range []string{"9999999999999999999", "+9999999999999999s", "99999999999999999:00"} {
		if _, err := Parse(in); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Parse(%q) error = %v, want ErrOutOfRange", in, err)
		}
	}
}

func TestResolveRejectsOverflow(t *testing.T) {
	env := newEnv(t)
	tests := []struct {
		in     string
		origin int64
	}{
		{"9000000000000000000+9000000000000000000", 0},
		{"+9000000000000000000", 1_000_000_000_000_000_000},
		{"-9000000000000000000", -1_000_000_000_000_000_000},
	}
	for _, tt := range tests {
		expr, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tt.in, err)
		}
		if got, err := expr.Resolve(env, tt.origin); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Resolve(%q, %d) = %d, %v, want ErrOutOfRange", tt.in, tt.origin, got, err)
		}
	}
}

func TestRelative(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"+1f", true},
		{"-500ms", true},
		{"1:00", false},
		{"c+1f", false},
	}
	for _, tt := range tests {
		expr, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tt.in, err)
		}
		if expr.Relative() != tt.want {
			t.Errorf("Parse(%q).Relative() = %v, want %v", tt.in, expr.Relative(), tt.want)
		}
	}
}

func TestResolveWithoutTimecodes(t *testing.T) {
	env := testEnv{}
	for _, in := range []string{"+1f", "cf", "vs", "ve", "2f"} {
		expr, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", in, err)
		}
		if _, err := expr.Resolve(env, 0); !errors.Is(err, ErrNoTimecodes) {
			t.Errorf("Resolve(%q) error = %v, want ErrNoTimecodes", in, err)
		}
	}

	// plain durations need no timecodes
	expr, _ := Parse("+250ms")
	if got, err := expr.Resolve(env, 50); err != nil || got != 300 {
		t.Errorf("Resolve(+250ms) = %d, %v", got, err)
	}
}

func TestResolveWithoutSelection(t *testing.T) {
	env := newEnv(t)
	env.selection = nil
	expr, _ := Parse("ss")
	if _, err := expr.Resolve(env, 0); !errors.Is(err, ErrNoSelection) {
		t.Errorf("expected ErrNoSelection, got %v", err)
	}
}

func TestResolveAligned(t *testing.T) {
	env := newEnv(t)
	expr, _ := Parse("+15ms")

	tests := []struct {
		mode timecode.Mode
		want int64
	}{
		{timecode.ModeNear, 120},
		{timecode.ModePrev, 80},
		{timecode.ModeNext, 120},
	}
	for _, tt := range tests {
		got, err := expr.ResolveAligned(env, 100, tt.mode)
		if err != nil {
			t.Fatalf("ResolveAligned failed: %v", err)
		}
		if got != tt.want {
			t.Errorf("ResolveAligned(%s) = %d, want %d", tt.mode, got, tt.want)
		}
	}
}
