package subtitle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var writerEntries = []Entry{
	{Start: 0, End: 1500, Text: "Hello"},
	{Start: 3_723_042, End: 3_725_999, Text: "two\nlines"},
}

func TestWriteSRT(t *testing.T) {
	var sb strings.Builder
	if err := Write(&sb, writerEntries, FormatSRT); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:01,500\nHello\n\n" +
		"2\n01:02:03,042 --> 01:02:05,999\ntwo\nlines\n\n"
	if sb.String() != want {
		t.Errorf("unexpected SRT output:\n%s", sb.String())
	}
}

func TestWriteVTT(t *testing.T) {
	var sb strings.Builder
	if err := Write(&sb, writerEntries[:1], FormatVTT); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	want := "WEBVTT\n\n1\n00:00:00.000 --> 00:00:01.500\nHello\n\n"
	if sb.String() != want {
		t.Errorf("unexpected VTT output:\n%s", sb.String())
	}
}

func TestWriteASS(t *testing.T) {
	var sb strings.Builder
	if err := Write(&sb, writerEntries, FormatASS); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := sb.String()
	if !strings.HasPrefix(out, "[Script Info]\n") {
		t.Error("missing script info header")
	}
	if !strings.Contains(out, "Dialogue: 0,1:02:03.04,1:02:05.99,Default,,0,0,0,,two\\Nlines\n") {
		t.Errorf("missing escaped dialogue line:\n%s", out)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	var sb strings.Builder
	if err := Write(&sb, writerEntries, Format("sub")); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.srt", FormatSRT},
		{"a.VTT", FormatVTT},
		{"a.ass", FormatASS},
		{"a.ssa", FormatASS},
		{"a.txt", FormatSRT},
		{"noext", FormatSRT},
	}
	for _, tt := range tests {
		if got := FormatFromPath(tt.path); got != tt.want {
			t.Errorf("FormatFromPath(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "subs.vtt")
	if err := WriteFile(path, writerEntries); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.HasPrefix(string(data), "WEBVTT") {
		t.Errorf("expected VTT output, got %q", string(data)[:10])
	}
}
