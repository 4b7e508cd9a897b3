package subtitle

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// output subtitle format
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "srt":
		return FormatSRT, nil
	case "vtt":
		return FormatVTT, nil
	case "ass", "ssa":
		return FormatASS, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use srt, vtt, or ass", s)
	}
}

// subtitle format based on file extension, SRT when unknown
func FormatFromPath(path string) Format {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return FormatSRT
	}
	return f
}

// renders entries in format. Negative times are written as zero.
func Write(w io.Writer, entries []Entry, format Format) error {
	var sb strings.Builder

	switch format {
	case FormatSRT:
		for i, e := range entries {
			// index (1-based)
			fmt.Fprintf(&sb, "%d\n", i+1)
			fmt.Fprintf(&sb, "%s --> %s\n", formatClock(e.Start, ','), formatClock(e.End, ','))
			sb.WriteString(e.Text)
			sb.WriteString("\n\n")
		}
	case FormatVTT:
		sb.WriteString("WEBVTT\n\n")
		for i, e := range entries {
			fmt.Fprintf(&sb, "%d\n", i+1)
			fmt.Fprintf(&sb, "%s --> %s\n", formatClock(e.Start, '.'), formatClock(e.End, '.'))
			sb.WriteString(e.Text)
			sb.WriteString("\n\n")
		}
	case FormatASS:
		writeASSHeader(&sb)
		for _, e := range entries {
			fmt.Fprintf(&sb, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
				formatASSTime(e.Start),
				formatASSTime(e.End),
				escapeASSText(e.Text))
		}
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// writes the entries to path in the format its extension names
func WriteFile(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create subtitle directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create subtitle file: %w", err)
	}
	if err := Write(f, entries, FormatFromPath(path)); err != nil {
		f.Close()
		return fmt.Errorf("failed to write subtitles: %w", err)
	}
	return f.Close()
}

func writeASSHeader(sb *strings.Builder) {
	sb.WriteString("[Script Info]\n")
	sb.WriteString("Title: Kaal Subtitles\n")
	sb.WriteString("ScriptType: v4.00+\n")
	sb.WriteString("Collisions: Normal\n")
	sb.WriteString("PlayDepth: 0\n\n")

	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	sb.WriteString("Style: Default,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1\n\n")

	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
}

// HH:MM:SS<sep>mmm
func formatClock(ms int64, sep byte) string {
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d%c%03d",
		ms/3_600_000, ms/60_000%60, ms/1000%60, sep, ms%1000)
}

// H:MM:SS.cc, centiseconds truncated
func formatASSTime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("%d:%02d:%02d.%02d",
		ms/3_600_000, ms/60_000%60, ms/1000%60, ms%1000/10)
}

func escapeASSText(text string) string {
	return strings.ReplaceAll(text, "\n", "\\N")
}
