package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/kaal/internal/timecode"
	"github.com/mgpai22/kaal/internal/video"
)

const timecodesSuffix = ".timecodes.txt"

// static timecode source for one-shot commands
type tableSource struct {
	table *timecode.Table
}

func (s tableSource) Timecodes() *timecode.Table {
	return s.table
}

// default v2 output next to the video: movie.mkv -> movie.timecodes.txt
func defaultTimecodesPath(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + timecodesSuffix
}

// loads timecodes from a v2 file when given, otherwise probes the video
func loadTable(ctx context.Context, timecodesPath, videoPath string) (*timecode.Table, error) {
	switch {
	case timecodesPath != "":
		return timecode.LoadFile(timecodesPath)
	case videoPath != "":
		processor := video.NewProcessor(cfg.Timecodes.ProbeTimeout.Duration)
		return processor.GetTimecodes(ctx, videoPath)
	default:
		return nil, fmt.Errorf("either --timecodes or --video is required")
	}
}

// trims raw and reports whether it holds a command; blanks and # comments don't
func scriptLine(raw string) (string, bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", false
	}
	return line, true
}

func readScript(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line, ok := scriptLine(scanner.Text()); ok {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return lines, nil
}

func readScriptFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()
	return readScript(f)
}

// opens the --output destination, falling back to stdout
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}
