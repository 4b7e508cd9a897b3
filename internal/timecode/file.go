package timecode

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const v2Header = "# timecode format v2"

// ReadV2 parses a Matroska "timecode format v2" file: a header line followed
// by one frame start time in milliseconds per line. Fractional times are
// floored to the millisecond.
func ReadV2(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)

	var values []int64
	lineNum := 0
	sawHeader := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if !sawHeader {
			if line == "" {
				continue
			}
			if !strings.EqualFold(line, v2Header) {
				return nil, fmt.Errorf(
					"line %d: expected %q header, got %q",
					lineNum,
					v2Header,
					line,
				)
			}
			sawHeader = true
			continue
		}

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		ms, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid timecode %q: %w", lineNum, line, err)
		}
		ms = math.Floor(ms)
		// float64(math.MaxInt64) rounds up to 2^63, which no longer fits
		if math.IsNaN(ms) || ms < math.MinInt64 || ms >= math.MaxInt64 {
			return nil, fmt.Errorf("line %d: timecode %q out of range", lineNum, line)
		}
		values = append(values, int64(ms))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading timecodes: %w", err)
	}
	if !sawHeader {
		return nil, fmt.Errorf("missing %q header", v2Header)
	}

	return NewTable(values)
}

// writes t in timecode format v2
func WriteV2(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, v2Header); err != nil {
		return err
	}
	for _, v := range t.view() {
		if _, err := fmt.Fprintln(bw, v); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// reads a v2 timecode file from disk
func LoadFile(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open timecode file: %w", err)
	}
	defer file.Close()

	t, err := ReadV2(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return t, nil
}

// writes a v2 timecode file, creating parent directories
func SaveFile(path string, t *Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create timecode file: %w", err)
	}

	if err := WriteV2(file, t); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write timecode file: %w", err)
	}
	return file.Close()
}
