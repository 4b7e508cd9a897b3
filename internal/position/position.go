// Package position parses seek target descriptors such as "+500ms", "-2f",
// "1:23.456", "ss+3f" or "ve-1s" and resolves them against a session.
//
// An expression is a sequence of terms joined by + and -. When it starts with
// a sign it is relative to the origin (usually the playback position);
// otherwise it is absolute. Frame terms ("Nf") step through the timecode
// table from the running value instead of adding a fixed duration.
package position

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mgpai22/kaal/internal/playback"
	"github.com/mgpai22/kaal/internal/timecode"
)

var (
	ErrNoTimecodes = errors.New("position needs timecodes but none are loaded")
	ErrNoSelection = errors.New("position refers to the selected subtitle but nothing is selected")
	ErrOutOfRange  = errors.New("position out of range")
)

// what an expression is resolved against; *playback.Session implements it
type Env interface {
	Timecodes() *timecode.Table
	Selection() (playback.Span, bool)
}

type termKind int

const (
	termMillis termKind = iota
	termFrames
	termOrigin
	termCurFrame
	termPrevFrame
	termNextFrame
	termVideoStart
	termVideoEnd
	termSubStart
	termSubEnd
)

var keywords = map[string]termKind{
	"c":  termOrigin,
	"cf": termCurFrame,
	"pf": termPrevFrame,
	"nf": termNextFrame,
	"vs": termVideoStart,
	"ve": termVideoEnd,
	"ss": termSubStart,
	"se": termSubEnd,
}

type term struct {
	sign int64
	kind termKind
	n    int64
	text string
}

// parsed position descriptor
type Expr struct {
	src      string
	relative bool
	terms    []term
}

func (e Expr) String() string {
	return e.src
}

// true when the expression starts with a sign and so depends on the origin
func (e Expr) Relative() bool {
	return e.relative
}

func Parse(s string) (Expr, error) {
	src := strings.Join(strings.Fields(s), "")
	if src == "" {
		return Expr{}, fmt.Errorf("empty position")
	}

	expr := Expr{src: src}
	rest := src
	sign := int64(1)

	if rest[0] == '+' || rest[0] == '-' {
		expr.relative = true
		expr.terms = append(expr.terms, term{sign: 1, kind: termOrigin, text: "c"})
	} else {
		rest = "+" + rest
	}

	for rest != "" {
		switch rest[0] {
		case '+':
			sign = 1
		case '-':
			sign = -1
		default:
			return Expr{}, fmt.Errorf("invalid position %q: expected + or - before %q", src, rest)
		}
		rest = rest[1:]

		end := strings.IndexAny(rest, "+-")
		if end < 0 {
			end = len(rest)
		}
		text := rest[:end]
		rest = rest[end:]

		t, err := parseTerm(text)
		if err != nil {
			return Expr{}, fmt.Errorf("invalid position %q: %w", src, err)
		}
		t.sign = sign
		expr.terms = append(expr.terms, t)
	}

	return expr, nil
}

func parseTerm(text string) (term, error) {
	if text == "" {
		return term{}, fmt.Errorf("missing term")
	}
	if kind, ok := keywords[strings.ToLower(text)]; ok {
		return term{kind: kind, text: text}, nil
	}

	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, ":"):
		ms, err := parseTimestamp(lower)
		if err != nil {
			return term{}, err
		}
		return term{kind: termMillis, n: ms, text: text}, nil
	case strings.HasSuffix(lower, "ms"):
		ms, err := parseScaled(strings.TrimSuffix(lower, "ms"), 1)
		if err != nil {
			return term{}, err
		}
		return term{kind: termMillis, n: ms, text: text}, nil
	case strings.HasSuffix(lower, "f"):
		n, err := strconv.ParseInt(strings.TrimSuffix(lower, "f"), 10, 64)
		if err != nil || n < 0 {
			return term{}, fmt.Errorf("invalid frame count %q", text)
		}
		return term{kind: termFrames, n: n, text: text}, nil
	case strings.HasSuffix(lower, "s"):
		ms, err := parseScaled(strings.TrimSuffix(lower, "s"), 1000)
		if err != nil {
			return term{}, err
		}
		return term{kind: termMillis, n: ms, text: text}, nil
	default:
		ms, err := parseScaled(lower, 1)
		if err != nil {
			return term{}, err
		}
		return term{kind: termMillis, n: ms, text: text}, nil
	}
}

// parses a non-negative decimal number and multiplies it by unit, truncating
// to whole milliseconds. Only digits and one decimal point are accepted.
func parseScaled(num string, unit int64) (int64, error) {
	if !isDecimal(num) {
		return 0, fmt.Errorf("invalid number %q", num)
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", num)
	}
	scaled := v * float64(unit)
	// float64(math.MaxInt64) rounds up to 2^63, which no longer fits
	if math.IsNaN(scaled) || math.IsInf(scaled, 0) || scaled < 0 || scaled >= float64(math.MaxInt64) {
		return 0, fmt.Errorf("invalid number %q: %w", num, ErrOutOfRange)
	}
	return int64(scaled), nil
}

func isDecimal(s string) bool {
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// a + b, or ErrOutOfRange when the sum overflows int64
func addMillis(a, b int64) (int64, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, ErrOutOfRange
	}
	return sum, nil
}

// parses [[H:]M:]S[.fff]
func parseTimestamp(s string) (int64, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}

	secPart := parts[len(parts)-1]
	whole, frac, _ := strings.Cut(secPart, ".")
	seconds, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	if seconds > (math.MaxInt64-999)/1000 {
		return 0, fmt.Errorf("invalid timestamp %q: %w", s, ErrOutOfRange)
	}

	var millis int64
	if frac != "" {
		if len(frac) > 3 {
			frac = frac[:3]
		}
		frac += strings.Repeat("0", 3-len(frac))
		millis, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q", s)
		}
	}

	total := seconds*1000 + millis
	scale := int64(60 * 1000)
	for i := len(parts) - 2; i >= 0; i-- {
		v, err := strconv.ParseInt(parts[i], 10, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid timestamp %q", s)
		}
		if v > (math.MaxInt64-total)/scale {
			return 0, fmt.Errorf("invalid timestamp %q: %w", s, ErrOutOfRange)
		}
		total += v * scale
		scale *= 60
	}
	return total, nil
}

// Resolve evaluates the expression. origin is the value of "c" and the base
// of relative expressions.
func (e Expr) Resolve(env Env, origin int64) (int64, error) {
	var value int64
	for i, t := range e.terms {
		if t.kind == termFrames {
			table := env.Timecodes()
			if table.Empty() {
				return 0, ErrNoTimecodes
			}
			if i == 0 {
				// leading frame term of an absolute expression is a frame number
				idx := int(t.n)
				if idx >= table.Len() {
					idx = table.Len() - 1
				}
				value = table.At(idx)
				continue
			}
			value = table.StepFrames(value, int(t.sign*t.n))
			continue
		}

		v, err := t.value(env, origin)
		if err != nil {
			return 0, err
		}
		if value, err = addMillis(value, t.sign*v); err != nil {
			return 0, fmt.Errorf("%q: %w", e.src, err)
		}
	}
	return value, nil
}

// ResolveAligned resolves the expression and snaps the result with mode
func (e Expr) ResolveAligned(env Env, origin int64, mode timecode.Mode) (int64, error) {
	v, err := e.Resolve(env, origin)
	if err != nil {
		return 0, err
	}
	return env.Timecodes().Align(mode, v), nil
}

func (t term) value(env Env, origin int64) (int64, error) {
	switch t.kind {
	case termMillis:
		return t.n, nil
	case termOrigin:
		return origin, nil
	case termSubStart, termSubEnd:
		span, ok := env.Selection()
		if !ok {
			return 0, ErrNoSelection
		}
		if t.kind == termSubStart {
			return span.Start, nil
		}
		return span.End, nil
	}

	table := env.Timecodes()
	if table.Empty() {
		return 0, ErrNoTimecodes
	}
	switch t.kind {
	case termCurFrame:
		return table.StepFrames(origin, 0), nil
	case termPrevFrame:
		return table.StepFrames(origin, -1), nil
	case termNextFrame:
		return table.StepFrames(origin, 1), nil
	case termVideoStart:
		return table.First(), nil
	case termVideoEnd:
		return table.Last(), nil
	default:
		return 0, fmt.Errorf("unhandled position term %q", t.text)
	}
}
