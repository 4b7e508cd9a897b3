package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/mgpai22/kaal/internal/playback"
	"github.com/mgpai22/kaal/internal/position"
	"github.com/mgpai22/kaal/internal/subtitle"
	"github.com/mgpai22/kaal/internal/timecode"
)

// registry with every built-in command
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, spec := range Builtins() {
		if err := r.Register(spec); err != nil {
			panic(err)
		}
	}
	return r
}

func Builtins() []*Spec {
	return []*Spec{
		seekSpec,
		playPauseSpec,
		subInsertSpec,
		subSelectSpec,
		subSetSpec,
		subSnapSpec,
		subShiftSpec,
		audioZoomSpec,
		audioScrollSpec,
		audioSelectSpec,
	}
}

func resolve(env *Env, desc string) (int64, error) {
	if desc == "" {
		return 0, fmt.Errorf("missing position")
	}
	expr, err := position.Parse(desc)
	if err != nil {
		return 0, err
	}
	return expr.Resolve(env.Session(), env.Session().Position())
}

func resolveAligned(env *Env, desc string, mode timecode.Mode) (int64, error) {
	pts, err := resolve(env, desc)
	if err != nil {
		return 0, err
	}
	return env.Session().Timecodes().Align(mode, pts), nil
}

func ready(env *Env) bool {
	return env.Playback != nil && env.Playback.IsReady()
}

// selected subtitle index, checked against the track
func selectedEntry(env *Env) (int, subtitle.Entry, error) {
	idx := env.Session().SelectedIndex()
	if idx < 0 {
		return -1, subtitle.Entry{}, fmt.Errorf("no subtitle selected")
	}
	e, err := env.Subtitles.Get(idx)
	if err != nil {
		return -1, subtitle.Entry{}, err
	}
	return idx, e, nil
}

// stores e at idx and keeps the session selection pointing at it
func updateEntry(env *Env, idx int, e subtitle.Entry) error {
	newIdx, err := env.Subtitles.Set(idx, e)
	if err != nil {
		return err
	}
	env.Session().Select(newIdx, playback.Span{Start: e.Start, End: e.End})
	return nil
}

type seekCommand struct {
	pos     *string
	precise *bool
	pause   *bool
	unpause *bool
}

var seekSpec = &Spec{
	Names: []string{"seek"},
	Help:  "Changes the video playback position to desired place.",
	New: func(fs *pflag.FlagSet) Command {
		return &seekCommand{
			pos:     fs.StringP("pos", "p", "", "where to seek"),
			precise: fs.Bool("precise", false, "whether to use precise seeking at the expense of performance"),
			pause:   fs.BoolP("pause", "P", false, "pause after seeking"),
			unpause: fs.BoolP("unpause", "U", false, "unpause after seeking"),
		}
	},
}

func (c *seekCommand) Enabled(env *Env) bool {
	return ready(env)
}

func (c *seekCommand) Run(ctx context.Context, env *Env) error {
	if *c.pause && *c.unpause {
		return fmt.Errorf("--pause and --unpause are mutually exclusive")
	}

	pts, err := resolve(env, *c.pos)
	if err != nil {
		return err
	}

	precise := *c.precise || env.PreciseSeek
	if _, err := env.Playback.Seek(ctx, pts, precise, env.SeekMode); err != nil {
		return err
	}

	switch {
	case *c.pause:
		return env.Playback.SetPaused(ctx, true)
	case *c.unpause:
		return env.Playback.SetPaused(ctx, false)
	}
	return nil
}

type playPauseCommand struct{}

var playPauseSpec = &Spec{
	Names: []string{"play-pause"},
	Help:  "Toggles playback.",
	New: func(fs *pflag.FlagSet) Command {
		return playPauseCommand{}
	},
}

func (playPauseCommand) Enabled(env *Env) bool {
	return ready(env)
}

func (playPauseCommand) Run(ctx context.Context, env *Env) error {
	return env.Playback.TogglePause(ctx)
}

type subInsertCommand struct {
	start *string
	end   *string
	text  *string
}

var subInsertSpec = &Spec{
	Names: []string{"sub-insert"},
	Help:  "Inserts a subtitle spanning the given positions and selects it.",
	New: func(fs *pflag.FlagSet) Command {
		return &subInsertCommand{
			start: fs.StringP("start", "s", "cf", "start position"),
			end:   fs.StringP("end", "e", "", "end position (required)"),
			text:  fs.StringP("text", "t", "", "subtitle text"),
		}
	},
}

func (c *subInsertCommand) Enabled(env *Env) bool {
	return ready(env) && env.Subtitles != nil
}

func (c *subInsertCommand) Run(ctx context.Context, env *Env) error {
	start, err := resolveAligned(env, *c.start, timecode.ModeNear)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	end, err := resolveAligned(env, *c.end, timecode.ModeNear)
	if err != nil {
		return fmt.Errorf("end: %w", err)
	}

	idx, err := env.Subtitles.Insert(start, end, *c.text)
	if err != nil {
		return err
	}
	env.Session().Select(idx, playback.Span{Start: start, End: end})
	return nil
}

type subSelectCommand struct {
	fs *pflag.FlagSet
}

var subSelectSpec = &Spec{
	Names: []string{"sub-select"},
	Help:  "Selects the subtitle at the given index.",
	New: func(fs *pflag.FlagSet) Command {
		return &subSelectCommand{fs: fs}
	},
}

func (c *subSelectCommand) Enabled(env *Env) bool {
	return env.Subtitles != nil && env.Subtitles.Len() > 0
}

func (c *subSelectCommand) Run(ctx context.Context, env *Env) error {
	if c.fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one index, got %d", c.fs.NArg())
	}
	idx, err := strconv.Atoi(c.fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid index %q: %w", c.fs.Arg(0), err)
	}
	e, err := env.Subtitles.Get(idx)
	if err != nil {
		return err
	}
	env.Session().Select(idx, playback.Span{Start: e.Start, End: e.End})
	return nil
}

type subSetCommand struct {
	start *string
	end   *string
}

var subSetSpec = &Spec{
	Names: []string{"sub-set"},
	Help:  "Moves the start and/or end of the selected subtitle. Starts snap to the previous frame, ends to the next.",
	New: func(fs *pflag.FlagSet) Command {
		return &subSetCommand{
			start: fs.StringP("start", "s", "", "new start position"),
			end:   fs.StringP("end", "e", "", "new end position"),
		}
	},
}

func (c *subSetCommand) Enabled(env *Env) bool {
	return ready(env) && env.Subtitles != nil && env.Session().SelectedIndex() >= 0
}

func (c *subSetCommand) Run(ctx context.Context, env *Env) error {
	if *c.start == "" && *c.end == "" {
		return fmt.Errorf("nothing to set: pass --start and/or --end")
	}
	idx, e, err := selectedEntry(env)
	if err != nil {
		return err
	}

	table := env.Session().Timecodes()
	if *c.start != "" {
		pts, err := resolve(env, *c.start)
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}
		e = subtitle.SetStart(e, table, pts, timecode.ModePrev)
	}
	if *c.end != "" {
		pts, err := resolve(env, *c.end)
		if err != nil {
			return fmt.Errorf("end: %w", err)
		}
		e = subtitle.SetEnd(e, table, pts, timecode.ModeNext)
	}
	return updateEntry(env, idx, e)
}

type subSnapCommand struct{}

var subSnapSpec = &Spec{
	Names: []string{"sub-snap"},
	Help:  "Snaps the selected subtitle to the nearest video frames.",
	New: func(fs *pflag.FlagSet) Command {
		return subSnapCommand{}
	},
}

func (subSnapCommand) Enabled(env *Env) bool {
	return ready(env) && env.Subtitles != nil && env.Session().SelectedIndex() >= 0
}

func (subSnapCommand) Run(ctx context.Context, env *Env) error {
	idx, e, err := selectedEntry(env)
	if err != nil {
		return err
	}
	return updateEntry(env, idx, subtitle.SnapSpan(e, env.Session().Timecodes()))
}

type subShiftCommand struct {
	frames *int
}

var subShiftSpec = &Spec{
	Names: []string{"sub-shift"},
	Help:  "Shifts the selected subtitle by whole frames.",
	New: func(fs *pflag.FlagSet) Command {
		return &subShiftCommand{
			frames: fs.IntP("frames", "f", 1, "number of frames, negative to move backwards"),
		}
	},
}

func (c *subShiftCommand) Enabled(env *Env) bool {
	return ready(env) && env.Subtitles != nil && env.Session().SelectedIndex() >= 0
}

func (c *subShiftCommand) Run(ctx context.Context, env *Env) error {
	idx, e, err := selectedEntry(env)
	if err != nil {
		return err
	}
	return updateEntry(env, idx, subtitle.ShiftFrames(e, env.Session().Timecodes(), *c.frames))
}

type audioZoomCommand struct {
	delta *float64
}

var audioZoomSpec = &Spec{
	Names: []string{"audio-zoom", "spectrogram-zoom"},
	Help:  "Zooms the spectrogram in or out by the specified factor.",
	New: func(fs *pflag.FlagSet) Command {
		return &audioZoomCommand{
			delta: fs.Float64P("delta", "d", 0, "factor to zoom the view by"),
		}
	},
}

func (c *audioZoomCommand) Enabled(env *Env) bool {
	return env.Audio != nil
}

func (c *audioZoomCommand) Run(ctx context.Context, env *Env) error {
	if *c.delta <= 0 {
		return fmt.Errorf("zoom factor must be positive, got %g", *c.delta)
	}
	env.Audio.ZoomBy(*c.delta, 0.5)
	return nil
}

type audioScrollCommand struct {
	delta *int64
}

var audioScrollSpec = &Spec{
	Names: []string{"audio-scroll", "spectrogram-scroll"},
	Help:  "Scrolls the spectrogram by the given number of milliseconds.",
	New: func(fs *pflag.FlagSet) Command {
		return &audioScrollCommand{
			delta: fs.Int64P("delta", "d", 0, "distance in milliseconds, negative to scroll back"),
		}
	},
}

func (c *audioScrollCommand) Enabled(env *Env) bool {
	return env.Audio != nil
}

func (c *audioScrollCommand) Run(ctx context.Context, env *Env) error {
	env.Audio.Scroll(*c.delta)
	return nil
}

type audioSelectCommand struct {
	start *string
	end   *string
}

var audioSelectSpec = &Spec{
	Names: []string{"audio-select", "spectrogram-select"},
	Help:  "Selects a spectrogram range, snapped to the nearest frames.",
	New: func(fs *pflag.FlagSet) Command {
		return &audioSelectCommand{
			start: fs.StringP("start", "s", "", "selection start"),
			end:   fs.StringP("end", "e", "", "selection end"),
		}
	},
}

func (c *audioSelectCommand) Enabled(env *Env) bool {
	return env.Audio != nil && ready(env)
}

func (c *audioSelectCommand) Run(ctx context.Context, env *Env) error {
	start, err := resolve(env, *c.start)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	end, err := resolve(env, *c.end)
	if err != nil {
		return fmt.Errorf("end: %w", err)
	}
	env.Audio.Select(start, end, env.Session().Timecodes())
	return nil
}
