package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kaal/internal/audioview"
	"github.com/mgpai22/kaal/internal/command"
	"github.com/mgpai22/kaal/internal/logging"
	"github.com/mgpai22/kaal/internal/playback"
	"github.com/mgpai22/kaal/internal/subtitle"
	"github.com/mgpai22/kaal/internal/video"
)

var runCmd = &cobra.Command{
	Use:   "run [video_or_timecodes_file]",
	Short: "Run editing commands against a headless session",
	Long: `Open a video (or just its timecode file) and run editor commands against it.
Files without a video extension are read as Matroska v2 timecode files.

Commands come from -e flags, then from --script. Without either they are
read from stdin one per line, and with --watch the timecode file is
reloaded whenever it changes. The final session state is printed as JSON.

Available commands: seek, play-pause, sub-insert, sub-select, sub-set,
sub-snap, sub-shift, audio-zoom, audio-scroll, audio-select. Run
"kaal run --help-command NAME" for the flags of one command.

Examples:
  kaal run movie.mkv -e "seek -p 0:00:05" -e "sub-insert -e +2s -t Hello"
  kaal run --timecodes tc.txt --script edits.txt -o state.json --subs edits.srt
  kaal run --timecodes tc.txt --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().
		StringP("timecodes", "t", "", "Matroska v2 timecode file")
	runCmd.Flags().
		StringArrayP("exec", "e", nil, "Command to run (repeatable)")
	runCmd.Flags().
		String("script", "", "File with one command per line")
	runCmd.Flags().
		Bool("watch", false, "Reload the timecode file when it changes (default from config)")
	runCmd.Flags().
		Bool("keep-going", false, "Continue after a failing command")
	runCmd.Flags().
		String("subs", "", "Write the edited subtitles to this file (srt, vtt or ass by extension)")
	runCmd.Flags().
		String("help-command", "", "Show the flags of a command and exit")
}

// printed at the end of a run
type sessionState struct {
	Position      int64            `json:"position"`
	Paused        bool             `json:"paused"`
	Frames        int              `json:"frames"`
	SelectedIndex int              `json:"selected_index"`
	Selection     *playback.Span   `json:"selection,omitempty"`
	Subtitles     []subtitle.Entry `json:"subtitles"`
	Audio         audioState       `json:"audio"`
}

type audioState struct {
	ViewStart int64          `json:"view_start"`
	ViewEnd   int64          `json:"view_end"`
	Selection *playback.Span `json:"selection,omitempty"`
}

func snapshot(env *command.Env) sessionState {
	session := env.Session()
	state := sessionState{
		Position:      session.Position(),
		Paused:        session.IsPaused(),
		Frames:        session.Timecodes().Len(),
		SelectedIndex: session.SelectedIndex(),
		Subtitles:     env.Subtitles.Entries(),
		Audio: audioState{
			ViewStart: env.Audio.ViewStart(),
			ViewEnd:   env.Audio.ViewEnd(),
		},
	}
	if span, ok := session.Selection(); ok {
		state.Selection = &span
	}
	if start, end, ok := env.Audio.Selection(); ok {
		state.Audio.Selection = &playback.Span{Start: start, End: end}
	}
	return state
}

// builds the session and the command environment around source
func newEnv(source *video.Source) *command.Env {
	session := playback.NewSession(source)
	backend := playback.NewLogBackend(logger)

	table := source.Timecodes()
	end := table.Last()
	if info := source.Info(); info != nil && info.Duration > 0 {
		end = info.Duration.Milliseconds()
	}
	view := audioview.New(table.First(), end)
	if cfg.Audio.InitialZoom < 1 {
		view.Zoom(cfg.Audio.InitialZoom, 0)
	}

	// the zero value of Mode is near, matching the config default
	mode, _ := cfg.SeekMode()

	return &command.Env{
		Playback:    playback.NewController(session, backend, logger),
		Subtitles:   subtitle.NewTrack(),
		Audio:       view,
		Logger:      logger,
		SeekMode:    mode,
		PreciseSeek: cfg.Seek.Precise,
	}
}

// runs lines in order; stops at the first error unless keepGoing
func runLines(
	ctx context.Context,
	registry *command.Registry,
	env *command.Env,
	lines []string,
	keepGoing bool,
) error {
	var errs []error
	for _, line := range lines {
		if err := registry.Dispatch(ctx, env, line); err != nil {
			if !keepGoing {
				return err
			}
			logging.OrNop(logger).Warnw("Command failed", "line", line, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	registry := command.NewDefaultRegistry()

	if name, _ := cmd.Flags().GetString("help-command"); name != "" {
		usage, err := registry.Usage(name)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), usage)
		return nil
	}

	timecodesPath, _ := cmd.Flags().GetString("timecodes")
	execLines, _ := cmd.Flags().GetStringArray("exec")
	scriptPath, _ := cmd.Flags().GetString("script")
	keepGoing, _ := cmd.Flags().GetBool("keep-going")
	outputPath, _ := cmd.Flags().GetString("output")
	subsPath, _ := cmd.Flags().GetString("subs")
	watch := cfg.Timecodes.Watch
	if cmd.Flags().Changed("watch") {
		watch, _ = cmd.Flags().GetBool("watch")
	}

	if len(args) == 0 && timecodesPath == "" {
		return fmt.Errorf("a video file or --timecodes is required")
	}

	source := video.NewSource(
		video.NewProcessor(cfg.Timecodes.ProbeTimeout.Duration),
		logger,
	)
	if len(args) == 1 {
		if !video.IsVideoFile(args[0]) && timecodesPath == "" {
			// not a known video container, treat it as a timecode file
			timecodesPath = args[0]
		} else if err := source.Load(ctx, args[0]); err != nil {
			return err
		}
	}
	if timecodesPath != "" {
		// an explicit timecode file wins over the probed one
		if err := source.LoadTimecodeFile(timecodesPath); err != nil {
			return err
		}
	}

	logger.Infow("Session ready",
		"frames", source.Timecodes().Len(),
		"seek_mode", cfg.Seek.Align,
	)

	env := newEnv(source)

	lines := append([]string(nil), execLines...)
	if scriptPath != "" {
		scriptLines, err := readScriptFile(scriptPath)
		if err != nil {
			return err
		}
		lines = append(lines, scriptLines...)
	}

	interactive := len(lines) == 0
	if watch {
		if timecodesPath == "" {
			logger.Warnw("--watch needs --timecodes, ignoring")
		} else {
			watchCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			go func() {
				if err := source.Watch(watchCtx, timecodesPath); err != nil {
					logger.Errorw("Timecode watcher stopped", "error", err)
				}
			}()
		}
	}

	var runErr error
	if interactive {
		runErr = runInteractive(ctx, registry, env, cmd.InOrStdin(), cmd.ErrOrStderr())
	} else {
		runErr = runLines(ctx, registry, env, lines, keepGoing)
	}

	if subsPath != "" {
		if err := subtitle.WriteFile(subsPath, env.Subtitles.Entries()); err != nil {
			return err
		}
		logger.Infow("Wrote subtitles",
			"path", subsPath,
			"entries", env.Subtitles.Len(),
		)
	}

	out, closeOut, err := openOutput(outputPath, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := writeState(out, snapshot(env)); err != nil {
		closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return runErr
}

// dispatches stdin line by line so that timecode reloads apply between
// commands; failing commands are reported and the session carries on. A read
// error ends the session and is returned.
func runInteractive(
	ctx context.Context,
	registry *command.Registry,
	env *command.Env,
	in io.Reader,
	errOut io.Writer,
) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line, ok := scriptLine(scanner.Text())
		if !ok {
			continue
		}
		if err := registry.Dispatch(ctx, env, line); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(errOut, "error: reading commands: %v\n", err)
		return fmt.Errorf("failed to read commands: %w", err)
	}
	return nil
}

func writeState(w io.Writer, state sessionState) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}
	return nil
}
