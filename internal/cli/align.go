package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kaal/internal/playback"
	"github.com/mgpai22/kaal/internal/position"
	"github.com/mgpai22/kaal/internal/timecode"
)

var alignCmd = &cobra.Command{
	Use:   "align [position...]",
	Short: "Snap positions to video frame boundaries",
	Long: `Align each position to a frame boundary of the given video or timecode file.

Positions accept milliseconds (1500), units (1.5s, 1500ms), timestamps
(0:00:01.500), frame numbers (36f) and sums of these (1:00+3f).
Pass negative values after "--".

Modes:
  prev  start of the frame containing the position
  next  first boundary at or after the position
  near  closest boundary, ties go to the earlier frame

Examples:
  kaal align --video movie.mkv 1500 0:01:02.345
  kaal align --timecodes movie.timecodes.txt --mode prev 1001
  kaal align -t tc.txt -m next -- -50 1:00+3f`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAlign,
}

func init() {
	rootCmd.AddCommand(alignCmd)

	alignCmd.Flags().
		StringP("timecodes", "t", "", "Matroska v2 timecode file")
	alignCmd.Flags().
		String("video", "", "Video file to read timecodes from")
	alignCmd.Flags().
		StringP("mode", "m", "", "Alignment mode: prev, next or near (default from config)")
}

func runAlign(cmd *cobra.Command, args []string) error {
	timecodesPath, _ := cmd.Flags().GetString("timecodes")
	videoPath, _ := cmd.Flags().GetString("video")
	modeStr, _ := cmd.Flags().GetString("mode")

	if modeStr == "" {
		modeStr = cfg.Seek.Align
	}
	mode, err := timecode.ParseMode(modeStr)
	if err != nil {
		return err
	}

	table, err := loadTable(cmd.Context(), timecodesPath, videoPath)
	if err != nil {
		return err
	}

	logger.Debugw("Aligning positions",
		"frames", table.Len(),
		"mode", mode.String(),
		"count", len(args),
	)

	aligned, err := alignAll(table, mode, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, arg := range args {
		fmt.Fprintf(out, "%s\t%d\n", arg, aligned[i])
	}
	return nil
}

// resolves every descriptor against table and aligns it with mode
func alignAll(table *timecode.Table, mode timecode.Mode, args []string) ([]int64, error) {
	session := playback.NewSession(tableSource{table: table})

	out := make([]int64, 0, len(args))
	for _, arg := range args {
		expr, err := position.Parse(arg)
		if err != nil {
			return nil, err
		}
		pts, err := expr.ResolveAligned(session, 0, mode)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %q: %w", arg, err)
		}
		out = append(out, pts)
	}
	return out, nil
}
