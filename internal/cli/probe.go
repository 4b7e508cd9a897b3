package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kaal/internal/video"
)

var probeCmd = &cobra.Command{
	Use:   "probe [video_file]",
	Short: "Print video stream information",
	Long: `Print duration, resolution, frame rate and codec of a video as JSON.

With --frames the frame timecodes are read too and their count and
first/last values are reported.

Examples:
  kaal probe movie.mkv
  kaal probe movie.mkv --frames`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().
		Bool("frames", false, "Also read frame timecodes")
}

type probeReport struct {
	Path       string  `json:"path"`
	DurationMs int64   `json:"duration_ms"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	FrameRate  float64 `json:"frame_rate"`
	Codec      string  `json:"codec"`
	HasAudio   bool    `json:"has_audio"`

	Frames     *int   `json:"frames,omitempty"`
	FirstFrame *int64 `json:"first_frame_ms,omitempty"`
	LastFrame  *int64 `json:"last_frame_ms,omitempty"`
}

func newProbeReport(info *video.Info) probeReport {
	return probeReport{
		Path:       info.Path,
		DurationMs: info.Duration.Milliseconds(),
		Width:      info.Width,
		Height:     info.Height,
		FrameRate:  info.FrameRate,
		Codec:      info.Codec,
		HasAudio:   info.HasAudio,
	}
}

func runProbe(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	withFrames, _ := cmd.Flags().GetBool("frames")

	processor := video.NewProcessor(cfg.Timecodes.ProbeTimeout.Duration)

	info, err := processor.GetInfo(cmd.Context(), videoPath)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}
	report := newProbeReport(info)

	if withFrames {
		table, err := processor.GetTimecodes(cmd.Context(), videoPath)
		if err != nil {
			return fmt.Errorf("failed to read timecodes: %w", err)
		}
		n := table.Len()
		first, last := table.First(), table.Last()
		report.Frames = &n
		report.FirstFrame = &first
		report.LastFrame = &last
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
