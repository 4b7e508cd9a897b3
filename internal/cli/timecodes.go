package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kaal/internal/timecode"
	"github.com/mgpai22/kaal/internal/video"
)

var timecodesCmd = &cobra.Command{
	Use:   "timecodes [video_file]",
	Short: "Extract frame timecodes from a video",
	Long: `Read the presentation time of every frame of the first video stream
and save them as a Matroska v2 timecode file.

Examples:
  kaal timecodes movie.mkv
  kaal timecodes movie.mkv -o tc.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runTimecodes,
}

func init() {
	rootCmd.AddCommand(timecodesCmd)
}

func runTimecodes(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = defaultTimecodesPath(videoPath)
	}

	logger.Infow("Extracting timecodes",
		"video", videoPath,
		"output", outputPath,
	)

	processor := video.NewProcessor(cfg.Timecodes.ProbeTimeout.Duration)
	table, err := processor.GetTimecodes(cmd.Context(), videoPath)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	if err := timecode.SaveFile(outputPath, table); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d timecodes: %s\n", table.Len(), absOutput)
	return nil
}
