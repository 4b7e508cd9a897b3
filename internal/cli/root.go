package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kaal/internal/config"
	"github.com/mgpai22/kaal/internal/logging"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
	cfg        = config.DefaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "kaal",
	Short: "Frame-accurate timing tools for subtitle editing",
	Long: `Kaal aligns timestamps to the frame boundaries of a video.

It reads frame timecodes from a video (through ffprobe) or from a
Matroska v2 timecode file, snaps positions to the previous, next or
nearest frame, and drives a headless editing session in which seeks
and subtitle edits always land on real frames.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)

		path := configPath
		if path == "" {
			path = config.Path()
		}
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded

		logger.Debugw("Loaded config", "path", path)
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file path (default $KAAL_CONFIG, ./kaal.toml or ~/.config/kaal/config.toml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
}
