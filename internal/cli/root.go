package cli

import (
	"github.com/spf13/cobra"

	"github.com/subtide/subtide/internal/config"
	"github.com/subtide/subtide/internal/logging"
)

var (
	verbose bool
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "subtide",
	Short: "Waveform-timeline caption editor and burn-in exporter",
	Long: `Subtide aligns timed captions to a video's audio track.

It renders a zoomable amplitude waveform timeline for caption editing,
reads and writes SubRip caption files, and exports videos with captions
permanently burned into each frame.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		String("config", "", "Path to a YAML config file")
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}
