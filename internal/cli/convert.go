package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/subtide/subtide/internal/caption"
)

var convertCmd = &cobra.Command{
	Use:   "convert [caption_file]",
	Short: "Normalize a caption file",
	Long: `Read a SubRip caption file, clamp malformed entries (negative starts,
sub-minimum durations) and write it back out with clean sequential
indices and zero-padded timestamps.

Examples:
  subtide convert captions.srt
  subtide convert captions.srt -o cleaned.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	captionPath := args[0]

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		ext := filepath.Ext(captionPath)
		outputPath = strings.TrimSuffix(captionPath, ext) + "_clean" + ext
	}

	track, err := caption.ReadSRTFile(captionPath)
	if err != nil {
		return fmt.Errorf("failed to load captions: %w", err)
	}

	if err := caption.WriteSRTFile(track, outputPath); err != nil {
		return fmt.Errorf("failed to write captions: %w", err)
	}

	logger.Infow("Captions normalized",
		"input", captionPath,
		"entries", len(track),
		"output", outputPath,
	)

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Captions written: %s\n", absOutput)

	return nil
}
