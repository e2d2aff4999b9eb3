package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/subtide/subtide/internal/audio"
	"github.com/subtide/subtide/internal/caption"
	"github.com/subtide/subtide/internal/export"
)

var burnCmd = &cobra.Command{
	Use:   "burn [video_file] [caption_file]",
	Short: "Export a video with captions burned into each frame",
	Long: `Export the video with the given captions composited onto every frame.

The output container and codecs are negotiated from the configured
preference list against the local ffmpeg build; the first supported
combination wins. The source's audio track is carried over when present.

Press Ctrl-C to cancel; a cancelled export leaves no partial file.

Examples:
  subtide burn video.mp4 captions.srt
  subtide burn video.mp4 captions.srt -o final.mp4 --font-size 6 --color "#FFD700"
  subtide burn video.mp4 captions.srt --font-weight heavy --stroke-width 15`,
	Args: cobra.ExactArgs(2),
	RunE: runBurn,
}

func init() {
	rootCmd.AddCommand(burnCmd)

	burnCmd.Flags().
		Float64("font-size", 5, "Caption font size as a percent of frame height")
	burnCmd.Flags().
		Float64("stroke-width", 12, "Outline width as a percent of the font size (0 disables)")
	burnCmd.Flags().
		String("font-weight", "normal", "Caption font weight (normal, bold, heavy)")
	burnCmd.Flags().
		String("color", "#FFFFFF", "Caption fill color as a hex string")
}

func runBurn(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	captionPath := args[1]

	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", videoPath)
	}
	if !audio.IsVideoFile(videoPath) {
		return fmt.Errorf("unsupported file type: %s (expected a video file)", filepath.Ext(videoPath))
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	track, err := caption.ReadSRTFile(captionPath)
	if err != nil {
		return fmt.Errorf("failed to load captions: %w", err)
	}

	style := caption.DefaultStyle()
	style.FontSizePercent, _ = cmd.Flags().GetFloat64("font-size")
	style.StrokeWidthPercent, _ = cmd.Flags().GetFloat64("stroke-width")
	style.Color, _ = cmd.Flags().GetString("color")
	weightStr, _ := cmd.Flags().GetString("font-weight")
	weight, ok := caption.ParseWeight(weightStr)
	if !ok {
		return fmt.Errorf("invalid font weight %q: expected normal, bold or heavy", weightStr)
	}
	style.Weight = weight

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		ext := filepath.Ext(videoPath)
		outputPath = strings.TrimSuffix(videoPath, ext) + "_captioned" + ext
	}

	logger.Infow("Starting export",
		"video", videoPath,
		"captions", len(track),
		"output", outputPath,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctrl := export.NewController(logger)

	lastTenth := -1
	err = ctrl.Start(ctx, export.Session{
		Source:   videoPath,
		Output:   outputPath,
		Captions: track,
		Style:    style,
		Targets:  cfg.Export.Targets,
		Probe:    export.NewFFmpegProbe(),
		OnProgress: func(p float64) {
			tenth := int(p * 10)
			if tenth > lastTenth {
				lastTenth = tenth
				logger.Infow("Export progress", "percent", tenth*10)
			}
		},
	})
	if errors.Is(err, context.Canceled) {
		logger.Warnw("Export cancelled, no output written")
		return nil
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Export complete: %s\n", absOutput)

	return nil
}
