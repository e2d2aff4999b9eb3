package cli

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/subtide/subtide/internal/audio"
	"github.com/subtide/subtide/internal/caption"
	"github.com/subtide/subtide/internal/timeline"
)

var renderCmd = &cobra.Command{
	Use:   "render [media_file] [caption_file]",
	Short: "Render one timeline view to a PNG",
	Long: `Render the waveform timeline, caption blocks and playhead for a single
moment to a PNG image.

The view is centered on the given playback time, exactly as the live
timeline would draw it. If the audio track cannot be decoded the
waveform is omitted and the rest of the view is still rendered.

Examples:
  subtide render video.mp4 captions.srt --at 12.5
  subtide render video.mp4 captions.srt --at 30 --zoom 200 -o frame.png
  subtide render audio.wav captions.srt --at 5 --width 1280 --height 200`,
	Args: cobra.ExactArgs(2),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().
		Float64("at", 0, "Playback time in seconds the view centers on")
	renderCmd.Flags().
		Float64("zoom", 0, "Zoom in pixels per second (default from config)")
	renderCmd.Flags().Int("width", 960, "View width in pixels")
	renderCmd.Flags().Int("height", 160, "View height in pixels")
	renderCmd.Flags().
		Int("select", -1, "1-based index of the caption to show selected")
}

func runRender(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	captionPath := args[1]

	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", mediaPath)
	}
	if !audio.IsMediaFile(mediaPath) {
		return fmt.Errorf("unsupported file type: %s (expected audio or video file)", filepath.Ext(mediaPath))
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	at, _ := cmd.Flags().GetFloat64("at")
	zoom, _ := cmd.Flags().GetFloat64("zoom")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	selectIdx, _ := cmd.Flags().GetInt("select")
	outputPath, _ := cmd.Flags().GetString("output")

	if zoom == 0 {
		zoom = cfg.Timeline.DefaultZoom
	}
	if outputPath == "" {
		ext := filepath.Ext(mediaPath)
		outputPath = strings.TrimSuffix(mediaPath, ext) + "_timeline.png"
	}

	track, err := caption.ReadSRTFile(captionPath)
	if err != nil {
		return fmt.Errorf("failed to load captions: %w", err)
	}

	selectedID := ""
	if selectIdx >= 1 && selectIdx <= len(track) {
		selectedID = track[selectIdx-1].ID
	}

	// a missing waveform degrades the view, it does not abort it
	var buf *audio.SampleBuffer
	buf, err = audio.Decode(context.Background(), mediaPath, cfg.Timeline.SampleRate)
	if err != nil {
		logger.Warnw("Audio decode failed, rendering without waveform", "error", err)
		buf = nil
	}

	vp := timeline.Viewport{
		CenterTime:  at,
		PixelWidth:  width,
		PixelHeight: height,
	}
	vp = vp.WithZoom(zoom, cfg.Timeline.MinZoom, cfg.Timeline.MaxZoom)

	painter, err := timeline.NewPainter(cfg.Timeline, timeline.DefaultTheme())
	if err != nil {
		return err
	}

	img := painter.Render(timeline.State{
		Viewport:     vp,
		Captions:     track,
		SelectedID:   selectedID,
		PlaybackTime: at,
		Waveform:     buf,
	})

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		return fmt.Errorf("png encode failed: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Timeline rendered: %s\n", absOutput)

	return nil
}
