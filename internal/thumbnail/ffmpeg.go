package thumbnail

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// FFmpegConfig holds configuration for the FFmpeg frame capturer.
type FFmpegConfig struct {
	// FFmpegPath is the path to the ffmpeg binary.
	// If empty, "ffmpeg" will be used (assumes it's in PATH).
	FFmpegPath string

	// Width is the target thumbnail width in pixels.
	// Height is calculated automatically to maintain aspect ratio.
	// Default: 300
	Width int
}

// DefaultFFmpegConfig returns an FFmpegConfig with production-ready defaults.
func DefaultFFmpegConfig() FFmpegConfig {
	return FFmpegConfig{
		FFmpegPath: "ffmpeg",
		Width:      300,
	}
}

// FFmpegCapturer implements FrameCapturer using the FFmpeg CLI.
type FFmpegCapturer struct {
	config FFmpegConfig
}

// Compile-time verification that FFmpegCapturer implements FrameCapturer.
var _ FrameCapturer = (*FFmpegCapturer)(nil)

// NewFFmpegCapturer creates a new FFmpeg-based frame capturer.
func NewFFmpegCapturer(cfg FFmpegConfig) *FFmpegCapturer {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.Width <= 0 {
		cfg.Width = 300
	}
	return &FFmpegCapturer{config: cfg}
}

// CaptureFrame grabs a single frame from the stream and writes it scaled to
// the configured width. The frame goes to a temp file first and is renamed
// into place only on success, so a failed capture never clobbers a previous
// thumbnail.
func (c *FFmpegCapturer) CaptureFrame(ctx context.Context, streamURL, outputPath string) error {
	if err := c.validateOutputDir(outputPath); err != nil {
		return err
	}

	tmpPath := outputPath + ".tmp" + filepath.Ext(outputPath)
	defer os.Remove(tmpPath)

	args := c.buildFFmpegArgs(streamURL, tmpPath)

	cmd := exec.CommandContext(ctx, c.config.FFmpegPath, args...)
	cmd.Stdout = nil // Discard stdout
	cmd.Stderr = nil // Discard stderr (FFmpeg outputs progress to stderr)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("frame capture cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("ffmpeg execution failed: %w", err)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		return fmt.Errorf("failed to move captured frame into place: %w", err)
	}

	return nil
}

// validateOutputDir checks that the directory for outputPath exists.
func (c *FFmpegCapturer) validateOutputDir(outputPath string) error {
	dir := filepath.Dir(outputPath)
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("output directory does not exist: %s", dir)
		}
		return fmt.Errorf("failed to access output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output path is not a directory: %s", dir)
	}
	return nil
}

// buildFFmpegArgs constructs the FFmpeg command arguments.
func (c *FFmpegCapturer) buildFFmpegArgs(streamURL, outputPath string) []string {
	// -1 lets ffmpeg pick the height preserving aspect ratio
	scaleFilter := fmt.Sprintf("scale=%d:-1", c.config.Width)

	return []string{
		"-i", streamURL,
		"-vf", scaleFilter,
		"-frames:v", "1",
		"-y", // Overwrite output files without asking
		outputPath,
	}
}
