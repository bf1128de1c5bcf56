package thumbnail

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultFFmpegConfig(t *testing.T) {
	cfg := DefaultFFmpegConfig()

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"FFmpegPath", cfg.FFmpegPath, "ffmpeg"},
		{"Width", cfg.Width, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, expected %v", tt.got, tt.expected)
			}
		})
	}
}

func TestFFmpegCapturer_BuildFFmpegArgs(t *testing.T) {
	capturer := NewFFmpegCapturer(FFmpegConfig{FFmpegPath: "ffmpeg", Width: 300})

	args := capturer.buildFFmpegArgs("http://cdn-eu/live/alice_subsd/index.m3u8", "/tmp/alice.jpg")
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-i http://cdn-eu/live/alice_subsd/index.m3u8",
		"-vf scale=300:-1",
		"-frames:v 1",
		"-y",
		"/tmp/alice.jpg",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
}

func TestFFmpegCapturer_ValidateOutputDir(t *testing.T) {
	capturer := NewFFmpegCapturer(DefaultFFmpegConfig())

	t.Run("non-existent directory returns error", func(t *testing.T) {
		err := capturer.validateOutputDir("/non/existent/dir/alice.jpg")
		if err == nil {
			t.Error("expected error for non-existent directory")
		}
	})

	t.Run("existing directory succeeds", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "alice.jpg")
		if err := capturer.validateOutputDir(out); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
