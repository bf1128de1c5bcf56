package thumbnail

import "context"

// FrameCapturer produces one still frame from a live playback URL.
// Failure is all-or-nothing: implementations must not leave a partial image
// at the output path on error.
type FrameCapturer interface {
	// CaptureFrame reads the stream at streamURL and writes a single scaled
	// frame to outputPath, overwriting any previous file.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - streamURL: playable URL of the live stream (e.g., an HLS manifest)
	//   - outputPath: destination file for the captured frame
	CaptureFrame(ctx context.Context, streamURL, outputPath string) error
}
