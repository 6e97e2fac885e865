package vision

import "context"

// Capture target. Low resolution on purpose: the estimator only ever looks
// at a downscaled analysis buffer, so anything bigger is wasted bandwidth.
const (
	CaptureWidth  = 320
	CaptureHeight = 240
)

// Frame is one camera frame as raw RGBA pixels. The buffer is owned by the
// source and only valid until the next Frame call.
type Frame struct {
	Pix  []uint8
	W, H int
}

// FrameSource is the injected camera capability. The real implementation
// wraps a V4L2 device; tests substitute synthetic frame sequences.
type FrameSource interface {
	// Start acquires the device and blocks until the first decodable frame
	// or ctx expiry. It reports the stream dimensions on success. Errors
	// map onto the camera failure kinds where the cause is known.
	Start(ctx context.Context) (w, h int, err error)

	// Latest returns the most recent frame. Errors are expected transient
	// conditions (frame not yet decoded); callers skip the tick and move on.
	Latest() (Frame, error)

	// Stop releases the device. Idempotent, safe from any state.
	Stop()
}
