package ports

import "github.com/camlabs/camship/internal/domain"

// FrameSource provides JPEG frames from a camera.
// The underlying driver owns a small pool of hardware buffers: every
// successfully acquired frame must be released exactly once, on every
// code path, or the pool is exhausted and acquisition fails permanently.
type FrameSource interface {
	// Acquire captures one frame. Returns domain.ErrNoFrame when no
	// hardware buffer is available; the caller should skip the
	// iteration and retry next cycle.
	Acquire() (domain.Frame, error)

	// Release returns the frame's buffer to the driver. Must be called
	// exactly once per successful Acquire, even when the send failed.
	Release(domain.Frame)

	// Close shuts down the camera and releases all resources.
	Close() error
}
