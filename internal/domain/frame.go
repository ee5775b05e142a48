package domain

import "time"

// Frame represents a single JPEG frame acquired from a camera.
// The Data buffer is owned by the frame source; the streaming loop holds
// it exclusively between Acquire and Release and must release it exactly
// once on every code path, even when the send fails.
type Frame struct {
	// Data is the raw JPEG bytes. Valid only until Release is called.
	Data []byte

	// Width is the frame width in pixels.
	Width int

	// Height is the frame height in pixels.
	Height int

	// CapturedAt is the capture timestamp.
	CapturedAt time.Time
}

// Size returns the length of the JPEG payload in bytes.
func (f Frame) Size() int {
	return len(f.Data)
}
