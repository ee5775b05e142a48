package camera

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
	"time"

	"github.com/camlabs/camship/internal/domain"
)

// MockSource produces synthetic JPEG frames from a bounded buffer pool,
// for tests and the diagnostic check mode. Like the hardware driver, it
// has a fixed number of buffers: frames that are never released exhaust
// the pool and further acquisitions fail.
type MockSource struct {
	mu          sync.Mutex
	data        []byte
	width       int
	height      int
	bufCount    int
	outstanding int
	acquired    int
	released    int
	closed      bool

	// FailNext forces the next Acquire to report no frame available.
	FailNext bool
}

// NewMockSource creates a source with the given dimensions and buffer
// pool size. A pool size of 2 matches the double-buffered hardware.
func NewMockSource(width, height, bufCount int) *MockSource {
	if bufCount <= 0 {
		bufCount = 2
	}
	return &MockSource{
		data:     encodeTestJPEG(width, height),
		width:    width,
		height:   height,
		bufCount: bufCount,
	}
}

// Acquire hands out one synthetic frame.
func (s *MockSource) Acquire() (domain.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.Frame{}, domain.ErrSourceClosed
	}
	if s.FailNext {
		s.FailNext = false
		return domain.Frame{}, domain.ErrNoFrame
	}
	if s.outstanding >= s.bufCount {
		return domain.Frame{}, domain.ErrNoFrame
	}

	s.outstanding++
	s.acquired++
	return domain.Frame{
		Data:       s.data,
		Width:      s.width,
		Height:     s.height,
		CapturedAt: time.Now(),
	}, nil
}

// Release returns one buffer to the pool.
func (s *MockSource) Release(domain.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outstanding > 0 {
		s.outstanding--
	}
	s.released++
}

// Close shuts the source down.
func (s *MockSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Counts returns the number of acquires and releases so far.
func (s *MockSource) Counts() (acquired, released int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acquired, s.released
}

// Outstanding returns the number of unreleased frames.
func (s *MockSource) Outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outstanding
}

// encodeTestJPEG renders a small gray image as JPEG.
func encodeTestJPEG(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.Gray{Y: uint8((x + y) % 256)})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 75})
	return buf.Bytes()
}
