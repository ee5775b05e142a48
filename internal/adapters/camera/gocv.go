// Package camera implements the frame source port. The real source
// captures from a video device through GoCV (OpenCV); a synthetic source
// backs tests and diagnostic runs.
package camera

import (
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/camlabs/camship/internal/domain"
)

// Default capture settings.
const (
	DefaultWidth   = 800
	DefaultHeight  = 600
	DefaultQuality = 85
)

// Config describes the capture device and JPEG encoding.
type Config struct {
	DeviceID int
	Width    int
	Height   int
	Quality  int
}

// GoCVSource captures JPEG frames from a video device.
//
// The encoder hands out native buffers, so the source tracks the one
// in-flight buffer and frees it on Release. At most one frame may be
// outstanding; acquiring a second before releasing the first fails,
// which mirrors a hardware frame-buffer pool running dry.
type GoCVSource struct {
	cfg Config

	mu      sync.Mutex
	capture *gocv.VideoCapture
	pending *gocv.NativeByteBuffer
	closed  bool
}

// OpenGoCV opens the device and applies the capture settings.
func OpenGoCV(cfg Config) (*GoCVSource, error) {
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}
	if cfg.Quality <= 0 {
		cfg.Quality = DefaultQuality
	}

	capture, err := gocv.OpenVideoCapture(cfg.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", cfg.DeviceID, err)
	}
	capture.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))

	return &GoCVSource{cfg: cfg, capture: capture}, nil
}

// Acquire captures one frame and encodes it as JPEG.
func (s *GoCVSource) Acquire() (domain.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.Frame{}, domain.ErrSourceClosed
	}
	if s.pending != nil {
		return domain.Frame{}, domain.ErrNoFrame
	}

	mat := gocv.NewMat()
	if ok := s.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return domain.Frame{}, domain.ErrNoFrame
	}
	width, height := mat.Cols(), mat.Rows()

	buf, err := gocv.IMEncodeWithParams(".jpg", mat,
		[]int{gocv.IMWriteJpegQuality, s.cfg.Quality})
	mat.Close()
	if err != nil {
		return domain.Frame{}, fmt.Errorf("encode frame: %w", err)
	}

	s.pending = buf
	return domain.Frame{
		Data:       buf.GetBytes(),
		Width:      width,
		Height:     height,
		CapturedAt: time.Now(),
	}, nil
}

// Release frees the frame's native buffer.
func (s *GoCVSource) Release(domain.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		s.pending.Close()
		s.pending = nil
	}
}

// Close shuts down the device.
func (s *GoCVSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.pending != nil {
		s.pending.Close()
		s.pending = nil
	}
	return s.capture.Close()
}
