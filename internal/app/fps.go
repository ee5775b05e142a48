package app

import "time"

// FPSCounter accumulates frame counts over fixed windows and reports a
// rate once per completed window.
type FPSCounter struct {
	window      time.Duration
	count       int
	windowStart time.Time
	fps         float64
}

// NewFPSCounter creates a counter with the given window (typically 1s).
func NewFPSCounter(window time.Duration) *FPSCounter {
	return &FPSCounter{window: window}
}

// Tick records one frame at the given time. When the current window has
// elapsed it recomputes the rate as count*1000/elapsed_ms, resets the
// window, and returns (rate, true). Otherwise it returns (0, false).
func (c *FPSCounter) Tick(now time.Time) (float64, bool) {
	if c.windowStart.IsZero() {
		c.windowStart = now
	}
	c.count++

	elapsed := now.Sub(c.windowStart)
	if elapsed < c.window {
		return 0, false
	}

	c.fps = float64(c.count) * 1000.0 / float64(elapsed.Milliseconds())
	c.count = 0
	c.windowStart = now
	return c.fps, true
}

// FPS returns the most recently completed window's rate.
func (c *FPSCounter) FPS() float64 {
	return c.fps
}
