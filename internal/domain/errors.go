package domain

import "errors"

// Domain errors represent error conditions in the camship domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("camship: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped instance.
	ErrNotRunning = errors.New("camship: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("camship: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("camship: invalid configuration")

	// ErrNotConnected is returned when a send is attempted without an
	// established transport session.
	ErrNotConnected = errors.New("camship: not connected")

	// ErrNoFrame is returned by a frame source when no hardware buffer
	// is available for capture.
	ErrNoFrame = errors.New("camship: no frame available")

	// ErrSourceClosed is returned by a frame source after Close.
	ErrSourceClosed = errors.New("camship: frame source closed")
)
