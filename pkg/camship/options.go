package camship

import (
	"github.com/camlabs/camship/internal/ports"
	"github.com/camlabs/camship/pkg/log"
)

// Logger is the interface for structured logging.
type Logger = log.Logger

// Option configures optional behavior of Camship.
type Option func(*options)

// options holds the optional configuration for a Camship instance.
type options struct {
	logger       ports.Logger
	eventHandler EventHandler
	transport    ports.Transport
	source       ports.FrameSource
	network      ports.Network
	plugins      []Plugin
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for agent events.
// Events are called synchronously from the agent's goroutines.
// If not provided, no events are emitted.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithTransport replaces the default WebSocket transport.
// Used mainly by tests and diagnostics.
func WithTransport(transport ports.Transport) Option {
	return func(o *options) {
		o.transport = transport
	}
}

// WithFrameSource replaces the default camera frame source.
func WithFrameSource(source ports.FrameSource) Option {
	return func(o *options) {
		o.source = source
	}
}

// WithNetwork replaces the default network monitor.
func WithNetwork(network ports.Network) Option {
	return func(o *options) {
		o.network = network
	}
}

// WithPlugin registers a plugin to be initialized when the agent starts.
// Plugins are initialized in registration order and shutdown in reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}
