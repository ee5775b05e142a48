package camship

import (
	"context"

	"github.com/camlabs/camship/internal/ports"
)

// Plugin extends the agent with optional behavior. Plugins are
// initialized during Start in registration order and shut down during
// Stop in reverse order.
type Plugin interface {
	// Name returns the plugin identifier, used in logs.
	Name() string

	// Initialize starts the plugin. The context is canceled when the
	// agent stops.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown stops the plugin and releases its resources.
	Shutdown(ctx context.Context) error
}

// PluginConfig provides plugins with the agent's effective configuration.
type PluginConfig struct {
	ServerHost string
	ServerPort int
	ServerPath string
	DeviceID   string
	AuthToken  string
	StateDir   string
	Logger     ports.Logger
}
