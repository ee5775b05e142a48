// Package camship provides a convenience facade for the camship
// streaming agent.
//
// Example usage:
//
//	cfg := camship.DefaultConfig()
//	cfg.ServerHost = "cctv.example.com"
//	cfg.AuthToken = "your-token"
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := camship.Run(context.Background(), cfg); err != nil {
//	    log.Fatal(err)
//	}
package camship

import (
	"context"

	"github.com/rs/zerolog"

	agent "github.com/camlabs/camship/pkg/camship"

	"github.com/camlabs/camship/internal/cliconfig"
	"github.com/camlabs/camship/pkg/log"
)

// Config holds the configuration for the streaming agent.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = agent.Config

// DefaultConfig returns a Config with sensible default values.
// At minimum, you must set ServerHost and AuthToken before calling Run.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// LoadDeviceInfo resolves the device identity. An explicit DeviceID is
// kept as-is; otherwise the persisted identity under cfg.StateDir is
// loaded, generating and saving a fresh one on first run.
// This should be called after setting cfg.StateDir and before Run.
func LoadDeviceInfo(cfg *Config) error {
	return cliconfig.LoadDeviceInfo(cfg)
}

// Run starts the streaming agent with the given configuration.
// It blocks until the context is cancelled or an unrecoverable error
// occurs. For finer control over lifecycle, events, and plugins, use
// pkg/camship directly.
func Run(ctx context.Context, cfg Config) error {
	a, err := agent.New(cfg,
		agent.WithLogger(log.NewZerologAdapterWithLogger(cliconfig.Logger())),
	)
	if err != nil {
		return err
	}
	if err := a.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return a.Stop()
}

// Logger returns the package-level zerolog logger used by the agent CLI.
func Logger() zerolog.Logger {
	return cliconfig.Logger()
}
