package camship

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/camlabs/camship/internal/adapters/camera"
	"github.com/camlabs/camship/internal/adapters/netif"
	"github.com/camlabs/camship/internal/adapters/ws"
	"github.com/camlabs/camship/internal/app"
	"github.com/camlabs/camship/internal/cliconfig"
	"github.com/camlabs/camship/internal/domain"
	"github.com/camlabs/camship/internal/ports"
)

// Config holds the configuration for the streaming agent.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = cliconfig.Config

// SessionState is the transport session state.
type SessionState = domain.SessionState

// Session state values.
const (
	SessionDisconnected  = domain.StateDisconnected
	SessionConnecting    = domain.StateConnecting
	SessionConnected     = domain.StateConnected
	SessionAuthenticated = domain.StateAuthenticated
)

// DefaultConfig returns a Config with sensible default values.
// At minimum, you must set ServerHost and AuthToken before calling New.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// LoadDeviceInfo resolves the device identity, generating and persisting
// one under StateDir when none is configured.
func LoadDeviceInfo(cfg *Config) error {
	return cliconfig.LoadDeviceInfo(cfg)
}

// Camship is a camera streaming agent that can be embedded in other
// applications. Use New() to create an instance, then Start() to begin
// streaming.
type Camship struct {
	config    Config
	opts      options
	lifecycle *app.Lifecycle
	streamer  *app.Streamer
	transport ports.Transport
	source    ports.FrameSource
	network   ports.Network
	logger    ports.Logger

	plugins []Plugin
	emitter *eventEmitterWrapper

	mu     sync.RWMutex
	cancel context.CancelFunc
}

// New creates a new Camship instance with the given configuration.
// The instance is created in StateStopped; call Start() to begin streaming.
// Returns an error if configuration is invalid or the camera cannot open.
func New(cfg Config, opts ...Option) (*Camship, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cliconfig.LoadDeviceInfo(&cfg); err != nil {
		return nil, err
	}
	if cfg.DeviceVersion == "" {
		cfg.DeviceVersion = buildVersion()
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger

	emitter := &eventEmitterWrapper{handler: o.eventHandler}

	lifecycle := app.NewLifecycle(logger, emitter)

	network := o.network
	if network == nil {
		network = netif.NewMonitor(logger)
	}

	transport := o.transport
	if transport == nil {
		transport = ws.NewSession(ws.Config{
			Host:          cfg.ServerHost,
			Port:          cfg.ServerPort,
			Path:          cfg.ServerPath,
			Secure:        cfg.Secure,
			AuthToken:     cfg.AuthToken,
			DeviceType:    cfg.DeviceType,
			DeviceID:      cfg.DeviceID,
			DeviceVersion: cfg.DeviceVersion,
		}, network, logger)
	}

	source := o.source
	if source == nil {
		if cfg.MockCamera {
			source = camera.NewMockSource(cfg.FrameWidth, cfg.FrameHeight, 2)
		} else {
			var err error
			source, err = camera.OpenGoCV(camera.Config{
				DeviceID: cfg.CameraDevice,
				Width:    cfg.FrameWidth,
				Height:   cfg.FrameHeight,
				Quality:  cfg.JPEGQuality,
			})
			if err != nil {
				return nil, err
			}
		}
	}

	policy := &domain.RetryPolicy{
		MaxAttempts:  cfg.MaxAttempts,
		ShortBackoff: cfg.ShortBackoff,
		LongBackoff:  cfg.LongBackoff,
	}
	super := app.NewSupervisor(transport, policy, logger)

	streamer := app.NewStreamer(app.StreamConfig{
		DeviceID:          cfg.DeviceID,
		DeviceVersion:     cfg.DeviceVersion,
		AuthToken:         cfg.AuthToken,
		HeartbeatInterval: cfg.HeartbeatInterval,
		FrameInterval:     cfg.FrameInterval(),
	}, transport, source, network, super, logger, emitter)

	return &Camship{
		config:    cfg,
		opts:      o,
		lifecycle: lifecycle,
		streamer:  streamer,
		transport: transport,
		source:    source,
		network:   network,
		logger:    logger,
		plugins:   o.plugins,
		emitter:   emitter,
	}, nil
}

// Start begins streaming in the background.
// Returns immediately after starting the streaming goroutine.
// Returns an error if already running or if a plugin fails to initialize.
func (c *Camship) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := c.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.lifecycle.SetCancel(cancel)

	pluginCfg := PluginConfig{
		ServerHost: c.config.ServerHost,
		ServerPort: c.config.ServerPort,
		ServerPath: c.config.ServerPath,
		DeviceID:   c.config.DeviceID,
		AuthToken:  c.config.AuthToken,
		StateDir:   c.config.StateDir,
		Logger:     c.logger,
	}
	for _, p := range c.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			c.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			cancel()
			_ = c.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			return err
		}
		c.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	c.lifecycle.AddWorker()
	go func() {
		defer c.lifecycle.WorkerDone()

		if err := c.lifecycle.TransitionTo(app.StateRunning, "streamer starting"); err != nil {
			c.logger.Error("failed to transition to running", ports.Err(err))
			return
		}

		err := c.streamer.Run(runCtx)
		if err != nil && err != context.Canceled {
			c.logger.Error("streamer error", ports.Err(err))
			_ = c.lifecycle.TransitionTo(app.StateCrashed, err.Error())
		}
	}()

	return nil
}

// Stop gracefully shuts down the agent.
// Waits up to 30 seconds before forcing shutdown.
// Returns nil on graceful shutdown, ErrShutdownTimeout if forced.
func (c *Camship) Stop() error {
	c.mu.Lock()

	if !c.lifecycle.CanStop() {
		c.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := c.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	err := c.lifecycle.WaitWithTimeout(app.ShutdownTimeout)

	// Shutdown plugins (in reverse order)
	shutdownCtx := context.Background()
	for i := len(c.plugins) - 1; i >= 0; i-- {
		p := c.plugins[i]
		if shutdownErr := p.Shutdown(shutdownCtx); shutdownErr != nil {
			c.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(shutdownErr))
		} else {
			c.logger.Info("plugin shutdown complete", ports.String("plugin", p.Name()))
		}
	}

	if closeErr := c.source.Close(); closeErr != nil {
		c.logger.Error("frame source close failed", ports.Err(closeErr))
	}
	c.transport.Close()

	if err != nil {
		_ = c.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = c.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}

	return err
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (c *Camship) Status() State {
	return convertState(c.lifecycle.State())
}

// Session returns the last observed transport session state.
// Safe to call concurrently from any goroutine.
func (c *Camship) Session() SessionState {
	return c.emitter.sessionState()
}

// buildVersion reports the module version, or "dev" when unavailable.
func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}
