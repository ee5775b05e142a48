// Package configwatcher provides config file monitoring for camship.
// When enabled, it watches the agent's config.toml for changes and
// invokes a callback (by default it only logs) so an embedding
// application can restart the agent with the new settings.
package configwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/camlabs/camship/pkg/camship"
	"github.com/camlabs/camship/pkg/log"
)

// configFileName is the file watched under the agent's state directory.
const configFileName = "config.toml"

// Plugin implements config watching functionality.
// It monitors config.toml in the agent's state directory and invokes
// the OnChange callback when it changes.
type Plugin struct {
	mu sync.RWMutex

	// Configuration
	debounceDelay time.Duration
	onChange      func(path string)

	// Runtime state
	stateDir string
	logger   log.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// DebounceDelay is the delay to wait after a file change before
	// invoking the callback. Default: 100 milliseconds
	DebounceDelay time.Duration

	// OnChange is invoked with the config file path after a debounced
	// change. Optional; changes are always logged.
	OnChange func(path string)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		debounceDelay: cfg.DebounceDelay,
		onChange:      cfg.OnChange,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize sets up the plugin and starts the config watcher.
func (p *Plugin) Initialize(ctx context.Context, cfg camship.PluginConfig) error {
	p.mu.Lock()
	p.stateDir = cfg.StateDir
	p.logger = cfg.Logger
	p.mu.Unlock()

	if p.stateDir == "" {
		p.logger.Warn("config watcher disabled: state dir not configured")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(p.stateDir); err != nil {
		watcher.Close()
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go p.watch(watchCtx, watcher)

	p.logger.Info("config watcher started",
		log.String("path", filepath.Join(p.stateDir, configFileName)),
	)
	return nil
}

// watch consumes fsnotify events until the context is canceled.
func (p *Plugin) watch(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != configFileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.scheduleNotify(event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Warn("config watcher error", log.Err(err))
		}
	}
}

// scheduleNotify debounces rapid successive writes into one callback.
func (p *Plugin) scheduleNotify(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		p.logger.Info("config file changed", log.String("path", path))
		if p.onChange != nil {
			p.onChange(path)
		}
	})
}

// Shutdown stops the watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	cancel := p.cancel
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
