// Package memwatch provides low-memory detection for camship.
// When enabled, it samples the Go heap periodically and logs when usage
// crosses the configured threshold. Detection is diagnostic only: the
// agent never attempts recovery, it just makes memory pressure visible
// in the logs before frames start failing.
package memwatch

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/camlabs/camship/pkg/camship"
	"github.com/camlabs/camship/pkg/log"
)

// Plugin implements periodic heap sampling.
type Plugin struct {
	mu sync.RWMutex

	// Configuration
	threshold uint64
	interval  time.Duration

	// Runtime state
	logger log.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Config holds configuration options for the memwatch plugin.
type Config struct {
	// ThresholdBytes is the heap-in-use size above which a warning is
	// logged. Default: 64 MiB, sized for small SBC deployments.
	ThresholdBytes uint64

	// Interval is the sampling cadence. Default: 30 seconds.
	Interval time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ThresholdBytes: 64 << 20,
		Interval:       30 * time.Second,
	}
}

// New creates a new memwatch plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.ThresholdBytes == 0 {
		cfg.ThresholdBytes = 64 << 20
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	return &Plugin{
		threshold: cfg.ThresholdBytes,
		interval:  cfg.Interval,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "memwatch"
}

// Initialize starts the sampler.
func (p *Plugin) Initialize(ctx context.Context, cfg camship.PluginConfig) error {
	p.mu.Lock()
	p.logger = cfg.Logger
	p.mu.Unlock()

	watchCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go p.sample(watchCtx)
	return nil
}

// sample logs heap usage on each tick, warning above the threshold.
func (p *Plugin) sample(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			if ms.HeapInuse >= p.threshold {
				p.logger.Warn("heap usage above threshold",
					log.Uint64("heap_inuse", ms.HeapInuse),
					log.Uint64("threshold", p.threshold),
				)
			} else {
				p.logger.Debug("heap sample",
					log.Uint64("heap_inuse", ms.HeapInuse),
				)
			}
		}
	}
}

// Shutdown stops the sampler.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	cancel := p.cancel
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
