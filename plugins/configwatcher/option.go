package configwatcher

import "github.com/camlabs/camship/pkg/camship"

// WithConfigWatcher returns a camship Option that enables config file
// watching. When enabled, the plugin monitors config.toml under the
// agent's state directory and invokes cfg.OnChange when it changes.
//
// Usage:
//
//	agent, err := camship.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) camship.Option {
	plugin := New(cfg)
	return camship.WithPlugin(plugin)
}

// WithDefaultConfigWatcher returns a camship Option that enables config
// watching with default settings (debounce 100ms, log-only).
//
// Usage:
//
//	agent, err := camship.New(cfg, configwatcher.WithDefaultConfigWatcher())
func WithDefaultConfigWatcher() camship.Option {
	return WithConfigWatcher(DefaultConfig())
}
