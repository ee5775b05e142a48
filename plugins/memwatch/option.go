package memwatch

import "github.com/camlabs/camship/pkg/camship"

// WithMemWatch returns a camship Option that enables heap sampling.
//
// Usage:
//
//	agent, err := camship.New(cfg, memwatch.WithMemWatch(memwatch.DefaultConfig()))
func WithMemWatch(cfg Config) camship.Option {
	return camship.WithPlugin(New(cfg))
}

// WithDefaultMemWatch returns a camship Option that enables heap
// sampling with default settings (64 MiB threshold, 30s cadence).
func WithDefaultMemWatch() camship.Option {
	return WithMemWatch(DefaultConfig())
}
