package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/camlabs/camship/internal/domain"
)

// Default streaming parameters: 30 fps pacing, a 30 second heartbeat,
// five short reconnect attempts and a 30 second degraded wait.
const (
	DefaultServerPath        = "/ws"
	DefaultServerPort        = 80
	DefaultTargetFPS         = 30
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultMaxAttempts       = 5
	DefaultShortBackoff      = 5 * time.Second
	DefaultLongBackoff       = 30 * time.Second
	DefaultDeviceType        = "camship"
)

// Config holds the full configuration surface of the agent. Immutable
// after Validate; the streaming loop receives a copy.
type Config struct {
	// Server endpoint.
	ServerHost string
	ServerPort int
	ServerPath string
	Secure     bool
	AuthToken  string

	// Device identity.
	DeviceID      string
	DeviceType    string
	DeviceVersion string

	// Camera.
	CameraDevice int
	FrameWidth   int
	FrameHeight  int
	JPEGQuality  int
	MockCamera   bool

	// Timing.
	TargetFPS         int
	HeartbeatInterval time.Duration

	// Reconnect policy.
	MaxAttempts  int
	ShortBackoff time.Duration
	LongBackoff  time.Duration

	// StateDir holds the persisted device identity.
	StateDir string

	// Check runs the one-shot diagnostic harness instead of streaming.
	Check bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ServerPort:        DefaultServerPort,
		ServerPath:        DefaultServerPath,
		DeviceType:        DefaultDeviceType,
		TargetFPS:         DefaultTargetFPS,
		HeartbeatInterval: DefaultHeartbeatInterval,
		MaxAttempts:       DefaultMaxAttempts,
		ShortBackoff:      DefaultShortBackoff,
		LongBackoff:       DefaultLongBackoff,
		StateDir:          defaultStateDir(),
		AuthToken:         os.Getenv("CAMSHIP_AUTH_TOKEN"),
	}
}

func defaultStateDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".camship")
	}
	return ""
}

// FrameInterval returns the pacing interval derived from TargetFPS.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.TargetFPS)
}

// Validate checks the configuration for errors and sets derived
// defaults. Failures wrap domain.ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.ServerHost == "" {
		return fmt.Errorf("%w: server-host is required", domain.ErrInvalidConfig)
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("%w: server-port must be in 1..65535", domain.ErrInvalidConfig)
	}
	if c.ServerPath == "" {
		c.ServerPath = DefaultServerPath
	}
	if c.AuthToken == "" {
		return fmt.Errorf("%w: auth-token is required", domain.ErrInvalidConfig)
	}
	if c.DeviceType == "" {
		c.DeviceType = DefaultDeviceType
	}
	if c.TargetFPS <= 0 {
		return fmt.Errorf("%w: target-fps must be positive", domain.ErrInvalidConfig)
	}
	if c.HeartbeatInterval <= 0 {
		return fmt.Errorf("%w: heartbeat interval must be positive", domain.ErrInvalidConfig)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("%w: max-attempts must be positive", domain.ErrInvalidConfig)
	}
	if c.LongBackoff <= c.ShortBackoff {
		return fmt.Errorf("%w: long backoff must exceed short backoff", domain.ErrInvalidConfig)
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
