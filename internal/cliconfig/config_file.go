package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// fileConfig mirrors Config but uses strings for durations to make TOML friendly.
type fileConfig struct {
	ServerHost string `toml:"server_host"`
	ServerPort int    `toml:"server_port"`
	ServerPath string `toml:"server_path"`
	Secure     *bool  `toml:"secure"`
	AuthToken  string `toml:"auth_token"`

	DeviceID   string `toml:"device_id"`
	DeviceType string `toml:"device_type"`

	CameraDevice int   `toml:"camera_device"`
	FrameWidth   int   `toml:"frame_width"`
	FrameHeight  int   `toml:"frame_height"`
	JPEGQuality  int   `toml:"jpeg_quality"`
	MockCamera   *bool `toml:"mock_camera"`

	TargetFPS         int    `toml:"target_fps"`
	HeartbeatInterval string `toml:"heartbeat_interval"`

	MaxAttempts  int    `toml:"max_attempts"`
	ShortBackoff string `toml:"short_backoff"`
	LongBackoff  string `toml:"long_backoff"`

	StateDir string `toml:"state_dir"`
}

// loadFileConfig reads and parses a TOML config file.
func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// defaultConfigPath returns the default configuration file path.
// Returns ~/.camship/config.toml if user home directory is accessible.
func defaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".camship", "config.toml")
	}
	return ""
}

// applyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func applyFileConfig(cfg *Config, fc fileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("server-host", fc.ServerHost, &cfg.ServerHost)
	s.setInt("server-port", fc.ServerPort, &cfg.ServerPort)
	s.setString("server-path", fc.ServerPath, &cfg.ServerPath)
	s.setBool("secure", fc.Secure, &cfg.Secure)
	s.setString("auth-token", fc.AuthToken, &cfg.AuthToken)

	s.setString("device-id", fc.DeviceID, &cfg.DeviceID)
	s.setString("device-type", fc.DeviceType, &cfg.DeviceType)

	s.setInt("camera-device", fc.CameraDevice, &cfg.CameraDevice)
	s.setInt("frame-width", fc.FrameWidth, &cfg.FrameWidth)
	s.setInt("frame-height", fc.FrameHeight, &cfg.FrameHeight)
	s.setInt("jpeg-quality", fc.JPEGQuality, &cfg.JPEGQuality)
	s.setBool("mock-camera", fc.MockCamera, &cfg.MockCamera)

	s.setInt("target-fps", fc.TargetFPS, &cfg.TargetFPS)
	if err := s.setDuration("heartbeat-interval", fc.HeartbeatInterval, &cfg.HeartbeatInterval); err != nil {
		return err
	}

	s.setInt("max-attempts", fc.MaxAttempts, &cfg.MaxAttempts)
	if err := s.setDuration("short-backoff", fc.ShortBackoff, &cfg.ShortBackoff); err != nil {
		return err
	}
	if err := s.setDuration("long-backoff", fc.LongBackoff, &cfg.LongBackoff); err != nil {
		return err
	}

	s.setString("state-dir", fc.StateDir, &cfg.StateDir)

	return nil
}

// fileExists checks if a file exists at the given path.
func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// Exported functions for use from main package without exposing internal helpers.

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (fileConfig, error) {
	return loadFileConfig(path)
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	return defaultConfigPath()
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc fileConfig, changed map[string]bool) error {
	return applyFileConfig(cfg, fc, changed)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	return fileExists(p)
}
