package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (CAMSHIP_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("server-host", os.Getenv("CAMSHIP_SERVER_HOST"), &cfg.ServerHost)
	s.setString("server-path", os.Getenv("CAMSHIP_SERVER_PATH"), &cfg.ServerPath)
	s.setString("auth-token", os.Getenv("CAMSHIP_AUTH_TOKEN"), &cfg.AuthToken)
	s.setString("device-id", os.Getenv("CAMSHIP_DEVICE_ID"), &cfg.DeviceID)
	s.setString("device-type", os.Getenv("CAMSHIP_DEVICE_TYPE"), &cfg.DeviceType)
	s.setString("state-dir", os.Getenv("CAMSHIP_STATE_DIR"), &cfg.StateDir)

	if err := s.setIntFromString("server-port", os.Getenv("CAMSHIP_SERVER_PORT"), &cfg.ServerPort); err != nil {
		return err
	}
	if err := s.setIntFromString("camera-device", os.Getenv("CAMSHIP_CAMERA_DEVICE"), &cfg.CameraDevice); err != nil {
		return err
	}
	if err := s.setIntFromString("frame-width", os.Getenv("CAMSHIP_FRAME_WIDTH"), &cfg.FrameWidth); err != nil {
		return err
	}
	if err := s.setIntFromString("frame-height", os.Getenv("CAMSHIP_FRAME_HEIGHT"), &cfg.FrameHeight); err != nil {
		return err
	}
	if err := s.setIntFromString("jpeg-quality", os.Getenv("CAMSHIP_JPEG_QUALITY"), &cfg.JPEGQuality); err != nil {
		return err
	}
	if err := s.setIntFromString("target-fps", os.Getenv("CAMSHIP_TARGET_FPS"), &cfg.TargetFPS); err != nil {
		return err
	}
	if err := s.setIntFromString("max-attempts", os.Getenv("CAMSHIP_MAX_ATTEMPTS"), &cfg.MaxAttempts); err != nil {
		return err
	}

	if err := s.setDuration("heartbeat-interval", os.Getenv("CAMSHIP_HEARTBEAT_INTERVAL"), &cfg.HeartbeatInterval); err != nil {
		return err
	}
	if err := s.setDuration("short-backoff", os.Getenv("CAMSHIP_SHORT_BACKOFF"), &cfg.ShortBackoff); err != nil {
		return err
	}
	if err := s.setDuration("long-backoff", os.Getenv("CAMSHIP_LONG_BACKOFF"), &cfg.LongBackoff); err != nil {
		return err
	}

	s.setBoolFromString("secure", os.Getenv("CAMSHIP_SECURE"), &cfg.Secure)
	s.setBoolFromString("mock-camera", os.Getenv("CAMSHIP_MOCK_CAMERA"), &cfg.MockCamera)

	return nil
}
