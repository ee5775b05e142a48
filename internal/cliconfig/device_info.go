package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// deviceIDFile is the file under StateDir that pins the device identity
// across restarts.
const deviceIDFile = "device-id"

// LoadDeviceInfo resolves the device identity. Explicit configuration
// wins; otherwise the persisted identity is reused, and a fresh UUID is
// generated and persisted on first run.
func LoadDeviceInfo(cfg *Config) error {
	if cfg.DeviceID != "" {
		return nil
	}
	if cfg.StateDir == "" {
		cfg.DeviceID = uuid.NewString()
		return nil
	}

	path := filepath.Join(cfg.StateDir, deviceIDFile)
	if b, err := os.ReadFile(path); err == nil {
		id := strings.TrimSpace(string(b))
		if id != "" {
			cfg.DeviceID = id
			return nil
		}
	}

	id := uuid.NewString()
	if err := writeDeviceID(cfg.StateDir, id); err != nil {
		return fmt.Errorf("persist device id: %w", err)
	}
	cfg.DeviceID = id
	return nil
}

// writeDeviceID persists the identity atomically (temp file + rename) so
// a crash cannot leave a truncated identity behind.
func writeDeviceID(dir, id string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	path := filepath.Join(dir, deviceIDFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(id+"\n"), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
