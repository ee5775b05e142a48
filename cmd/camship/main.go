package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/camlabs/camship/internal/cliconfig"
	"github.com/camlabs/camship/pkg/camship"
	"github.com/camlabs/camship/pkg/log"
	"github.com/camlabs/camship/plugins/configwatcher"
	"github.com/camlabs/camship/plugins/memwatch"
)

const helpBanner = `
  ██████╗ █████╗ ███╗   ███╗███████╗██╗  ██╗██╗██████╗
 ██╔════╝██╔══██╗████╗ ████║██╔════╝██║  ██║██║██╔══██╗
 ██║     ███████║██╔████╔██║███████╗███████║██║██████╔╝
 ██║     ██╔══██║██║╚██╔╝██║╚════██║██╔══██║██║██╔═══╝
 ╚██████╗██║  ██║██║ ╚═╝ ██║███████║██║  ██║██║██║
  ╚═════╝╚═╝  ╚═╝╚═╝     ╚═╝╚══════╝╚═╝  ╚═╝╚═╝╚═╝
`

const helpDescription = `
Stream JPEG camera frames and telemetry to your CCTV server over WebSocket.

Highlights:
  - Paces capture to a target frame rate and reports FPS once a second.
  - Reconnects with bounded backoff and a degraded long wait, never exits.
  - Configure via file (~/.camship/config.toml), CAMSHIP_* env, or flags.
  - Run with --check to verify network, server auth, and camera in one shot.
`

var longHelp = strings.TrimSpace(helpBanner) + "\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  camship --server-host cctv.example.com --auth-token <token>
  camship --config $HOME/.camship/config.toml --mock-camera --check
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	zl := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "camship",
		Short:   "Stream JPEG camera frames and telemetry to your CCTV server over WebSocket",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default ~/.camship/config.toml),
			// then env, then flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Environment variables (CAMSHIP_*) override file config but
			// are overridden by flags (checked via changed map).
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cliconfig.LoadDeviceInfo(&cfg); err != nil {
				return err
			}

			// Log configuration (masking the auth token)
			logCfg := cfg
			if len(logCfg.AuthToken) > 0 {
				logCfg.AuthToken = "*****"
			}
			zl.Info().Interface("config", logCfg).Msg("configuration")

			logger := log.NewZerologAdapterWithLogger(zl)

			agent, err := camship.New(cfg,
				camship.WithLogger(logger),
				configwatcher.WithDefaultConfigWatcher(),
				memwatch.WithDefaultMemWatch(),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Check {
				if err := agent.Check(ctx); err != nil {
					return err
				}
				zl.Info().Msg("all checks passed")
				return nil
			}

			if err := agent.Start(ctx); err != nil {
				return err
			}
			zl.Info().Str("device", cfg.DeviceID).Msg("streaming started")

			<-ctx.Done()
			zl.Info().Msg("shutting down")

			if err := agent.Stop(); err != nil {
				zl.Warn().Err(err).Msg("shutdown was not graceful")
			}
			return nil
		},
	}

	f := root.Flags()
	f.StringVar(&cfgPath, "config", "", "path to config file (default ~/.camship/config.toml)")
	f.StringVar(&cfg.ServerHost, "server-host", cfg.ServerHost, "stream server hostname")
	f.IntVar(&cfg.ServerPort, "server-port", cfg.ServerPort, "stream server port")
	f.StringVar(&cfg.ServerPath, "server-path", cfg.ServerPath, "WebSocket path on the server")
	f.BoolVar(&cfg.Secure, "secure", cfg.Secure, "use wss:// instead of ws://")
	f.StringVar(&cfg.AuthToken, "auth-token", cfg.AuthToken, "bearer token for the stream server")
	f.StringVar(&cfg.DeviceID, "device-id", cfg.DeviceID, "device identifier (generated and persisted when empty)")
	f.StringVar(&cfg.DeviceType, "device-type", cfg.DeviceType, "device type reported to the server")
	f.IntVar(&cfg.CameraDevice, "camera-device", cfg.CameraDevice, "video capture device index")
	f.IntVar(&cfg.FrameWidth, "frame-width", cfg.FrameWidth, "capture width in pixels")
	f.IntVar(&cfg.FrameHeight, "frame-height", cfg.FrameHeight, "capture height in pixels")
	f.IntVar(&cfg.JPEGQuality, "jpeg-quality", cfg.JPEGQuality, "JPEG encode quality (1-100)")
	f.BoolVar(&cfg.MockCamera, "mock-camera", cfg.MockCamera, "use a synthetic frame source instead of hardware")
	f.IntVar(&cfg.TargetFPS, "target-fps", cfg.TargetFPS, "target frames per second")
	f.DurationVar(&cfg.HeartbeatInterval, "heartbeat-interval", cfg.HeartbeatInterval, "heartbeat message interval")
	f.IntVar(&cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "reconnect attempts before the degraded wait")
	f.DurationVar(&cfg.ShortBackoff, "short-backoff", cfg.ShortBackoff, "wait between reconnect attempts")
	f.DurationVar(&cfg.LongBackoff, "long-backoff", cfg.LongBackoff, "degraded wait after attempts are exhausted")
	f.StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "directory for persisted device identity")
	f.BoolVar(&cfg.Check, "check", cfg.Check, "run connectivity and camera diagnostics, then exit")

	if err := root.Execute(); err != nil {
		zl.Error().Err(err).Msg("camship failed")
		// Give the console writer a beat to flush.
		time.Sleep(10 * time.Millisecond)
		os.Exit(1)
	}
}
