package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/keysnap/keysnap/internal/api"
	"github.com/keysnap/keysnap/internal/capture"
	"github.com/keysnap/keysnap/internal/hotkey"
	"github.com/keysnap/keysnap/internal/logger"
	"github.com/keysnap/keysnap/internal/notify"
	"github.com/keysnap/keysnap/internal/stamp"
	"github.com/keysnap/keysnap/internal/xwin"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the capture daemon",
	Long: `Run the capture daemon: connect to the X server, grab the capture
hotkeys and write a PNG for every keystroke until interrupted.`,
	Example: `  # Run with the configured hotkeys (F11, shift-F11)
  keysnap run

  # Run with the HTTP API on port 8080
  keysnap run --port 8080

  # Write captures somewhere else for this session
  keysnap run --output-dir /tmp/shots

  # Run with debug logging
  keysnap run --log-level debug --pretty`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	configMgr, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel, viper.GetBool("pretty"))
	log := logger.WithComponent("daemon")

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	conn, err := xwin.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to X11: %w", err)
	}
	defer conn.Close()

	engine := capture.NewEngine(conn, cfg.OutputDir)
	if cfg.Stamp.Enabled {
		engine.SetAnnotator(stamp.New())
	}

	if cfg.Notify {
		notifier, err := notify.New()
		if err != nil {
			log.Warn().Err(err).Msg("Desktop notifications disabled")
		} else {
			defer notifier.Close()
			engine.OnSaved(notifier.CaptureSaved)
		}
	}

	if cfg.ServerPort > 0 {
		server := api.NewServer(engine, configMgr)
		engine.OnSaved(server.RecordResult)
		go func() {
			if err := server.Start(cfg.ServerPort); err != nil {
				log.Error().Err(err).Msg("API server stopped")
			}
		}()
	}

	hotkeys := hotkey.New(conn, engine)
	bindings := []hotkey.Binding{
		{Sequence: cfg.CaptureKey},
		{Sequence: cfg.CompositeKey, Composite: true},
	}
	if err := hotkeys.Install(bindings); err != nil {
		return fmt.Errorf("failed to install hotkeys: %w", err)
	}
	defer hotkeys.Uninstall()

	go conn.EventLoop()

	log.Info().
		Str("output_dir", cfg.OutputDir).
		Str("capture_key", cfg.CaptureKey).
		Str("composite_key", cfg.CompositeKey).
		Msg("keysnap is running, press Ctrl+C to stop")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	conn.Quit()
	log.Info().Msg("Shutting down")
	return nil
}
