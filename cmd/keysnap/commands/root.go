package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/keysnap/keysnap/internal/config"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "keysnap",
		Short: "keysnap - Hotkey window capture for X11",
		Long: `keysnap captures the focused window to a PNG the moment a hotkey is
released, with a composite mode that lays the window over the one
behind it.

Features:
  • Global capture hotkeys (F11, shift-F11 by default)
  • Window-pair composite captures
  • Collision-free file names derived from window titles
  • Persistent configuration
  • REST API for remote triggering`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/keysnap/config.yaml)")
	rootCmd.PersistentFlags().String("output-dir", "", "directory captures are written to")
	rootCmd.PersistentFlags().Int("port", 0, "HTTP API port (0 disables the API)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("pretty", false, "human-readable log output")

	// Bind flags to viper
	viper.BindPFlag("output_dir", rootCmd.PersistentFlags().Lookup("output-dir"))
	viper.BindPFlag("server_port", rootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("pretty", rootCmd.PersistentFlags().Lookup("pretty"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// loadConfig builds the config manager and applies flag overrides to the
// returned copy. Overrides are for this invocation only and are not
// written back to the config file.
func loadConfig() (*config.Manager, *config.Config, error) {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg := configMgr.Get()
	if viper.IsSet("output_dir") {
		if dir := viper.GetString("output_dir"); dir != "" {
			cfg.OutputDir = dir
		}
	}
	if viper.IsSet("server_port") {
		if port := viper.GetInt("server_port"); port > 0 {
			cfg.ServerPort = port
		}
	}
	if viper.IsSet("log_level") {
		if level := viper.GetString("log_level"); level != "" {
			cfg.LogLevel = level
		}
	}
	return configMgr, cfg, nil
}
