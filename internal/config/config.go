// Package config loads and persists the daemon configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/keysnap/keysnap/internal/logger"
)

// Config represents the application configuration
type Config struct {
	// OutputDir is where captures are written.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// CaptureKey and CompositeKey are xgbutil key descriptions for the
	// single-window and window-pair captures.
	CaptureKey   string `json:"capture_key" yaml:"capture_key"`
	CompositeKey string `json:"composite_key" yaml:"composite_key"`

	// ServerPort enables the HTTP API when non-zero.
	ServerPort int `json:"server_port" yaml:"server_port"`

	LogLevel string `json:"log_level" yaml:"log_level"`

	// Notify posts a desktop notification for each saved capture.
	Notify bool `json:"notify" yaml:"notify"`

	Stamp StampConfig `json:"stamp" yaml:"stamp"`
}

// StampConfig configures the caption stamped onto saved captures.
type StampConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// Manager handles configuration
type Manager struct {
	configPath string
	config     *Config
	mu         sync.RWMutex
}

// NewManager creates a configuration manager backed by the given file, or
// by ~/.config/keysnap/config.yaml when the path is empty. A missing file
// is created with defaults.
func NewManager(configFile string) (*Manager, error) {
	configPath := configFile
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(homeDir, ".config", "keysnap", "config.yaml")
	}

	m := &Manager{
		configPath: configPath,
	}

	if err := m.load(); err != nil {
		if os.IsNotExist(err) {
			logger.WithComponent("config").Info().
				Str("path", m.configPath).
				Msg("Config file not found, creating new config")
			m.config = getDefaults()
			if err := m.Save(); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	logger.WithComponent("config").Info().
		Str("path", m.configPath).
		Str("output_dir", m.config.OutputDir).
		Msg("Config loaded")

	return m, nil
}

// getDefaults returns default configuration
func getDefaults() *Config {
	return &Config{
		OutputDir:    defaultOutputDir(),
		CaptureKey:   "F11",
		CompositeKey: "shift-F11",
		ServerPort:   0,
		LogLevel:     "info",
		Notify:       true,
		Stamp:        StampConfig{Enabled: false},
	}
}

func defaultOutputDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, "Pictures", "keysnap")
}

// load reads the configuration from disk
func (m *Manager) load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	// Fill fields a hand-edited file may have left empty.
	defaults := getDefaults()
	if cfg.OutputDir == "" {
		cfg.OutputDir = defaults.OutputDir
	}
	if cfg.CaptureKey == "" {
		cfg.CaptureKey = defaults.CaptureKey
	}
	if cfg.CompositeKey == "" {
		cfg.CompositeKey = defaults.CompositeKey
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}

	m.mu.Lock()
	m.config = &cfg
	m.mu.Unlock()

	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return getDefaults()
	}

	cfg := *m.config
	return &cfg
}

// Save saves the current configuration to disk
func (m *Manager) Save() error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	if cfg == nil {
		cfg = getDefaults()
	}

	configDir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return err
	}

	logger.WithComponent("config").Debug().
		Str("path", m.configPath).
		Msg("Config saved")
	return nil
}

// Update replaces the entire configuration and persists it.
func (m *Manager) Update(cfg *Config) error {
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return m.Save()
}

// SetOutputDir sets the capture output directory
func (m *Manager) SetOutputDir(dir string) error {
	m.mu.Lock()
	m.config.OutputDir = dir
	m.mu.Unlock()
	return m.Save()
}

// GetOutputDir gets the capture output directory
func (m *Manager) GetOutputDir() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.OutputDir
}

// SetLogLevel sets the log level
func (m *Manager) SetLogLevel(level string) error {
	m.mu.Lock()
	m.config.LogLevel = level
	m.mu.Unlock()
	return m.Save()
}

// GetLogLevel gets the log level
func (m *Manager) GetLogLevel() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.LogLevel
}

// GetConfigPath returns the path to the config file
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// GetConfigDir returns the config directory path
func (m *Manager) GetConfigDir() string {
	return filepath.Dir(m.configPath)
}
