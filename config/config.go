package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DirName is the per-user directory holding config.json
const DirName = ".describe"

// Config represents the saved defaults
type Config struct {
	DefaultProvider string  `json:"default_provider"`
	DefaultModel    string  `json:"default_model"`
	Temperature     float32 `json:"temperature,omitempty"`
	MaxTokens       int     `json:"max_tokens,omitempty"`
}

// Keys lists the settable configuration keys in display order
var Keys = []string{"provider", "model", "temperature", "max_tokens"}

// Manager handles configuration persistence
type Manager struct {
	configPath string
	config     *Config
}

// NewManager creates a config manager rooted at ~/.describe
func NewManager() (*Manager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewManagerAt(filepath.Join(homeDir, DirName))
}

// NewManagerAt creates a config manager storing config.json under dir
func NewManagerAt(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	m := &Manager{
		configPath: filepath.Join(dir, "config.json"),
		config:     &Config{},
	}

	if err := m.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return m, nil
}

// Path returns the config file location
func (m *Manager) Path() string {
	return m.configPath
}

// Load reads the configuration from disk
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, m.config); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	return nil
}

// Save writes the configuration to disk
func (m *Manager) Save() error {
	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Snapshot returns a copy of the current configuration
func (m *Manager) Snapshot() Config {
	return *m.config
}

// GetDefaultProvider returns the default provider
func (m *Manager) GetDefaultProvider() string {
	if m.config.DefaultProvider == "" {
		return "openai"
	}
	return m.config.DefaultProvider
}

// GetDefaultModel returns the default model, empty meaning the provider's own default
func (m *Manager) GetDefaultModel() string {
	return m.config.DefaultModel
}

// SetDefaults updates the default provider and model
func (m *Manager) SetDefaults(provider, model string) error {
	m.config.DefaultProvider = provider
	m.config.DefaultModel = model
	return m.Save()
}

// Set updates one key from its string form and saves
func (m *Manager) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToLower(key) {
	case "provider":
		m.config.DefaultProvider = strings.ToLower(value)
	case "model":
		m.config.DefaultModel = value
	case "temperature":
		t, err := strconv.ParseFloat(value, 32)
		if err != nil || t <= 0 || t > 2 {
			return fmt.Errorf("temperature must be greater than 0 and at most 2, got %q", value)
		}
		m.config.Temperature = float32(t)
	case "max_tokens", "max-tokens":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("max_tokens must be a positive integer, got %q", value)
		}
		m.config.MaxTokens = n
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys, ", "))
	}
	return m.Save()
}
