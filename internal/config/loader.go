package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading
type Loader struct {
	searchPaths []string
	dotEnvPath  string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		searchPaths: []string{
			".quill/config.yml",
			".quill/config.yaml",
			"quill.yml",
			"quill.yaml",
		},
		dotEnvPath: ".env",
	}
}

// Load loads configuration from file or returns defaults, then applies the
// process environment on top.
func (l *Loader) Load(configFile string) (*Config, error) {
	config, err := l.loadFile(configFile)
	if err != nil {
		return nil, err
	}

	if err := l.applyEnv(config); err != nil {
		return nil, err
	}

	if err := l.validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadFile resolves and parses the yaml config file
func (l *Loader) loadFile(configFile string) (*Config, error) {
	// If specific config file is provided, use it
	if configFile != "" {
		return l.loadFromFile(configFile)
	}

	// Search for config file in default locations
	for _, path := range l.searchPaths {
		if _, err := os.Stat(path); err == nil {
			config, err := l.loadFromFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
			}
			return config, nil
		}
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err == nil {
		globalConfig := filepath.Join(homeDir, ".quill", "config.yml")
		if _, err := os.Stat(globalConfig); err == nil {
			config, err := l.loadFromFile(globalConfig)
			if err != nil {
				return nil, fmt.Errorf("failed to load global config: %w", err)
			}
			return config, nil
		}
	}

	return Default(), nil
}

// loadFromFile loads configuration from a specific file
func (l *Loader) loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with default config so unset keys keep their defaults
	config := Default()

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// applyEnv loads a .env file when present and parses environment overrides
func (l *Loader) applyEnv(config *Config) error {
	if err := godotenv.Load(l.dotEnvPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load %s: %w", l.dotEnvPath, err)
	}

	if err := env.Parse(&config.Env); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	return nil
}

// validate checks the configuration and fills remaining defaults
func (l *Loader) validate(config *Config) error {
	if config.Model == "" {
		return fmt.Errorf("hosted model must be specified")
	}

	if config.Ollama != nil && config.Ollama.Model == "" {
		return fmt.Errorf("ollama selector requires a model name")
	}

	if config.LineThreshold <= 0 {
		config.LineThreshold = 3
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}

	return nil
}

// Save saves the configuration to a file
func (l *Loader) Save(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
