// Package config handles Quill's configuration surface: yaml files, .env
// loading, and environment overrides.
package config

import (
	"github.com/quilldocs/quill/internal/model"
)

// Config represents the complete configuration for Quill
type Config struct {
	// Hosted chat model family; also drives the derived token budget
	Model string `yaml:"model"`

	// Backend selectors, mutually exclusive, first-match-wins in the
	// order local file, azure deployment, ollama server, hosted default
	LocalModel      string        `yaml:"local_model,omitempty"`
	AzureDeployment string        `yaml:"azure_deployment,omitempty"`
	Ollama          *OllamaConfig `yaml:"ollama,omitempty"`

	// Driver settings
	LineThreshold int    `yaml:"line_threshold"`
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`

	// Environment-sourced secrets and endpoints; never read from yaml
	Env EnvConfig `yaml:"-"`
}

// OllamaConfig represents the network-hosted local-model server selector
type OllamaConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// EnvConfig holds values sourced from the process environment
type EnvConfig struct {
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	AzureAPIKey   string `env:"AZURE_OPENAI_API_KEY"`
	AzureEndpoint string `env:"AZURE_OPENAI_ENDPOINT"`
	OllamaBaseURL string `env:"OLLAMA_BASE_URL"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Model:         model.GPT35,
		LineThreshold: 3,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// ToModelConfig resolves the backend selectors into a validated tagged
// backend configuration.
func (c *Config) ToModelConfig() (model.ModelConfig, error) {
	ollamaBaseURL := ""
	ollamaModel := ""
	if c.Ollama != nil {
		ollamaBaseURL = c.Ollama.BaseURL
		ollamaModel = c.Ollama.Model
	}
	if ollamaBaseURL == "" && c.Env.OllamaBaseURL != "" {
		ollamaBaseURL = c.Env.OllamaBaseURL
	}

	cfg := model.FromSelectors(c.LocalModel, c.AzureDeployment, ollamaBaseURL, ollamaModel, c.Model)

	switch cfg.Kind {
	case model.BackendHosted:
		cfg.APIKey = c.Env.OpenAIAPIKey
	case model.BackendAzure:
		cfg.APIKey = c.Env.AzureAPIKey
	}

	if err := cfg.Validate(); err != nil {
		return model.ModelConfig{}, err
	}

	return cfg, nil
}
