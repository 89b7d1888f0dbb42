// Package model defines the LLM backend abstraction and its configuration.
package model

import (
	"context"
	"strings"

	"github.com/quilldocs/quill/internal/errors"
)

// BackendKind identifies which concrete LLM backend answers a request.
type BackendKind string

const (
	// BackendHosted is the hosted chat-completion API (plain model name)
	BackendHosted BackendKind = "hosted"
	// BackendAzure is an enterprise deployment routed through Azure
	BackendAzure BackendKind = "azure"
	// BackendLocalFile runs a local quantized model file through the native interface
	BackendLocalFile BackendKind = "local"
	// BackendOllama is a network-hosted local-model server
	BackendOllama BackendKind = "ollama"
)

// Hosted chat model families
const (
	GPT35    = "gpt-3.5-turbo"
	GPT3516K = "gpt-3.5-turbo-16k"
	GPT4     = "gpt-4"
)

// DefaultTemperature is the generation temperature used for every backend.
const DefaultTemperature = 0.8

// MaxTokensFor derives the output token budget from the hosted model family.
// The base family gets a conservative budget, everything else an enlarged one.
func MaxTokensFor(hostedModel string) int {
	if hostedModel == GPT35 {
		return 2048
	}
	return 4096
}

// longContextCeilings maps model-family name prefixes to the documented
// context ceiling for families known to support very large context. Evaluated
// in order, first prefix match wins.
var longContextCeilings = []struct {
	prefix  string
	ceiling int
}{
	{"mixtral", 32768},
	{"codellama", 16384},
	{"gpt-3.5-turbo-16k", 16384},
}

// LongContextCeiling returns the documented context ceiling for a model name
// belonging to a long-context family, matched by name prefix.
func LongContextCeiling(modelName string) (int, bool) {
	for _, f := range longContextCeilings {
		if strings.HasPrefix(modelName, f.prefix) {
			return f.ceiling, true
		}
	}
	return 0, false
}

// ModelConfig is a tagged choice of exactly one backend kind plus shared
// generation parameters. Constructed once at process start and immutable
// thereafter.
type ModelConfig struct {
	Kind BackendKind

	// Selector fields; only the ones belonging to Kind may be set.
	Model      string // hosted chat model name, or Ollama model name
	Deployment string // Azure deployment name
	LocalPath  string // path to a local model weight file
	BaseURL    string // Ollama server base URL

	// Shared generation parameters.
	APIKey      string
	Temperature float64
	MaxTokens   int
}

// Validate checks that exactly one backend variant is active and that no
// other selector's fields leak into the configuration.
func (c ModelConfig) Validate() error {
	const op = "ModelConfig.Validate"

	switch c.Kind {
	case BackendHosted:
		if c.Model == "" {
			return errors.ConfigError(op, "hosted backend requires a model name")
		}
		if c.Deployment != "" || c.LocalPath != "" || c.BaseURL != "" {
			return errors.ConfigError(op, "hosted backend must not carry other backend selectors")
		}
	case BackendAzure:
		if c.Deployment == "" {
			return errors.ConfigError(op, "azure backend requires a deployment name")
		}
		if c.Model != "" || c.LocalPath != "" || c.BaseURL != "" {
			return errors.ConfigError(op, "azure backend must not carry other backend selectors")
		}
	case BackendLocalFile:
		if c.LocalPath == "" {
			return errors.ConfigError(op, "local backend requires a model file path")
		}
		if c.Model != "" || c.Deployment != "" || c.BaseURL != "" {
			return errors.ConfigError(op, "local backend must not carry other backend selectors")
		}
	case BackendOllama:
		if c.BaseURL == "" || c.Model == "" {
			return errors.ConfigError(op, "ollama backend requires a base URL and model name")
		}
		if c.Deployment != "" || c.LocalPath != "" {
			return errors.ConfigError(op, "ollama backend must not carry other backend selectors")
		}
	default:
		return errors.ConfigError(op, "no backend selected")
	}

	return nil
}

// FromSelectors builds a ModelConfig from the legacy flat selector surface,
// resolving conflicts first-match-wins in the order local file, azure
// deployment, ollama server, hosted default. The token budget is derived from
// the hosted model family in every case.
func FromSelectors(localPath, deployment, ollamaBaseURL, ollamaModel, hostedModel string) ModelConfig {
	cfg := ModelConfig{
		Temperature: DefaultTemperature,
		MaxTokens:   MaxTokensFor(hostedModel),
	}

	switch {
	case localPath != "":
		cfg.Kind = BackendLocalFile
		cfg.LocalPath = localPath
	case deployment != "":
		cfg.Kind = BackendAzure
		cfg.Deployment = deployment
	case ollamaModel != "":
		cfg.Kind = BackendOllama
		cfg.BaseURL = ollamaBaseURL
		cfg.Model = ollamaModel
	default:
		cfg.Kind = BackendHosted
		cfg.Model = hostedModel
	}

	return cfg
}

// PromptInput represents the input to a model prompt. Instructions and the
// code to document travel as two separate roles so role-aware backends can
// distinguish them.
type PromptInput struct {
	SystemPrompt string            // System-level instructions
	UserPrompt   string            // The code to document
	MaxTokens    int               // Maximum tokens for response
	Temperature  float64           // Temperature for response generation
	Metadata     map[string]string // Additional metadata
}

// PromptOutput represents the output from a model.
type PromptOutput struct {
	Response   string            // The model's raw response text
	TokensUsed int               // Number of tokens used
	Model      string            // Model identifier used
	Metadata   map[string]string // Additional metadata
}

// Model is the interface that all LLM backends must implement.
type Model interface {
	// RunPrompt executes a prompt and returns the response
	RunPrompt(ctx context.Context, input PromptInput) (PromptOutput, error)

	// GetCapabilities returns the model's capabilities
	GetCapabilities() ModelCapabilities

	// Name returns the backend identifier
	Name() string
}

// ModelCapabilities describes what a model can do.
type ModelCapabilities struct {
	MaxTokens         int
	SupportsRoles     bool // distinct system/user roles on the wire
	SupportsStreaming bool
}

// Factory creates a Model instance based on configuration
type Factory interface {
	CreateModel(config ModelConfig) (Model, error)
}
