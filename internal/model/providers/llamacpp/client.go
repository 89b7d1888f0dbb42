// Package llamacpp provides the local-file backend for Quill, running a
// quantized model file through the llama.cpp command-line interface.
package llamacpp

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/quilldocs/quill/internal/errors"
	"github.com/quilldocs/quill/internal/logger"
	"github.com/quilldocs/quill/internal/model"
)

// DefaultBinary is the llama.cpp inference binary looked up on PATH.
const DefaultBinary = "llama-cli"

// Installer offers to install the native inference interface when it is
// missing. Decline and failure are both non-fatal to backend construction.
type Installer interface {
	Ensure() error
}

// Provider implements the local model file provider
type Provider struct {
	// Binary overrides the inference binary name; used by tests
	Binary    string
	installer Installer
}

// NewProvider creates a new local-file provider. installer may be nil, in
// which case a missing native interface surfaces at first invocation.
func NewProvider(installer Installer) *Provider {
	return &Provider{
		Binary:    DefaultBinary,
		installer: installer,
	}
}

// CreateModel creates a local model instance. If the native interface is
// absent the installer is consulted once; installation failure is reported
// but construction still proceeds, so a later invocation may fail instead.
func (p *Provider) CreateModel(config model.ModelConfig) (model.Model, error) {
	binary := p.Binary
	if binary == "" {
		binary = DefaultBinary
	}

	if _, err := exec.LookPath(binary); err != nil && p.installer != nil {
		if err := p.installer.Ensure(); err != nil {
			logger.Warn("native inference interface unavailable, first invocation will fail",
				"binary", binary, "error", err)
		}
	}

	return &Model{
		binary:      binary,
		modelPath:   config.LocalPath,
		maxTokens:   config.MaxTokens,
		temperature: config.Temperature,
	}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "llamacpp"
}

// Model represents a local model file instance
type Model struct {
	binary      string
	modelPath   string
	maxTokens   int
	temperature float64
}

// RunPrompt executes a prompt by invoking the inference binary as a blocking
// subprocess. A missing binary propagates here rather than at construction.
func (m *Model) RunPrompt(ctx context.Context, input model.PromptInput) (model.PromptOutput, error) {
	start := time.Now()

	binPath, err := exec.LookPath(m.binary)
	if err != nil {
		return model.PromptOutput{}, errors.Wrap(errors.ErrNativeInterfaceMissing,
			errors.ErrorTypeModel, "RunPrompt", fmt.Sprintf("%s not found on PATH", m.binary))
	}

	prompt := m.buildPrompt(input)

	maxTokens := input.MaxTokens
	if maxTokens == 0 {
		maxTokens = m.maxTokens
	}

	temperature := m.temperature
	if input.Temperature > 0 {
		temperature = input.Temperature
	}

	args := []string{
		"-m", m.modelPath,
		"-p", prompt,
		"-n", fmt.Sprintf("%d", maxTokens),
		"--temp", fmt.Sprintf("%.2f", temperature),
		"--no-display-prompt",
	}

	logger.Debug("running local inference", "binary", m.binary, "model_path", m.modelPath)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binPath, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return model.PromptOutput{}, errors.Wrap(err, errors.ErrorTypeModel, "RunPrompt",
			fmt.Sprintf("local inference failed: %s", strings.TrimSpace(stderr.String())))
	}

	response := strings.TrimSpace(stdout.String())

	duration := time.Since(start)
	logger.Debug("local inference completed", "duration", duration)

	return model.PromptOutput{
		Response: response,
		Model:    m.Name(),
		Metadata: map[string]string{
			"model_path": m.modelPath,
		},
	}, nil
}

// GetCapabilities returns the model's capabilities
func (m *Model) GetCapabilities() model.ModelCapabilities {
	return model.ModelCapabilities{
		MaxTokens:         m.maxTokens,
		SupportsRoles:     false,
		SupportsStreaming: false,
	}
}

// Name returns the model identifier
func (m *Model) Name() string {
	return fmt.Sprintf("llamacpp:%s", m.modelPath)
}

// buildPrompt flattens the instruction and content roles into a single
// prompt string for the completion-style binary
func (m *Model) buildPrompt(input model.PromptInput) string {
	var prompt strings.Builder

	if input.SystemPrompt != "" {
		prompt.WriteString(input.SystemPrompt)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString(input.UserPrompt)

	return prompt.String()
}
