// Package ollama provides the network-hosted local-model backend for Quill
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quilldocs/quill/internal/errors"
	"github.com/quilldocs/quill/internal/logger"
	"github.com/quilldocs/quill/internal/model"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultTimeout = 120 * time.Second // Longer timeout for local inference
)

// Provider implements the Ollama model provider
type Provider struct {
	client *http.Client
}

// NewProvider creates a new Ollama provider
func NewProvider() *Provider {
	return &Provider{
		client: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// CreateModel creates an Ollama model instance. Models belonging to a
// long-context family get their context budget raised to the family ceiling
// regardless of the configured default.
func (p *Provider) CreateModel(config model.ModelConfig) (model.Model, error) {
	if config.Model == "" {
		return nil, errors.ConfigError("CreateModel", "model name required for Ollama")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	numCtx := config.MaxTokens
	if ceiling, ok := model.LongContextCeiling(config.Model); ok {
		numCtx = ceiling
	}

	return &Model{
		modelName: config.Model,
		baseURL:   baseURL,
		numCtx:    numCtx,
		client: &http.Client{
			Timeout: defaultTimeout,
		},
	}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "ollama"
}

// Model represents an Ollama model instance
type Model struct {
	modelName string
	baseURL   string
	numCtx    int
	client    *http.Client
}

// RunPrompt executes a prompt against the Ollama generate API
func (m *Model) RunPrompt(ctx context.Context, input model.PromptInput) (model.PromptOutput, error) {
	start := time.Now()

	req := m.buildRequest(input)

	reqBody, err := json.Marshal(req)
	if err != nil {
		return model.PromptOutput{}, errors.Wrap(err, errors.ErrorTypeModel, "RunPrompt", "failed to marshal request")
	}

	logger.Debug("sending request to Ollama", "model", m.modelName, "num_ctx", m.numCtx)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", m.baseURL+"/api/generate", bytes.NewReader(reqBody))
	if err != nil {
		return model.PromptOutput{}, errors.Wrap(err, errors.ErrorTypeNetwork, "RunPrompt", "failed to create request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", "Quill/1.0")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return model.PromptOutput{}, errors.Wrap(err, errors.ErrorTypeNetwork, "RunPrompt", "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return model.PromptOutput{}, errors.New(errors.ErrorTypeNetwork, "RunPrompt",
			fmt.Sprintf("API error %d: %s", resp.StatusCode, string(respBody)))
	}

	// Ollama returns streaming JSON responses, read until the final one
	var finalResp GenerateResponse
	decoder := json.NewDecoder(resp.Body)

	for {
		var response GenerateResponse
		if err := decoder.Decode(&response); err != nil {
			if err == io.EOF {
				break
			}
			return model.PromptOutput{}, errors.Wrap(err, errors.ErrorTypeModel, "RunPrompt", "failed to parse response")
		}

		finalResp.Response += response.Response
		if response.Done {
			finalResp.Done = true
			finalResp.PromptEvalCount = response.PromptEvalCount
			finalResp.EvalCount = response.EvalCount
			break
		}
	}

	if !finalResp.Done {
		return model.PromptOutput{}, errors.New(errors.ErrorTypeModel, "RunPrompt", "incomplete response from Ollama")
	}

	output := model.PromptOutput{
		Response:   finalResp.Response,
		TokensUsed: finalResp.PromptEvalCount + finalResp.EvalCount,
		Model:      m.modelName,
		Metadata: map[string]string{
			"prompt_eval_count": fmt.Sprintf("%d", finalResp.PromptEvalCount),
			"eval_count":        fmt.Sprintf("%d", finalResp.EvalCount),
		},
	}

	duration := time.Since(start)
	logger.Debug("Ollama request completed", "duration", duration, "tokens", output.TokensUsed)

	return output, nil
}

// GetCapabilities returns the model's capabilities
func (m *Model) GetCapabilities() model.ModelCapabilities {
	return model.ModelCapabilities{
		MaxTokens:         m.numCtx,
		SupportsRoles:     false, // roles are flattened into a single prompt
		SupportsStreaming: true,
	}
}

// Name returns the model identifier
func (m *Model) Name() string {
	return fmt.Sprintf("ollama:%s", m.modelName)
}

// buildRequest flattens the instruction and content roles into the single
// prompt the generate API expects
func (m *Model) buildRequest(input model.PromptInput) GenerateRequest {
	var prompt strings.Builder

	if input.SystemPrompt != "" {
		prompt.WriteString("System: ")
		prompt.WriteString(input.SystemPrompt)
		prompt.WriteString("\n\n")
	}

	if input.UserPrompt != "" {
		prompt.WriteString("User: ")
		prompt.WriteString(input.UserPrompt)
		prompt.WriteString("\n")
	}

	prompt.WriteString("\nAssistant: ")

	req := GenerateRequest{
		Model:  m.modelName,
		Prompt: prompt.String(),
		Stream: false,
		Options: map[string]interface{}{
			"num_ctx": m.numCtx,
		},
	}

	if input.Temperature > 0 {
		req.Options["temperature"] = input.Temperature
	}

	return req
}

// Ollama API types

// GenerateRequest represents a generate request
type GenerateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// GenerateResponse represents a generate response
type GenerateResponse struct {
	Model           string `json:"model"`
	CreatedAt       string `json:"created_at"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
	EvalCount       int    `json:"eval_count,omitempty"`
}
