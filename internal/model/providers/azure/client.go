// Package azure provides the enterprise-deployment-routed backend for Quill
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/quilldocs/quill/internal/errors"
	"github.com/quilldocs/quill/internal/logger"
	"github.com/quilldocs/quill/internal/model"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultAPIVersion = "2023-07-01-preview"
)

// Provider implements the Azure deployment-routed model provider
type Provider struct {
	// Endpoint is the Azure resource endpoint, e.g. https://myres.openai.azure.com
	Endpoint string
	// APIVersion overrides the api-version query parameter
	APIVersion string
	client     *http.Client
}

// NewProvider creates a new Azure provider
func NewProvider() *Provider {
	return &Provider{
		client: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// CreateModel creates a deployment-routed model instance
func (p *Provider) CreateModel(config model.ModelConfig) (model.Model, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("AZURE_OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.ConfigError("CreateModel", "Azure API key is required")
	}

	endpoint := p.Endpoint
	if endpoint == "" {
		endpoint = os.Getenv("AZURE_OPENAI_ENDPOINT")
	}
	if endpoint == "" {
		return nil, errors.ConfigError("CreateModel", "Azure endpoint is required")
	}

	apiVersion := p.APIVersion
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}

	return &Model{
		apiKey:     apiKey,
		deployment: config.Deployment,
		maxTokens:  config.MaxTokens,
		endpoint:   endpoint,
		apiVersion: apiVersion,
		client: &http.Client{
			Timeout: defaultTimeout,
		},
	}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "azure"
}

// Model represents an Azure deployment-routed model instance
type Model struct {
	apiKey     string
	deployment string
	maxTokens  int
	endpoint   string
	apiVersion string
	client     *http.Client
}

// RunPrompt executes a prompt against the deployment's chat completions API
func (m *Model) RunPrompt(ctx context.Context, input model.PromptInput) (model.PromptOutput, error) {
	start := time.Now()

	req := m.buildRequest(input)

	reqBody, err := json.Marshal(req)
	if err != nil {
		return model.PromptOutput{}, errors.Wrap(err, errors.ErrorTypeModel, "RunPrompt", "failed to marshal request")
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		m.endpoint, m.deployment, m.apiVersion)

	logger.Debug("sending request to Azure deployment", "deployment", m.deployment)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return model.PromptOutput{}, errors.Wrap(err, errors.ErrorTypeNetwork, "RunPrompt", "failed to create request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", m.apiKey)
	httpReq.Header.Set("User-Agent", "Quill/1.0")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return model.PromptOutput{}, errors.Wrap(err, errors.ErrorTypeNetwork, "RunPrompt", "request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.PromptOutput{}, errors.Wrap(err, errors.ErrorTypeNetwork, "RunPrompt", "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		return model.PromptOutput{}, errors.New(errors.ErrorTypeNetwork, "RunPrompt",
			fmt.Sprintf("API error %d: %s", resp.StatusCode, string(respBody)))
	}

	var apiResp ChatCompletionResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return model.PromptOutput{}, errors.Wrap(err, errors.ErrorTypeModel, "RunPrompt", "failed to parse response")
	}

	if len(apiResp.Choices) == 0 {
		return model.PromptOutput{}, errors.New(errors.ErrorTypeModel, "RunPrompt", "no choices in response")
	}

	choice := apiResp.Choices[0]

	output := model.PromptOutput{
		Response:   choice.Message.Content,
		TokensUsed: apiResp.Usage.TotalTokens,
		Model:      m.Name(),
		Metadata: map[string]string{
			"finish_reason": choice.FinishReason,
		},
	}

	duration := time.Since(start)
	logger.Debug("Azure request completed", "duration", duration, "tokens", apiResp.Usage.TotalTokens)

	return output, nil
}

// GetCapabilities returns the model's capabilities
func (m *Model) GetCapabilities() model.ModelCapabilities {
	return model.ModelCapabilities{
		MaxTokens:         m.maxTokens,
		SupportsRoles:     true,
		SupportsStreaming: false,
	}
}

// Name returns the provider-prefixed deployment identity
func (m *Model) Name() string {
	return fmt.Sprintf("azure/%s", m.deployment)
}

// buildRequest builds the chat completions request
func (m *Model) buildRequest(input model.PromptInput) ChatCompletionRequest {
	messages := []ChatMessage{}

	if input.SystemPrompt != "" {
		messages = append(messages, ChatMessage{
			Role:    "system",
			Content: input.SystemPrompt,
		})
	}

	if input.UserPrompt != "" {
		messages = append(messages, ChatMessage{
			Role:    "user",
			Content: input.UserPrompt,
		})
	}

	maxTokens := input.MaxTokens
	if maxTokens == 0 {
		maxTokens = m.maxTokens
	}

	temperature := float32(model.DefaultTemperature)
	if input.Temperature > 0 {
		temperature = float32(input.Temperature)
	}

	return ChatCompletionRequest{
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

// Azure chat completions API types. The deployment is addressed in the URL
// path, so the request body carries no model field.

// ChatCompletionRequest represents a chat completion request
type ChatCompletionRequest struct {
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
}

// ChatMessage represents a chat message
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionResponse represents a chat completion response
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice represents a completion choice
type Choice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// Usage represents token usage information
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
