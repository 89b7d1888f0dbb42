// Package openai provides the hosted chat-completion backend for Quill
package openai

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
	defaultBaseURL = "https://api.openai.com/v1"
	defaultTimeout = 30 * time.Second
)

// Provider implements the hosted chat model provider
type Provider struct {
	// BaseURL overrides the hosted API endpoint; used by tests
	BaseURL string
	client  *http.Client
}

// NewProvider creates a new hosted chat provider
func NewProvider() *Provider {
	return &Provider{
		client: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// CreateModel creates a hosted chat model instance
func (p *Provider) CreateModel(config model.ModelConfig) (model.Model, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.ConfigError("CreateModel", "OpenAI API key is required")
	}

	baseURL := p.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Model{
		apiKey:    apiKey,
		modelName: config.Model,
		maxTokens: config.MaxTokens,
		baseURL:   baseURL,
		client: &http.Client{
			Timeout: defaultTimeout,
		},
	}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "openai"
}

// Model represents a hosted chat model instance
type Model struct {
	apiKey    string
	modelName string
	maxTokens int
	baseURL   string
	client    *http.Client
}

// RunPrompt executes a prompt against the chat completions API
func (m *Model) RunPrompt(ctx context.Context, input model.PromptInput) (model.PromptOutput, error) {
	start := time.Now()

	req := m.buildRequest(input)

	reqBody, err := json.Marshal(req)
	if err != nil {
		return model.PromptOutput{}, errors.Wrap(err, errors.ErrorTypeModel, "RunPrompt", "failed to marshal request")
	}

	logger.Debug("sending request to hosted chat API", "model", m.modelName, "tokens_limit", req.MaxTokens)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", m.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return model.PromptOutput{}, errors.Wrap(err, errors.ErrorTypeNetwork, "RunPrompt", "failed to create request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", m.apiKey))
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
		Model:      m.modelName,
		Metadata: map[string]string{
			"finish_reason": choice.FinishReason,
			"model":         apiResp.Model,
		},
	}

	duration := time.Since(start)
	logger.Debug("hosted chat request completed", "duration", duration, "tokens", apiResp.Usage.TotalTokens)

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

// Name returns the model identifier
func (m *Model) Name() string {
	return fmt.Sprintf("openai:%s", m.modelName)
}

// buildRequest builds the chat completions request with the instruction and
// content parts as separate roles
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
		Model:       m.modelName,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

// Chat completions API types

// ChatCompletionRequest represents a chat completion request
type ChatCompletionRequest struct {
	Model       string        `json:"model"`
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
	Object  string   `json:"object"`
	Created int64    `json:"created"`
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
