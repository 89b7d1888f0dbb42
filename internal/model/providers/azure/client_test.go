package azure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quilldocs/quill/internal/model"
)

func TestProvider_Name(t *testing.T) {
	assert.Equal(t, "azure", NewProvider().Name())
}

func TestProvider_CreateModel(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		provider := NewProvider()
		provider.Endpoint = "https://myres.openai.azure.com"

		m, err := provider.CreateModel(model.ModelConfig{
			Kind:       model.BackendAzure,
			Deployment: "prod-gpt4",
			APIKey:     "test-api-key",
			MaxTokens:  4096,
		})

		require.NoError(t, err)
		azureModel, ok := m.(*Model)
		require.True(t, ok)
		assert.Equal(t, "prod-gpt4", azureModel.deployment)
		assert.Equal(t, "https://myres.openai.azure.com", azureModel.endpoint)
		assert.Equal(t, defaultAPIVersion, azureModel.apiVersion)
	})

	t.Run("credentials from environment", func(t *testing.T) {
		t.Setenv("AZURE_OPENAI_API_KEY", "env-key")
		t.Setenv("AZURE_OPENAI_ENDPOINT", "https://env.openai.azure.com")

		m, err := NewProvider().CreateModel(model.ModelConfig{
			Kind:       model.BackendAzure,
			Deployment: "prod-gpt4",
		})

		require.NoError(t, err)
		azureModel := m.(*Model)
		assert.Equal(t, "env-key", azureModel.apiKey)
		assert.Equal(t, "https://env.openai.azure.com", azureModel.endpoint)
	})

	t.Run("missing API key", func(t *testing.T) {
		t.Setenv("AZURE_OPENAI_API_KEY", "")

		m, err := NewProvider().CreateModel(model.ModelConfig{Kind: model.BackendAzure, Deployment: "prod"})

		assert.Error(t, err)
		assert.Nil(t, m)
		assert.Contains(t, err.Error(), "API key is required")
	})

	t.Run("missing endpoint", func(t *testing.T) {
		t.Setenv("AZURE_OPENAI_API_KEY", "key")
		t.Setenv("AZURE_OPENAI_ENDPOINT", "")

		m, err := NewProvider().CreateModel(model.ModelConfig{Kind: model.BackendAzure, Deployment: "prod"})

		assert.Error(t, err)
		assert.Nil(t, m)
		assert.Contains(t, err.Error(), "endpoint is required")
	})
}

func TestModel_Name(t *testing.T) {
	provider := NewProvider()
	provider.Endpoint = "https://myres.openai.azure.com"

	m, err := provider.CreateModel(model.ModelConfig{
		Kind:       model.BackendAzure,
		Deployment: "prod-gpt4",
		APIKey:     "test-api-key",
	})
	require.NoError(t, err)

	assert.Equal(t, "azure/prod-gpt4", m.Name())
}

func TestModel_RunPrompt(t *testing.T) {
	t.Run("deployment-routed request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "/openai/deployments/prod-gpt4/chat/completions", r.URL.Path)
			assert.Equal(t, defaultAPIVersion, r.URL.Query().Get("api-version"))
			assert.Equal(t, "test-api-key", r.Header.Get("api-key"))

			var req ChatCompletionRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req.Messages, 2)
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Equal(t, "user", req.Messages[1].Role)

			response := ChatCompletionResponse{
				Choices: []Choice{
					{Message: ChatMessage{Role: "assistant", Content: "documented"}, FinishReason: "stop"},
				},
				Usage: Usage{TotalTokens: 30},
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(response)
		}))
		defer server.Close()

		provider := NewProvider()
		provider.Endpoint = server.URL
		m, err := provider.CreateModel(model.ModelConfig{
			Kind:       model.BackendAzure,
			Deployment: "prod-gpt4",
			APIKey:     "test-api-key",
		})
		require.NoError(t, err)

		output, err := m.RunPrompt(context.Background(), model.PromptInput{
			SystemPrompt: "instructions",
			UserPrompt:   "code",
		})

		assert.NoError(t, err)
		assert.Equal(t, "documented", output.Response)
		assert.Equal(t, 30, output.TokensUsed)
		assert.Equal(t, "azure/prod-gpt4", output.Model)
	})

	t.Run("API error propagates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error": {"message": "quota exceeded"}}`))
		}))
		defer server.Close()

		provider := NewProvider()
		provider.Endpoint = server.URL
		m, err := provider.CreateModel(model.ModelConfig{
			Kind:       model.BackendAzure,
			Deployment: "prod-gpt4",
			APIKey:     "test-api-key",
		})
		require.NoError(t, err)

		_, err = m.RunPrompt(context.Background(), model.PromptInput{UserPrompt: "code"})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "API error 403")
	})
}
