package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetRegistry clears the default registry and restores it after the test
func resetRegistry(t *testing.T) {
	t.Helper()
	original := defaultRegistry.providers
	defaultRegistry.providers = make(map[BackendKind]Factory)
	t.Cleanup(func() {
		defaultRegistry.providers = original
	})
}

func TestRegisterProvider(t *testing.T) {
	resetRegistry(t)

	mockFactory := &MockFactory{}

	t.Run("register new provider", func(t *testing.T) {
		err := RegisterProvider(BackendHosted, mockFactory)
		assert.NoError(t, err)

		provider, err := GetProvider(BackendHosted)
		assert.NoError(t, err)
		assert.Equal(t, mockFactory, provider)
	})

	t.Run("register duplicate provider", func(t *testing.T) {
		err := RegisterProvider(BackendHosted, mockFactory)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("get unregistered kind", func(t *testing.T) {
		provider, err := GetProvider(BackendAzure)
		assert.Error(t, err)
		assert.Nil(t, provider)
		assert.Contains(t, err.Error(), "no provider registered")
	})
}

func TestListProviders(t *testing.T) {
	resetRegistry(t)

	require.NoError(t, RegisterProvider(BackendHosted, &MockFactory{}))
	require.NoError(t, RegisterProvider(BackendOllama, &MockFactory{}))

	kinds := ListProviders()
	assert.Len(t, kinds, 2)
	assert.Contains(t, kinds, BackendHosted)
	assert.Contains(t, kinds, BackendOllama)
}

func TestDefaultFactory_CreateModel(t *testing.T) {
	t.Run("dispatches to the provider for the active kind", func(t *testing.T) {
		resetRegistry(t)

		config := ModelConfig{Kind: BackendHosted, Model: GPT4}
		mockModel := &MockModel{}
		mockModel.On("Name").Return("openai:gpt-4")

		mockProvider := &MockFactory{}
		mockProvider.On("CreateModel", config).Return(mockModel, nil)
		require.NoError(t, RegisterProvider(BackendHosted, mockProvider))

		m, err := NewFactory().CreateModel(config)

		assert.NoError(t, err)
		assert.Equal(t, mockModel, m)
		mockProvider.AssertExpectations(t)
	})

	t.Run("rejects invalid configuration before dispatch", func(t *testing.T) {
		resetRegistry(t)

		mockProvider := &MockFactory{}
		require.NoError(t, RegisterProvider(BackendHosted, mockProvider))

		m, err := NewFactory().CreateModel(ModelConfig{Kind: BackendHosted})

		assert.Error(t, err)
		assert.Nil(t, m)
		mockProvider.AssertNotCalled(t, "CreateModel")
	})

	t.Run("fails for unregistered backend kind", func(t *testing.T) {
		resetRegistry(t)

		m, err := NewFactory().CreateModel(ModelConfig{Kind: BackendOllama, BaseURL: "http://h:11434", Model: "codellama"})

		assert.Error(t, err)
		assert.Nil(t, m)
	})
}
