package model

import (
	"github.com/quilldocs/quill/internal/errors"
	"github.com/quilldocs/quill/internal/logger"
)

// DefaultFactory is the default backend factory implementation. It validates
// the configuration, then delegates construction to the provider registered
// for the active backend kind.
type DefaultFactory struct{}

// NewFactory creates a new backend factory.
func NewFactory() Factory {
	return &DefaultFactory{}
}

// CreateModel constructs the single concrete backend for the configuration.
func (f *DefaultFactory) CreateModel(config ModelConfig) (Model, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	provider, err := GetProvider(config.Kind)
	if err != nil {
		return nil, err
	}

	m, err := provider.CreateModel(config)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeModel, "CreateModel", "failed to create backend")
	}

	logger.Info("constructed LLM backend", "kind", config.Kind, "backend", m.Name())
	return m, nil
}
