package model

import (
	"fmt"
	"sync"

	"github.com/quilldocs/quill/internal/errors"
	"github.com/quilldocs/quill/internal/logger"
)

// Registry maps backend kinds to their providers. Unlike a model pool, it
// holds no constructed backends: exactly one backend is built per process
// lifetime, by the factory, at startup.
type Registry struct {
	providers map[BackendKind]Factory
	mu        sync.RWMutex
}

// Global registry instance
var defaultRegistry = &Registry{
	providers: make(map[BackendKind]Factory),
}

// RegisterProvider registers a backend provider for a kind
func RegisterProvider(kind BackendKind, provider Factory) error {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()

	if _, exists := defaultRegistry.providers[kind]; exists {
		return errors.New(errors.ErrorTypeConfig, "RegisterProvider",
			fmt.Sprintf("provider %s already registered", kind))
	}

	defaultRegistry.providers[kind] = provider
	logger.Debug("registered backend provider", "kind", kind)
	return nil
}

// GetProvider retrieves a registered provider
func GetProvider(kind BackendKind) (Factory, error) {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()

	provider, exists := defaultRegistry.providers[kind]
	if !exists {
		return nil, errors.ModelError("GetProvider",
			fmt.Sprintf("no provider registered for backend kind %q", kind))
	}

	return provider, nil
}

// ListProviders returns all registered backend kinds
func ListProviders() []BackendKind {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()

	kinds := make([]BackendKind, 0, len(defaultRegistry.providers))
	for kind := range defaultRegistry.providers {
		kinds = append(kinds, kind)
	}
	return kinds
}
