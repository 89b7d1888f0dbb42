// Package generator orchestrates prompt construction and backend invocation
// for doc comment generation.
package generator

import (
	"context"

	"github.com/google/uuid"

	"github.com/quilldocs/quill/internal/logger"
	"github.com/quilldocs/quill/internal/model"
	"github.com/quilldocs/quill/internal/prompt"
)

// Generator holds the single backend constructed at startup and the prompt
// builder. The backend handle is read-only after construction; invocation is
// synchronous and blocking.
type Generator struct {
	backend model.Model
	builder *prompt.Builder
}

// New creates a generator bound to a constructed backend.
func New(backend model.Model) *Generator {
	return &Generator{
		backend: backend,
		builder: prompt.NewBuilder(),
	}
}

// Backend returns the backend handle the generator was constructed with.
func (g *Generator) Backend() model.Model {
	return g.backend
}

// Generate builds the instruction pair for the request and invokes the
// backend once, returning its raw textual output unmodified. Backend
// failures propagate to the caller; there is no retry and no validation of
// the response shape.
func (g *Generator) Generate(ctx context.Context, language, code string, mode prompt.Mode, existingDocstring string) (string, error) {
	system, user := g.builder.Build(prompt.Request{
		Language:          language,
		Code:              code,
		Mode:              mode,
		ExistingDocstring: existingDocstring,
	})

	requestID := uuid.NewString()
	logger.Debug("invoking backend", "request_id", requestID, "backend", g.backend.Name(),
		"language", language, "mode", mode)

	output, err := g.backend.RunPrompt(ctx, model.PromptInput{
		SystemPrompt: system,
		UserPrompt:   user,
		Temperature:  model.DefaultTemperature,
		Metadata:     map[string]string{"request_id": requestID},
	})
	if err != nil {
		return "", err
	}

	logger.Debug("backend responded", "request_id", requestID, "tokens", output.TokensUsed)
	return output.Response, nil
}
