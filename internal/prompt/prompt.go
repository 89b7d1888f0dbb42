// Package prompt builds the mode- and language-specific instruction set for
// documentation generation.
package prompt

import (
	"fmt"
	"strings"
)

// Mode selects the output shape requested from the model.
type Mode string

const (
	// ModeDocOnly returns only the comment block
	ModeDocOnly Mode = "doc"
	// ModeInline returns the full method with comments woven through the body
	ModeInline Mode = "inline"
	// ModeSourceEmbedded returns the full method with a header doc comment
	ModeSourceEmbedded Mode = "source"
)

// Request describes one generation call. Ephemeral.
type Request struct {
	Language          string
	Code              string
	Mode              Mode
	ExistingDocstring string
}

// The verbatim-preservation directive shared by the Inline and
// SourceEmbedded modes.
const preserveDirective = "IMPORTANT: Ensure that absolutely no part of the original function is " +
	"omitted or modified in your response. Every line, including imports, comments, and variable " +
	"bindings, must be retained in the output. This is crucial to satisfy my use case."

// The worked example for a language with non-C-style comment delimiters,
// embedded to disambiguate delimiter choice.
const haskellExample = `Example comment for the Haskell language:
-- | This is the first line of a demo comment.
-- This is the second line of a demo comment.
The correct comment delimiter for the Haskell language is '-- ', where the first line of the comment is prefixed with '-- | '.`

// Builder constructs instruction and content strings for generation
// requests. Stateless; identical requests yield byte-identical output.
type Builder struct{}

// NewBuilder creates a new prompt builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build returns the system instructions and the user message for a request.
// The instructions and the code to document are kept as two separate roles
// so role-aware backends can distinguish them.
func (b *Builder) Build(req Request) (system string, user string) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Act as a %s language expert. ", req.Language)
	fmt.Fprintf(&sb, "Add a detailed doc comment to the %s method provided by the user. ", req.Language)
	sb.WriteString("The doc comment should describe what the method does. ")
	sb.WriteString(b.modeInstructions(req))
	sb.WriteString(" Don't include any explanations in your response.")

	if strings.EqualFold(req.Language, "haskell") {
		sb.WriteString(" Also supply the missing type signature alongside the doc comment.")
	}

	return sb.String(), req.Code
}

// modeInstructions returns the instruction block for the requested
// documentation mode.
func (b *Builder) modeInstructions(req Request) string {
	switch req.Mode {
	case ModeInline:
		return "Add inline comments to the method body where it makes sense. " +
			"Return the complete method implementation with the doc comment as a markdown code block. " +
			preserveDirective

	case ModeSourceEmbedded:
		instructions := "Return the complete method implementation with the doc comment as a markdown code block. " +
			preserveDirective
		if strings.TrimSpace(req.ExistingDocstring) != "" {
			instructions += " The following docstring is already provided, please reuse its content as much as " +
				"possible and revise it to reflect any detail that is missing in the existing docstring: " +
				req.ExistingDocstring
		} else {
			instructions += " If the method already contains a docstring, reuse its content in the doc comment."
		}
		return instructions

	default: // ModeDocOnly
		return "Return the doc comment as a markdown block. " +
			"If the doc comment consists of more than one sentence then please follow multi-line comment formatting. " +
			fmt.Sprintf("IMPORTANT: Please avoid writing any code in the markdown block. Ensure that the markdown "+
				"block contains only doc comments and enclose them appropriately using the correct comment "+
				"delimiters for the %s language.\n", req.Language) +
			haskellExample + "\n" +
			"Strictly avoid writing detailed comments for self-explanatory functions. " +
			"IMPORTANT: Strictly refrain from detailing input parameters or specifying what the function takes " +
			"as input and its definition. This is crucial to meet my use case. " +
			"IMPORTANT: Please follow only the specified format. This is very important to satisfy my use case."
	}
}
