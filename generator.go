package pulse

import "context"

// GenerateRequest is a single structured-generation call.
type GenerateRequest struct {
	Model  string
	System string
	Prompt string

	// JSON requests a response that is a single JSON document.
	JSON bool
}

// Generator sends prompts to a language model.
type Generator interface {
	// Generate returns the model's response text. Service errors such as
	// authentication, quota or unknown-model failures are returned as is.
	Generate(ctx context.Context, req *GenerateRequest) (string, error)
}
