// Package gemini implements pulse.Generator using Google Gemini.
package gemini

import (
	"context"

	"github.com/fwojciec/pulse"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// DefaultTemperature keeps extraction output stable across runs.
const DefaultTemperature = float32(0.2)

// Ensure Generator implements pulse.Generator at compile time.
var _ pulse.Generator = (*Generator)(nil)

// Generator implements pulse.Generator using the Gemini API.
type Generator struct {
	client      *genai.Client
	temperature float32
}

// Option configures a Generator.
type Option func(*Generator)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(g *Generator) {
		g.temperature = t
	}
}

// NewGenerator creates a new Generator.
func NewGenerator(client *genai.Client, opts ...Option) *Generator {
	g := &Generator{client: client, temperature: DefaultTemperature}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Temperature returns the sampling temperature sent with each request.
func (g *Generator) Temperature() float32 { return g.temperature }

// NewClient connects to the Gemini API with an API key.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, pulse.Errorf(pulse.EINVALID, "Gemini API key required")
	}
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

// Generate sends a single-turn request and returns the response text.
// API errors are returned as is.
func (g *Generator) Generate(ctx context.Context, req *pulse.GenerateRequest) (string, error) {
	if req.Model == "" {
		return "", pulse.Errorf(pulse.EINVALID, "model required")
	}
	if req.Prompt == "" {
		return "", pulse.Errorf(pulse.EINVALID, "prompt required")
	}

	result, err := g.client.Models.GenerateContent(ctx, req.Model,
		[]*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)},
		BuildConfig(req, g.temperature),
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", pulse.Errorf(pulse.EINTERNAL, "gemini returned nil result")
	}

	return result.Text(), nil
}

// BuildConfig returns the GenerateContentConfig for a request.
func BuildConfig(req *pulse.GenerateRequest, temperature float32) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	if req.JSON {
		config.ResponseMIMEType = "application/json"
	}
	return config
}
