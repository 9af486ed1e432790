package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model name is configured for the gemini provider.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiGateway talks to the Gemini API.
type GeminiGateway struct {
	client *genai.Client
	model  string
}

// NewGemini creates a gateway for the Gemini API.
func NewGemini(ctx context.Context, apiKey, modelName string) (*GeminiGateway, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	return &GeminiGateway{client: client, model: modelName}, nil
}

// Generate sends the prompt as a single text content.
func (g *GeminiGateway) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	temperature := opts.Temperature
	config := &genai.GenerateContentConfig{Temperature: &temperature}
	if opts.Format == FormatJSON {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("model returned no candidates")
	}
	return resp.Text(), nil
}
