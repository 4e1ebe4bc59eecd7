package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.5-pro"

// contentGenerator is the subset of *genai.Models the completer calls
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Completer runs single-turn prompts against the Gemini API
type Completer struct {
	models contentGenerator
	model  string
}

// NewCompleter creates a Gemini API client for model
func NewCompleter(ctx context.Context, apiKey, model string) (*Completer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini requires an API key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return newCompleter(client.Models, model), nil
}

func newCompleter(models contentGenerator, model string) *Completer {
	if model == "" {
		model = DefaultModel
	}
	return &Completer{models: models, model: model}
}

// Model returns the configured model name
func (c *Completer) Model() string {
	return c.model
}

// CompleteJSON requests an application/json response
func (c *Completer) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	return c.generate(ctx, system, user, "application/json")
}

// Complete requests free text
func (c *Completer) Complete(ctx context.Context, system, user string) (string, error) {
	return c.generate(ctx, system, user, "")
}

func (c *Completer) generate(ctx context.Context, system, user, mimeType string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: mimeType,
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(user), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}
