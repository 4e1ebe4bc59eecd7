package chat

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	openaiclient "lazo-pipeline/internal/app/api/openai"
)

// Completer runs single-turn chat completions against an OpenAI-compatible endpoint
type Completer struct {
	client *openai.Client
	model  string
}

// NewCompleter creates a completer for model; baseURL may point at Groq or any compatible API
func NewCompleter(apiKey, baseURL, model string) *Completer {
	return &Completer{
		client: openaiclient.NewClient(apiKey, baseURL),
		model:  model,
	}
}

// Model returns the configured model name
func (c *Completer) Model() string {
	return c.model
}

// CompleteJSON sends one system and one user message and requests a JSON object back
func (c *Completer) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	return c.complete(ctx, system, user, &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	})
}

// Complete sends one system and one user message and returns free text
func (c *Completer) Complete(ctx context.Context, system, user string) (string, error) {
	return c.complete(ctx, system, user, nil)
}

func (c *Completer) complete(ctx context.Context, system, user string, format *openai.ChatCompletionResponseFormat) (string, error) {
	request := openai.ChatCompletionRequest{
		Model:          c.model,
		ResponseFormat: format,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: system,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: user,
			},
		},
	}
	resp, err := c.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
