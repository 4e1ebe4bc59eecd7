package openai

import (
	"github.com/sashabaranov/go-openai"
)

// GroqBaseURL is the OpenAI-compatible endpoint served by Groq
const GroqBaseURL = "https://api.groq.com/openai/v1"

// NewClient builds a go-openai client, optionally pointed at an OpenAI-compatible base URL
func NewClient(apiKey, baseURL string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(config)
}
