package whisper

import (
	"fmt"

	"github.com/sashabaranov/go-openai"
	openaiclient "lazo-pipeline/internal/app/api/openai"
	"lazo-pipeline/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider("groq", createGroqProvider)
	provider.RegisterProvider("openai", createOpenAIProvider)
}

// createGroqProvider builds the segment-shaped backend served by Groq's Whisper deployment
func createGroqProvider(config provider.ProviderConfig) (provider.SessionTranscriber, error) {
	if config.Auth.APIKey == "" {
		return nil, fmt.Errorf("groq provider requires 'api_key' in auth configuration")
	}
	baseURL := config.Auth.BaseURL
	if baseURL == "" {
		baseURL = openaiclient.GroqBaseURL
	}
	return NewRemoteTranscriber("groq", "Groq Whisper", Config{
		APIKey:         config.Auth.APIKey,
		BaseURL:        baseURL,
		Model:          config.SettingString("model", "whisper-large-v3"),
		ResponseFormat: string(openai.AudioResponseFormatVerboseJSON),
		Language:       config.SettingString("language", ""),
		Prompt:         config.SettingString("prompt", ""),
	}), nil
}

// createOpenAIProvider builds the flat-text OpenAI Whisper backend
func createOpenAIProvider(config provider.ProviderConfig) (provider.SessionTranscriber, error) {
	if config.Auth.APIKey == "" {
		return nil, fmt.Errorf("openai provider requires 'api_key' in auth configuration")
	}
	return NewRemoteTranscriber("openai", "OpenAI Whisper API", Config{
		APIKey:         config.Auth.APIKey,
		BaseURL:        config.Auth.BaseURL,
		Model:          config.SettingString("model", openai.Whisper1),
		ResponseFormat: config.SettingString("response_format", string(openai.AudioResponseFormatText)),
		Language:       config.SettingString("language", ""),
		Prompt:         config.SettingString("prompt", ""),
	}), nil
}
