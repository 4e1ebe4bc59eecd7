package whisper_server

import (
	"fmt"
	"time"

	"lazo-pipeline/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider("whisper-server", createWhisperServerProvider)
}

func createWhisperServerProvider(config provider.ProviderConfig) (provider.SessionTranscriber, error) {
	baseURL := config.SettingString("base_url", config.Auth.BaseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("whisper-server provider requires 'base_url' setting")
	}

	temperature := 0.0
	if v, ok := config.Settings["temperature"].(float64); ok {
		temperature = v
	}

	p := NewWhisperServerProvider(WhisperServerConfig{
		BaseURL:       baseURL,
		InferencePath: config.SettingString("inference_path", "/inference"),
		Language:      config.SettingString("language", ""),
		Temperature:   temperature,
		Timeout:       config.Timeout(10 * time.Minute),
		Headers:       config.Auth.Headers,
	})
	if err := p.ValidateConfiguration(); err != nil {
		return nil, err
	}
	return p, nil
}
