package deepgram

import (
	"fmt"
	"time"

	"lazo-pipeline/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider("deepgram", createDeepgramProvider)
}

func createDeepgramProvider(config provider.ProviderConfig) (provider.SessionTranscriber, error) {
	if config.Auth.APIKey == "" {
		return nil, fmt.Errorf("deepgram provider requires 'api_key' in auth configuration")
	}

	return NewDeepgramSTTProvider(DeepgramConfig{
		APIKey:      config.Auth.APIKey,
		BaseURL:     config.Auth.BaseURL,
		Model:       config.SettingString("model", "nova-2"),
		Language:    config.SettingString("language", ""),
		SmartFormat: config.SettingBool("smart_format", true),
		Timeout:     config.Timeout(10 * time.Minute),
	}), nil
}
