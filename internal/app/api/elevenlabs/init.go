package elevenlabs

import (
	"fmt"
	"time"

	"lazo-pipeline/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider("elevenlabs", createElevenLabsProvider)
}

func createElevenLabsProvider(config provider.ProviderConfig) (provider.SessionTranscriber, error) {
	if config.Auth.APIKey == "" {
		return nil, fmt.Errorf("elevenlabs provider requires 'api_key' in auth configuration")
	}

	return NewElevenLabsSTTProvider(ElevenLabsConfig{
		APIKey:  config.Auth.APIKey,
		BaseURL: config.Auth.BaseURL,
		Model:   config.SettingString("model", "scribe_v1"),
		Timeout: config.Timeout(10 * time.Minute),
	}), nil
}
