package provider

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lazo-pipeline/internal/app/model"
	"lazo-pipeline/internal/app/routing"
)

func TestConfigManager_LoadConfig_Default(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-env")

	config, err := NewConfigManager(filepath.Join(t.TempDir(), "missing.yaml")).LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "gsk-env", config.Providers["groq"].Auth.APIKey)
	assert.Equal(t, "gsk-env", config.Analyzers["groq-llama"].Auth.APIKey)
	assert.True(t, config.Providers["deepgram"].Enabled)
	assert.False(t, config.Providers["openai"].Enabled)
}

func TestConfigManager_LoadConfig_File(t *testing.T) {
	t.Setenv("DG_KEY", "dg-secret")
	path := filepath.Join(t.TempDir(), "providers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
providers:
  deepgram:
    type: deepgram
    enabled: true
    auth:
      api_key: ${DG_KEY}
    settings:
      model: nova-3
    performance:
      timeout_sec: 30
routing:
  transcription:
    - plan: pro
      high_precision: false
      backend: deepgram
`), 0o644))

	config, err := NewConfigManager(path).LoadConfig()
	require.NoError(t, err)

	dg := config.Providers["deepgram"]
	assert.Equal(t, "dg-secret", dg.Auth.APIKey)
	assert.Equal(t, "nova-3", dg.SettingString("model", "nova-2"))
	assert.Equal(t, "es", dg.SettingString("language", "es"))
	assert.Equal(t, 30.0, dg.Timeout(0).Seconds())

	routes, err := config.TranscriptionRoutes()
	require.NoError(t, err)
	backend, err := routes.Backend(model.PlanPro, false)
	require.NoError(t, err)
	assert.Equal(t, "deepgram", backend)
	backend, err = routes.Backend(model.PlanFree, false)
	require.NoError(t, err)
	assert.Equal(t, "groq", backend)
}

func TestConfigManager_LoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "missing type", content: "providers:\n  groq:\n    enabled: true\n"},
		{name: "negative timeout", content: "analyzers:\n  gemini:\n    type: gemini\n    performance:\n      timeout_sec: -1\n"},
		{name: "broken yaml", content: "providers: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "providers.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := NewConfigManager(path).LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestProviderConfiguration_AnalysisRoutes_InvalidPlan(t *testing.T) {
	config := &ProviderConfiguration{Routing: RoutingConfig{
		Analysis: []routing.Rule{{Plan: "gold", Backend: "gemini"}},
	}}
	_, err := config.AnalysisRoutes()
	assert.Error(t, err)
}
