package provider

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
	"lazo-pipeline/internal/app/routing"
)

// ProviderConfiguration is the YAML document describing backends and routing
type ProviderConfiguration struct {
	// Transcription backends keyed by instance name
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Language-model backends keyed by instance name
	Analyzers map[string]ProviderConfig `yaml:"analyzers"`

	// Routing overrides applied on top of the default tables
	Routing RoutingConfig `yaml:"routing"`
}

// ProviderConfig represents configuration for a single backend
type ProviderConfig struct {
	// Backend type (deepgram, elevenlabs, groq, openai, whisper-server, openai-chat, gemini)
	Type string `yaml:"type"`

	Enabled bool `yaml:"enabled"`

	// Backend-specific settings
	Settings map[string]interface{} `yaml:"settings"`

	Auth AuthConfig `yaml:"auth,omitempty"`

	Performance PerformanceConfig `yaml:"performance,omitempty"`
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	// API key (can be environment variable reference like ${GROQ_API_KEY})
	APIKey string `yaml:"api_key,omitempty"`

	// Base URL override, used for OpenAI-compatible endpoints
	BaseURL string `yaml:"base_url,omitempty"`

	Headers map[string]string `yaml:"headers,omitempty"`
}

// PerformanceConfig represents performance-related configuration
type PerformanceConfig struct {
	TimeoutSec int `yaml:"timeout_sec,omitempty"`
}

// RoutingConfig holds per-stage routing overrides
type RoutingConfig struct {
	Transcription []routing.Rule `yaml:"transcription"`
	Analysis      []routing.Rule `yaml:"analysis"`
}

// Timeout returns the configured request timeout or def
func (c ProviderConfig) Timeout(def time.Duration) time.Duration {
	if c.Performance.TimeoutSec > 0 {
		return time.Duration(c.Performance.TimeoutSec) * time.Second
	}
	return def
}

// SettingString reads a string setting or returns def
func (c ProviderConfig) SettingString(key, def string) string {
	if v, ok := c.Settings[key].(string); ok && v != "" {
		return v
	}
	return def
}

// SettingBool reads a boolean setting or returns def
func (c ProviderConfig) SettingBool(key string, def bool) bool {
	if v, ok := c.Settings[key].(bool); ok {
		return v
	}
	return def
}

// ConfigManager manages provider configuration
type ConfigManager struct {
	configPath string
	config     *ProviderConfiguration
}

// NewConfigManager creates a new configuration manager
func NewConfigManager(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// LoadConfig loads configuration from the YAML file, falling back to defaults when it does not exist
func (cm *ConfigManager) LoadConfig() (*ProviderConfiguration, error) {
	if cm.configPath == "" {
		return cm.useDefault()
	}
	if _, err := os.Stat(cm.configPath); os.IsNotExist(err) {
		return cm.useDefault()
	}

	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config ProviderConfiguration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	expandEnvironmentVariables(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cm.config = &config
	return &config, nil
}

func (cm *ConfigManager) useDefault() (*ProviderConfiguration, error) {
	config := DefaultConfiguration()
	expandEnvironmentVariables(config)
	cm.config = config
	return config, nil
}

// GetConfig returns the current configuration
func (cm *ConfigManager) GetConfig() *ProviderConfiguration {
	return cm.config
}

// DefaultConfiguration mirrors the production backend set
func DefaultConfiguration() *ProviderConfiguration {
	return &ProviderConfiguration{
		Providers: map[string]ProviderConfig{
			"groq": {
				Type:    "groq",
				Enabled: true,
				Auth:    AuthConfig{APIKey: "${GROQ_API_KEY}"},
				Settings: map[string]interface{}{
					"model": "whisper-large-v3",
				},
				Performance: PerformanceConfig{TimeoutSec: 600},
			},
			"deepgram": {
				Type:    "deepgram",
				Enabled: true,
				Auth:    AuthConfig{APIKey: "${DEEPGRAM_API_KEY}"},
				Settings: map[string]interface{}{
					"model":    "nova-2",
					"language": "es",
				},
				Performance: PerformanceConfig{TimeoutSec: 600},
			},
			"elevenlabs": {
				Type:    "elevenlabs",
				Enabled: false,
				Auth:    AuthConfig{APIKey: "${ELEVENLABS_API_KEY}"},
				Settings: map[string]interface{}{
					"model": "scribe_v1",
				},
			},
			"openai": {
				Type:    "openai",
				Enabled: false,
				Auth:    AuthConfig{APIKey: "${OPENAI_API_KEY}"},
				Settings: map[string]interface{}{
					"model": "whisper-1",
				},
			},
			"whisper-server": {
				Type:    "whisper-server",
				Enabled: false,
				Auth:    AuthConfig{BaseURL: "${WHISPER_SERVER_URL}"},
				Settings: map[string]interface{}{
					"language": "es",
				},
			},
		},
		Analyzers: map[string]ProviderConfig{
			"groq-llama": {
				Type:    "openai-chat",
				Enabled: true,
				Auth: AuthConfig{
					APIKey:  "${GROQ_API_KEY}",
					BaseURL: "https://api.groq.com/openai/v1",
				},
				Settings: map[string]interface{}{
					"model": "llama-3.3-70b-versatile",
				},
				Performance: PerformanceConfig{TimeoutSec: 180},
			},
			"gemini": {
				Type:    "gemini",
				Enabled: true,
				Auth:    AuthConfig{APIKey: "${GEMINI_API_KEY}"},
				Settings: map[string]interface{}{
					"model": "gemini-2.5-pro",
				},
				Performance: PerformanceConfig{TimeoutSec: 300},
			},
		},
	}
}

// expandEnvironmentVariables expands ${VAR} references in credentials
func expandEnvironmentVariables(config *ProviderConfiguration) {
	expand := func(entries map[string]ProviderConfig) {
		for name, c := range entries {
			c.Auth.APIKey = os.ExpandEnv(c.Auth.APIKey)
			c.Auth.BaseURL = os.ExpandEnv(c.Auth.BaseURL)
			for key, value := range c.Auth.Headers {
				c.Auth.Headers[key] = os.ExpandEnv(value)
			}
			entries[name] = c
		}
	}
	expand(config.Providers)
	expand(config.Analyzers)
}

func validateConfig(config *ProviderConfiguration) error {
	check := func(kind string, entries map[string]ProviderConfig) error {
		for name, c := range entries {
			if c.Type == "" {
				return fmt.Errorf("%s '%s' has no type specified", kind, name)
			}
			if c.Performance.TimeoutSec < 0 {
				return fmt.Errorf("%s '%s' has invalid timeout", kind, name)
			}
		}
		return nil
	}
	if err := check("provider", config.Providers); err != nil {
		return err
	}
	return check("analyzer", config.Analyzers)
}

// TranscriptionRoutes applies configured overrides to the default transcription table
func (c *ProviderConfiguration) TranscriptionRoutes() (routing.Table, error) {
	return routing.DefaultTranscription().WithRules(c.Routing.Transcription)
}

// AnalysisRoutes applies configured overrides to the default analysis table
func (c *ProviderConfiguration) AnalysisRoutes() (routing.Table, error) {
	return routing.DefaultAnalysis().WithRules(c.Routing.Analysis)
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".lazo", "providers.yaml")
	}
	return "./config/providers.yaml"
}
