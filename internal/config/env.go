package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	apperrors "lazo-pipeline/internal/app/errors"
)

// envPaths are tried in order; the first existing file wins
var envPaths = []string{
	".env",
	".env.local",
	"../.env",
	"../../.env",
}

// LoadEnv loads environment variables from the first .env file found.
// It returns the loaded path, or "" when none exists.
func LoadEnv() (string, error) {
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			return "", fmt.Errorf("error loading %s file: %w", envPath, err)
		}
		return envPath, nil
	}
	return "", nil
}

// APIKeys holds the backend credentials referenced by the provider configuration
type APIKeys struct {
	Groq       string
	Deepgram   string
	ElevenLabs string
	OpenAI     string
	Gemini     string
}

// GetAPIKeys retrieves backend keys from the environment and checks their format
func GetAPIKeys() (*APIKeys, error) {
	apiKeys := &APIKeys{
		Groq:       strings.TrimSpace(os.Getenv("GROQ_API_KEY")),
		Deepgram:   strings.TrimSpace(os.Getenv("DEEPGRAM_API_KEY")),
		ElevenLabs: strings.TrimSpace(os.Getenv("ELEVENLABS_API_KEY")),
		OpenAI:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Gemini:     strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
	}

	checks := []struct {
		key  string
		kind string
	}{
		{apiKeys.Groq, "Groq"},
		{apiKeys.OpenAI, "OpenAI"},
		{apiKeys.Gemini, "Gemini"},
	}
	for _, c := range checks {
		if c.key == "" {
			continue
		}
		if err := ValidateAPIKey(c.key, c.kind); err != nil {
			return nil, err
		}
	}
	return apiKeys, nil
}

// Available lists the backends with a configured key
func (k *APIKeys) Available() []string {
	var names []string
	for _, entry := range []struct {
		name string
		key  string
	}{
		{"groq", k.Groq},
		{"deepgram", k.Deepgram},
		{"elevenlabs", k.ElevenLabs},
		{"openai", k.OpenAI},
		{"gemini", k.Gemini},
	} {
		if entry.key != "" {
			names = append(names, entry.name)
		}
	}
	return names
}

// RequireStandardRoute fails fast when the key of the default standard route is missing
func RequireStandardRoute(apiKeys *APIKeys) error {
	if apiKeys.Groq == "" {
		return apperrors.Wrapf(apperrors.ErrMissingAPIKey, "the standard transcription and analysis route needs GROQ_API_KEY in the environment or .env file")
	}
	return nil
}
