package common

import (
	"fmt"
	"net/http"
	"time"

	"lazo-pipeline/internal/app/api/provider"
)

// BaseProvider provides common implementation for all transcription backends
type BaseProvider struct {
	Name             string
	DisplayName      string
	Shape            provider.ResultKind
	SupportedFormats []provider.AudioFormat
	MaxFileSizeMB    int
	DefaultModel     string
	SupportsDiarize  bool
	RequiresAPIKey   bool
}

// NewBaseProvider creates a new base provider
func NewBaseProvider(name, displayName string, shape provider.ResultKind) BaseProvider {
	return BaseProvider{
		Name:        name,
		DisplayName: displayName,
		Shape:       shape,
		SupportedFormats: []provider.AudioFormat{
			provider.FormatWAV,
			provider.FormatMP3,
			provider.FormatM4A,
			provider.FormatWEBM,
		},
		RequiresAPIKey: true,
	}
}

// GetProviderInfo returns provider information
func (b BaseProvider) GetProviderInfo() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:             b.Name,
		DisplayName:      b.DisplayName,
		Shape:            b.Shape,
		SupportedFormats: b.SupportedFormats,
		MaxFileSizeMB:    b.MaxFileSizeMB,
		DefaultModel:     b.DefaultModel,
		SupportsDiarize:  b.SupportsDiarize,
		RequiresAPIKey:   b.RequiresAPIKey,
	}
}

// CheckAudio rejects empty or oversized input before any network call
func (b BaseProvider) CheckAudio(audio *provider.AudioInput) error {
	if audio == nil || len(audio.Data) == 0 {
		return &provider.TranscriptionError{
			Code:     provider.CodeInvalidInput,
			Message:  "audio payload is empty",
			Provider: b.Name,
		}
	}
	if b.MaxFileSizeMB > 0 && len(audio.Data) > b.MaxFileSizeMB*1024*1024 {
		return &provider.TranscriptionError{
			Code:        provider.CodeFileTooLarge,
			Message:     fmt.Sprintf("file size exceeds %dMB limit", b.MaxFileSizeMB),
			Provider:    b.Name,
			Suggestions: []string{"Reduce file size", "Split into smaller chunks"},
		}
	}
	return nil
}

// NetworkError wraps a transport failure
func (b BaseProvider) NetworkError(err error) error {
	return &provider.TranscriptionError{
		Code:      provider.CodeNetworkError,
		Message:   fmt.Sprintf("failed to call %s API: %v", b.DisplayName, err),
		Provider:  b.Name,
		Retryable: true,
	}
}

// ParseError wraps an undecodable response body
func (b BaseProvider) ParseError(err error) error {
	return &provider.TranscriptionError{
		Code:     provider.CodeResponseParse,
		Message:  fmt.Sprintf("failed to parse API response: %v", err),
		Provider: b.Name,
	}
}

// HTTPStatusError maps a non-2xx status to a TranscriptionError
func (b BaseProvider) HTTPStatusError(status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &provider.TranscriptionError{
			Code:        provider.CodeAuthFailed,
			Message:     fmt.Sprintf("%s API key is invalid or missing", b.DisplayName),
			Provider:    b.Name,
			Suggestions: []string{"Check the API key configured for " + b.Name},
		}
	case http.StatusTooManyRequests:
		return &provider.TranscriptionError{
			Code:        provider.CodeRateLimited,
			Message:     fmt.Sprintf("%s API rate limit exceeded", b.DisplayName),
			Provider:    b.Name,
			Retryable:   true,
			Suggestions: []string{"Wait a moment and try again"},
		}
	case http.StatusRequestEntityTooLarge:
		return &provider.TranscriptionError{
			Code:        provider.CodeFileTooLarge,
			Message:     "Audio file is too large",
			Provider:    b.Name,
			Suggestions: []string{"Reduce file size", "Split into smaller chunks"},
		}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &provider.TranscriptionError{
			Code:     provider.CodeInvalidRequest,
			Message:  fmt.Sprintf("Invalid request: %s", truncate(body, 512)),
			Provider: b.Name,
		}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return &provider.TranscriptionError{
			Code:      provider.CodeServerError,
			Message:   fmt.Sprintf("%s server error", b.DisplayName),
			Provider:  b.Name,
			Retryable: true,
		}
	default:
		return &provider.TranscriptionError{
			Code:      provider.CodeUnknown,
			Message:   fmt.Sprintf("Unexpected HTTP status %d: %s", status, truncate(body, 512)),
			Provider:  b.Name,
			Retryable: true,
		}
	}
}

// NewHTTPClient returns a client with the backend timeout applied
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func truncate(body []byte, n int) string {
	if len(body) > n {
		return string(body[:n]) + "..."
	}
	return string(body)
}
