package provider

import (
	"context"
)

// SessionTranscriber wraps one transcription backend behind a single call.
// Implementations make exactly one outbound request per call and never retry.
type SessionTranscriber interface {
	// Transcribe sends the recording and returns the backend payload tagged with its shape
	Transcribe(ctx context.Context, audio *AudioInput) (*Result, error)

	// GetProviderInfo returns backend metadata
	GetProviderInfo() ProviderInfo

	// ValidateConfiguration checks credentials and settings without network access
	ValidateConfiguration() error
}

// ProviderRegistry manages named backend instances
type ProviderRegistry interface {
	RegisterProvider(name string, provider SessionTranscriber) error
	GetProvider(name string) (SessionTranscriber, error)
	ListProviders() []string
}

// ProviderMetrics records per-backend performance
type ProviderMetrics interface {
	RecordSuccess(provider string, latencyMs int64)
	RecordFailure(provider string, errorType string)
	GetProviderMetrics(provider string) ProviderStats
	GetOverallMetrics() OverallStats
}

// ProviderStats contains statistics for a specific provider
type ProviderStats struct {
	Provider           string           `json:"provider"`
	TotalRequests      int64            `json:"total_requests"`
	SuccessfulRequests int64            `json:"successful_requests"`
	FailedRequests     int64            `json:"failed_requests"`
	SuccessRate        float64          `json:"success_rate"`
	AverageLatencyMs   float64          `json:"average_latency_ms"`
	LastUsed           int64            `json:"last_used"`
	ErrorBreakdown     map[string]int64 `json:"error_breakdown,omitempty"`
}

// OverallStats aggregates every provider
type OverallStats struct {
	TotalRequests      int64                    `json:"total_requests"`
	SuccessfulRequests int64                    `json:"successful_requests"`
	FailedRequests     int64                    `json:"failed_requests"`
	OverallSuccessRate float64                  `json:"overall_success_rate"`
	ProviderBreakdown  map[string]ProviderStats `json:"provider_breakdown"`
}
