package provider

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	providerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lazo",
		Subsystem: "provider",
		Name:      "requests_total",
		Help:      "Transcription backend calls by backend and outcome.",
	}, []string{"backend", "outcome"})

	providerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lazo",
		Subsystem: "provider",
		Name:      "latency_seconds",
		Help:      "Transcription backend call latency.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
	}, []string{"backend"})
)

// DefaultProviderMetrics implements ProviderMetrics and mirrors every sample to Prometheus
type DefaultProviderMetrics struct {
	mu            sync.RWMutex
	providerStats map[string]*ProviderStats
}

// NewProviderMetrics creates a new provider metrics instance
func NewProviderMetrics() *DefaultProviderMetrics {
	return &DefaultProviderMetrics{
		providerStats: make(map[string]*ProviderStats),
	}
}

// RecordSuccess records a successful transcription
func (m *DefaultProviderMetrics) RecordSuccess(provider string, latencyMs int64) {
	providerRequests.WithLabelValues(provider, "success").Inc()
	providerLatency.WithLabelValues(provider).Observe(float64(latencyMs) / 1000)

	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.getOrCreateStats(provider)
	stats.TotalRequests++
	stats.SuccessfulRequests++
	stats.LastUsed = time.Now().Unix()

	// Weighted average favoring recent results
	if stats.AverageLatencyMs == 0 {
		stats.AverageLatencyMs = float64(latencyMs)
	} else {
		stats.AverageLatencyMs = (stats.AverageLatencyMs * 0.8) + (float64(latencyMs) * 0.2)
	}
	stats.SuccessRate = float64(stats.SuccessfulRequests) / float64(stats.TotalRequests)
}

// RecordFailure records a failed transcription
func (m *DefaultProviderMetrics) RecordFailure(provider string, errorType string) {
	providerRequests.WithLabelValues(provider, "failure").Inc()

	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.getOrCreateStats(provider)
	stats.TotalRequests++
	stats.FailedRequests++
	stats.LastUsed = time.Now().Unix()
	stats.ErrorBreakdown[errorType]++
	stats.SuccessRate = float64(stats.SuccessfulRequests) / float64(stats.TotalRequests)
}

// GetProviderMetrics returns metrics for a specific provider
func (m *DefaultProviderMetrics) GetProviderMetrics(provider string) ProviderStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats, ok := m.providerStats[provider]
	if !ok {
		return ProviderStats{Provider: provider}
	}
	return copyStats(stats)
}

// GetOverallMetrics returns overall metrics across all providers
func (m *DefaultProviderMetrics) GetOverallMetrics() OverallStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	overall := OverallStats{ProviderBreakdown: make(map[string]ProviderStats, len(m.providerStats))}
	for name, stats := range m.providerStats {
		overall.TotalRequests += stats.TotalRequests
		overall.SuccessfulRequests += stats.SuccessfulRequests
		overall.FailedRequests += stats.FailedRequests
		overall.ProviderBreakdown[name] = copyStats(stats)
	}
	if overall.TotalRequests > 0 {
		overall.OverallSuccessRate = float64(overall.SuccessfulRequests) / float64(overall.TotalRequests)
	}
	return overall
}

// getOrCreateStats must be called with the write lock held
func (m *DefaultProviderMetrics) getOrCreateStats(provider string) *ProviderStats {
	stats, exists := m.providerStats[provider]
	if !exists {
		stats = &ProviderStats{
			Provider:       provider,
			ErrorBreakdown: make(map[string]int64),
		}
		m.providerStats[provider] = stats
	}
	return stats
}

func copyStats(stats *ProviderStats) ProviderStats {
	out := *stats
	out.ErrorBreakdown = make(map[string]int64, len(stats.ErrorBreakdown))
	for k, v := range stats.ErrorBreakdown {
		out.ErrorBreakdown[k] = v
	}
	return out
}
