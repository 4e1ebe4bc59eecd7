package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lazo-pipeline/internal/app/model"
	"lazo-pipeline/internal/app/routing"
)

// Adapter selects one transcription backend per (plan, precision) pair and calls it once.
// Entitlement is enforced by the caller before Transcribe is invoked.
type Adapter struct {
	registry ProviderRegistry
	routes   routing.Table
	metrics  ProviderMetrics
}

// NewAdapter validates that every routed backend is registered
func NewAdapter(registry ProviderRegistry, routes routing.Table, metrics ProviderMetrics) (*Adapter, error) {
	for _, name := range routes.Backends() {
		if _, err := registry.GetProvider(name); err != nil {
			return nil, fmt.Errorf("routed transcription backend %q: %w", name, err)
		}
	}
	if metrics == nil {
		metrics = NewProviderMetrics()
	}
	return &Adapter{registry: registry, routes: routes, metrics: metrics}, nil
}

// BackendFor returns the backend name the adapter would call
func (a *Adapter) BackendFor(plan model.Plan, highPrecision bool) (string, error) {
	return a.routes.Backend(plan, highPrecision)
}

// Transcribe routes the recording to exactly one backend and returns its tagged result
func (a *Adapter) Transcribe(ctx context.Context, audio *AudioInput, plan model.Plan, highPrecision bool) (*Result, error) {
	name, err := a.routes.Backend(plan, highPrecision)
	if err != nil {
		return nil, &TranscriptionError{
			Code:     CodeRoutingMissing,
			Message:  err.Error(),
			Provider: "adapter",
		}
	}

	backend, err := a.registry.GetProvider(name)
	if err != nil {
		return nil, &TranscriptionError{
			Code:     CodeNotRegistered,
			Message:  err.Error(),
			Provider: name,
		}
	}

	start := time.Now()
	result, err := backend.Transcribe(ctx, audio)
	if err != nil {
		a.metrics.RecordFailure(name, errorCode(err))
		return nil, err
	}
	if err := result.Validate(); err != nil {
		a.metrics.RecordFailure(name, CodeUnsupportedShape)
		return nil, &TranscriptionError{
			Code:     CodeUnsupportedShape,
			Message:  err.Error(),
			Provider: name,
		}
	}
	a.metrics.RecordSuccess(name, time.Since(start).Milliseconds())

	result.Backend = name
	return result, nil
}

// Metrics exposes the per-backend statistics
func (a *Adapter) Metrics() ProviderMetrics {
	return a.metrics
}

func errorCode(err error) string {
	var tErr *TranscriptionError
	if errors.As(err, &tErr) {
		return tErr.Code
	}
	return CodeUnknown
}

// BuildRegistry instantiates every enabled backend through its registered creator
func BuildRegistry(config *ProviderConfiguration) (*DefaultProviderRegistry, error) {
	registry := NewProviderRegistry()
	for name, pc := range config.Providers {
		if !pc.Enabled {
			continue
		}
		creator, err := GetProviderCreator(pc.Type)
		if err != nil {
			return nil, fmt.Errorf("provider '%s': %w", name, err)
		}
		backend, err := creator(pc)
		if err != nil {
			return nil, fmt.Errorf("provider '%s': %w", name, err)
		}
		if err := registry.RegisterProvider(name, backend); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
