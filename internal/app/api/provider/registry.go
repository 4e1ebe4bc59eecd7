package provider

import (
	"fmt"
	"sort"
	"sync"

	apperrors "lazo-pipeline/internal/app/errors"
)

// DefaultProviderRegistry implements ProviderRegistry interface
type DefaultProviderRegistry struct {
	mu        sync.RWMutex
	providers map[string]SessionTranscriber
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *DefaultProviderRegistry {
	return &DefaultProviderRegistry{
		providers: make(map[string]SessionTranscriber),
	}
}

// RegisterProvider registers a new backend instance under name
func (r *DefaultProviderRegistry) RegisterProvider(name string, provider SessionTranscriber) error {
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if provider == nil {
		return fmt.Errorf("provider cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider '%s' already registered", name)
	}

	if err := provider.ValidateConfiguration(); err != nil {
		return fmt.Errorf("provider validation failed: %w", err)
	}

	r.providers[name] = provider
	return nil
}

// GetProvider retrieves a provider by name
func (r *DefaultProviderRegistry) GetProvider(name string) (SessionTranscriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, apperrors.Wrapf(apperrors.ErrProviderNotFound, "provider '%s'", name)
	}
	return provider, nil
}

// ListProviders returns the registered provider names, sorted
func (r *DefaultProviderRegistry) ListProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
