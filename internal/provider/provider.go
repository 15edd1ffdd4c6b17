// Package provider defines the interface and implementations for OCR/vision
// text-detection backends.
package provider

import (
	"context"
	"sync"

	"github.com/truemed/scan-cli/internal/model"
)

// Provider turns packaging photos into raw text. Implementations fail with a
// typed *Error; they never return partial text alongside an error.
type Provider interface {
	// Name returns the provider identifier (matches descriptor names in the
	// routing table).
	Name() string
	// Family returns the billing/calling family the provider belongs to.
	Family() model.ProviderFamily
	// DetectText runs text detection over the given images and returns the
	// concatenated raw text.
	DetectText(ctx context.Context, images [][]byte) (string, error)
}

// Registry manages available providers by name.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns a provider by name, or nil if not found.
func (r *Registry) Get(name string) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providers[name]
}

// List returns all registered provider names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
