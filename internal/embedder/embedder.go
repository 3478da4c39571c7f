// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

// Package embedder defines the embedding capability consumed by the
// ingestion and query engines, plus the provider registry that resolves
// "provider/model" references to concrete implementations.
package embedder

import (
	"context"
	"sort"
	"strings"
	"sync"

	esterr "github.com/embedstore-dev/embedstore/pkg/errors"
)

// Embedder turns text into fixed-length float vectors using one provider's
// embedding models. Implementations are safe for concurrent use.
type Embedder interface {
	// Name returns the provider name used in model references.
	Name() string

	// EmbedOne embeds a single text. Callers must not pass empty text.
	EmbedOne(ctx context.Context, model, text string) ([]float32, error)

	// EmbedMany embeds an ordered batch in one provider round trip and
	// returns one vector per text, all sharing one dimensionality.
	// Callers must not pass an empty batch.
	EmbedMany(ctx context.Context, model string, texts []string) ([][]float32, error)
}

// ParseModelRef splits a "provider/model" reference. The model part may
// itself contain slashes (e.g. ollama tags).
func ParseModelRef(ref string) (provider, model string, err error) {
	parts := strings.SplitN(ref, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", esterr.Errorf(esterr.CodeEmbedderRequestInvalid,
			"invalid model reference %q: expected provider/model", ref)
	}
	return parts[0], parts[1], nil
}

// Registry maps provider names to Embedder implementations.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Embedder
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Embedder)}
}

// Register adds an embedder under its provider name.
func (r *Registry) Register(e Embedder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[e.Name()] = e
}

// Get retrieves an embedder by provider name.
func (r *Registry) Get(name string) (Embedder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.providers[name]
	if !ok {
		return nil, esterr.New(
			esterr.CodeEmbedderNotFound,
			"embedding provider not registered: "+name,
			esterr.FieldProvider(name),
		)
	}
	return e, nil
}

// Resolve parses a "provider/model" reference and returns the registered
// embedder together with the bare model name.
func (r *Registry) Resolve(modelRef string) (Embedder, string, error) {
	provider, model, err := ParseModelRef(modelRef)
	if err != nil {
		return nil, "", err
	}

	e, err := r.Get(provider)
	if err != nil {
		return nil, "", err
	}
	return e, model, nil
}

// Providers returns the registered provider names, sorted.
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
