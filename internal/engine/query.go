// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

package engine

import (
	"context"
	"strings"

	"github.com/embedstore-dev/embedstore/internal/store"
	esterr "github.com/embedstore-dev/embedstore/pkg/errors"
)

const (
	// DefaultQueryLimit applies when no limit is requested.
	DefaultQueryLimit = 10

	// MaxQueryLimit caps the result set size.
	MaxQueryLimit = 100

	// maxCosineDistance is the upper bound of the cosine distance range.
	maxCosineDistance = 2.0
)

// QueryOptions narrows a similarity query. A zero Limit means
// DefaultQueryLimit.
type QueryOptions struct {
	Limit           int
	MaxDistance     *float64
	MetadataFilters map[string]string
}

// Query embeds text with the store's bound model and returns rows ranked
// by ascending cosine distance. Metadata filter keys are validated before
// any I/O; filter values, the embedding, and the limit are always bound
// parameters.
func (e *Engine) Query(ctx context.Context, storeID, text string, opts QueryOptions) (*store.QueryResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, esterr.New(esterr.CodeStoreQueryInvalid,
			"query text must not be empty", esterr.FieldStoreID(storeID))
	}

	limit := opts.Limit
	if limit == 0 {
		limit = DefaultQueryLimit
	}
	if limit < 1 || limit > MaxQueryLimit {
		return nil, esterr.Errorf(esterr.CodeStoreQueryInvalid,
			"limit must be in [1,%d], got %d", MaxQueryLimit, limit)
	}

	if opts.MaxDistance != nil && (*opts.MaxDistance < 0 || *opts.MaxDistance > maxCosineDistance) {
		return nil, esterr.Errorf(esterr.CodeStoreQueryInvalid,
			"max_distance must be in [0,%g], got %g", maxCosineDistance, *opts.MaxDistance)
	}

	// Filter keys are destined for dynamic interpolation; reject unsafe
	// ones before spending an embedding call.
	for key := range opts.MetadataFilters {
		if err := store.ValidateIdentifier(key); err != nil {
			return nil, wrapStoreErr(err, "metadata filter key", esterr.FieldStoreID(storeID))
		}
	}

	binding, err := e.catalog.ResolveStore(ctx, storeID)
	if err != nil {
		return nil, wrapStoreErr(err, "resolving store", esterr.FieldStoreID(storeID))
	}

	emb, model, err := e.registry.Resolve(binding.ModelID)
	if err != nil {
		return nil, err
	}

	vec, err := emb.EmbedOne(ctx, model, text)
	if err != nil {
		return nil, err
	}
	if err := checkDimensions(binding, len(vec)); err != nil {
		return nil, err
	}

	hits, err := e.contents.QueryNearest(ctx, storeID, vec, store.QueryOpts{
		Limit:       limit,
		MaxDistance: opts.MaxDistance,
		MetadataEq:  opts.MetadataFilters,
	})
	if err != nil {
		return nil, wrapStoreErr(err, "querying store", esterr.FieldStoreID(storeID))
	}

	if hits == nil {
		hits = []store.QueryHit{}
	}
	return &store.QueryResult{
		QueryText: text,
		Results:   hits,
		Count:     len(hits),
	}, nil
}

// EmbedText embeds one text with an explicit model reference, bypassing
// any store binding. Used by the standalone embedding endpoints.
func (e *Engine) EmbedText(ctx context.Context, modelRef, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, esterr.New(esterr.CodeEmbedderRequestInvalid, "text must not be empty")
	}

	emb, model, err := e.registry.Resolve(modelRef)
	if err != nil {
		return nil, err
	}
	return emb.EmbedOne(ctx, model, text)
}

// EmbedTexts embeds an ordered batch with an explicit model reference.
func (e *Engine) EmbedTexts(ctx context.Context, modelRef string, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, esterr.New(esterr.CodeEmbedderRequestInvalid, "texts must not be empty")
	}
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, esterr.Errorf(esterr.CodeEmbedderRequestInvalid, "text %d must not be empty", i)
		}
	}

	emb, model, err := e.registry.Resolve(modelRef)
	if err != nil {
		return nil, err
	}

	vecs, err := emb.EmbedMany(ctx, model, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(texts) {
		return nil, esterr.Errorf(esterr.CodeEmbedderResponseInvalid,
			"model %s returned %d embeddings for %d texts", modelRef, len(vecs), len(texts))
	}
	return vecs, nil
}
