// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

// Package engine orchestrates ingestion and similarity queries: it resolves
// store → model bindings through the catalog, requests embeddings from the
// provider registry, and drives the content store. No in-process locking is
// used; correctness under concurrent writers rests on the content table's
// unique constraint plus conflict-tolerant inserts.
package engine

import (
	"errors"
	"log/slog"

	"github.com/embedstore-dev/embedstore/internal/embedder"
	"github.com/embedstore-dev/embedstore/internal/store"
	esterr "github.com/embedstore-dev/embedstore/pkg/errors"
)

// Engine executes ingest and query operations against registered stores.
type Engine struct {
	catalog  store.Catalog
	contents store.ContentStore
	registry *embedder.Registry
	logger   *slog.Logger
}

// New creates an Engine.
func New(catalog store.Catalog, contents store.ContentStore, registry *embedder.Registry) *Engine {
	return &Engine{
		catalog:  catalog,
		contents: contents,
		registry: registry,
		logger:   slog.Default(),
	}
}

// wrapStoreErr converts the storage layer's sentinel errors into coded ones.
func wrapStoreErr(err error, msg string, fields ...esterr.Attr) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return esterr.Wrap(err, esterr.CodeStoreNotFound, msg, fields...)
	case errors.Is(err, store.ErrConflict):
		return esterr.Wrap(err, esterr.CodeStoreConflict, msg, fields...)
	case errors.Is(err, store.ErrInvalidInput):
		return esterr.Wrap(err, esterr.CodeStoreIdentifierInvalid, msg, fields...)
	default:
		return esterr.Wrap(err, esterr.CodeStoreDatabaseFailure, msg, fields...)
	}
}
