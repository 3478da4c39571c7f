// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

// Package store defines the embedstore domain types and the storage
// interfaces implemented by backend packages (currently sqlite).
package store

import "context"

// Catalog is the registry of embedding models and stores. The catalog is
// re-read from persistent storage on every operation; there is no in-memory
// cache to invalidate.
type Catalog interface {
	CreateModel(ctx context.Context, model *Model) error
	GetModel(ctx context.Context, id string) (*Model, error)
	ListModels(ctx context.Context) ([]*Model, error)
	UpdateModel(ctx context.Context, id string, upd ModelUpdate) (*Model, error)
	DeleteModel(ctx context.Context, id string) error

	// CreateStore registers the store and provisions its content table in
	// one transaction: the catalog never references a missing table.
	CreateStore(ctx context.Context, s *Store) error
	GetStore(ctx context.Context, id string) (*Store, error)
	ListStores(ctx context.Context) ([]*Store, error)
	UpdateStore(ctx context.Context, id string, upd StoreUpdate) (*Store, error)
	// DeleteStore removes the catalog row. The content table is preserved;
	// embedded data is never dropped implicitly.
	DeleteStore(ctx context.Context, id string) error

	// ResolveStore returns the store's bound model and its vector width.
	ResolveStore(ctx context.Context, id string) (*Binding, error)
}

// ContentStore is the per-store content data plane. The storeID passed to
// every method must be a validated identifier; it names the store's table.
type ContentStore interface {
	// LookupContent finds a row by exact content match.
	LookupContent(ctx context.Context, storeID, content string) (id int64, found bool, err error)

	// LookupContents returns a content → id map for the subset of contents
	// already present in the store.
	LookupContents(ctx context.Context, storeID string, contents []string) (map[string]int64, error)

	// InsertContent inserts a row if the content is still absent. When
	// another writer wins the race, the existing row's id is returned with
	// created=false; created=false with id 0 means the conflicting row
	// vanished between insert and re-read.
	InsertContent(ctx context.Context, storeID, content string, embedding []float32, metadata map[string]any) (id int64, created bool, err error)

	// QueryNearest ranks rows by cosine distance to the given embedding,
	// ascending, applying the options' filters and limit.
	QueryNearest(ctx context.Context, storeID string, embedding []float32, opts QueryOpts) ([]QueryHit, error)
}
