// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

package store

// Model describes an embedding model and the fixed vector width every
// store bound to it uses.
type Model struct {
	ID          string
	Description string
	Dimensions  int
}

// Store is a named collection of embedded content bound to one model.
// Creating a store also provisions its per-store content table.
type Store struct {
	ID          string
	ModelID     string
	Description string
}

// Binding is the resolved store → model binding consumed before every
// ingest or query operation.
type Binding struct {
	StoreID    string
	ModelID    string
	Dimensions int
}

// ModelUpdate carries partial updates for a model. Nil fields are unchanged.
type ModelUpdate struct {
	Description *string
	Dimensions  *int
}

// StoreUpdate carries partial updates for a store. Nil fields are unchanged.
type StoreUpdate struct {
	ModelID     *string
	Description *string
}

// IngestItem is one piece of content to ingest into a store.
type IngestItem struct {
	Content   string
	QueryText string // optional alternate text to embed instead of Content
	Metadata  map[string]any
}

// IngestResult reports the outcome of ingesting one item.
// Dimensions is 0 when the row already existed; the stored embedding is
// never re-fetched on a duplicate hit.
type IngestResult struct {
	ID         int64
	Content    string
	Dimensions int
	Created    bool
}

// BatchResult aggregates a batch ingest. Total == Created + Skipped always
// holds, and len(Results) == Total.
type BatchResult struct {
	Results []IngestResult
	Total   int
	Created int
	Skipped int
}

// QueryHit is one ranked similarity match. Distance is cosine distance in
// [0,2]; 0 means identical direction.
type QueryHit struct {
	ID       int64
	Content  string
	Distance float64
}

// QueryResult is the ranked result set for one similarity query.
type QueryResult struct {
	QueryText string
	Results   []QueryHit
	Count     int
}

// QueryOpts narrows a similarity query.
type QueryOpts struct {
	Limit       int
	MaxDistance *float64          // cosine distance cutoff in [0,2]
	MetadataEq  map[string]string // equality filters on metadata keys
}
