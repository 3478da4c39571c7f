// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embedstore-dev/embedstore/internal/store"
)

func floatPtr(f float64) *float64 { return &f }

func TestContent_InsertIdempotent(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	seedStore(t, db, "docs", "m1", 3)

	id1, created, err := db.InsertContent(ctx, "docs", "hello", []float32{1, 0, 0}, nil)
	require.NoError(t, err)
	assert.True(t, created)

	id2, created, err := db.InsertContent(ctx, "docs", "hello", []float32{0, 1, 0}, nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id1, id2)
}

func TestContent_LookupContents(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	seedStore(t, db, "docs", "m1", 3)

	idA, _, err := db.InsertContent(ctx, "docs", "a", []float32{1, 0, 0}, nil)
	require.NoError(t, err)
	idB, _, err := db.InsertContent(ctx, "docs", "b", []float32{0, 1, 0}, nil)
	require.NoError(t, err)

	existing, err := db.LookupContents(ctx, "docs", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"a": idA, "b": idB}, existing)

	empty, err := db.LookupContents(ctx, "docs", nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestContent_QueryNearest_Ordering(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	seedStore(t, db, "docs", "m1", 3)

	_, _, err := db.InsertContent(ctx, "docs", "east", []float32{1, 0, 0}, nil)
	require.NoError(t, err)
	_, _, err = db.InsertContent(ctx, "docs", "north", []float32{0, 1, 0}, nil)
	require.NoError(t, err)
	_, _, err = db.InsertContent(ctx, "docs", "near east", []float32{0.9, 0.1, 0}, nil)
	require.NoError(t, err)

	hits, err := db.QueryNearest(ctx, "docs", []float32{1, 0, 0}, store.QueryOpts{Limit: 10})
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "east", hits[0].Content)
	assert.InDelta(t, 0, hits[0].Distance, 1e-6)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i].Distance, hits[i-1].Distance)
	}
}

func TestContent_QueryNearest_MaxDistance(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	seedStore(t, db, "docs", "m1", 3)

	_, _, err := db.InsertContent(ctx, "docs", "aligned", []float32{1, 0, 0}, nil)
	require.NoError(t, err)
	_, _, err = db.InsertContent(ctx, "docs", "orthogonal", []float32{0, 1, 0}, nil)
	require.NoError(t, err)

	// Orthogonal vectors sit at cosine distance 1.
	hits, err := db.QueryNearest(ctx, "docs", []float32{1, 0, 0}, store.QueryOpts{
		Limit:       10,
		MaxDistance: floatPtr(0.5),
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "aligned", hits[0].Content)
	assert.LessOrEqual(t, hits[0].Distance, 0.5)
}

func TestContent_QueryNearest_MetadataFilter(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	seedStore(t, db, "docs", "m1", 3)

	_, _, err := db.InsertContent(ctx, "docs", "bonjour", []float32{1, 0, 0}, map[string]any{"lang": "fr"})
	require.NoError(t, err)
	_, _, err = db.InsertContent(ctx, "docs", "hello", []float32{0.9, 0.1, 0}, map[string]any{"lang": "en"})
	require.NoError(t, err)
	_, _, err = db.InsertContent(ctx, "docs", "no metadata", []float32{0.8, 0.2, 0}, nil)
	require.NoError(t, err)

	hits, err := db.QueryNearest(ctx, "docs", []float32{1, 0, 0}, store.QueryOpts{
		Limit:      10,
		MetadataEq: map[string]string{"lang": "en"},
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "hello", hits[0].Content)

	hits, err = db.QueryNearest(ctx, "docs", []float32{1, 0, 0}, store.QueryOpts{
		Limit:      10,
		MetadataEq: map[string]string{"lang": "de"},
	})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestContent_QueryNearest_MultipleFilters(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	seedStore(t, db, "docs", "m1", 3)

	_, _, err := db.InsertContent(ctx, "docs", "match", []float32{1, 0, 0},
		map[string]any{"lang": "en", "topic": "go"})
	require.NoError(t, err)
	_, _, err = db.InsertContent(ctx, "docs", "wrong topic", []float32{1, 0, 0.1},
		map[string]any{"lang": "en", "topic": "rust"})
	require.NoError(t, err)

	hits, err := db.QueryNearest(ctx, "docs", []float32{1, 0, 0}, store.QueryOpts{
		Limit:      10,
		MetadataEq: map[string]string{"lang": "en", "topic": "go"},
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "match", hits[0].Content)
}

func TestContent_QueryNearest_UnsafeFilterKey(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	seedStore(t, db, "docs", "m1", 3)

	_, err := db.QueryNearest(ctx, "docs", []float32{1, 0, 0}, store.QueryOpts{
		Limit:      10,
		MetadataEq: map[string]string{"lang') = 'x' --": "en"},
	})
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestContent_QueryNearest_Limit(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	seedStore(t, db, "docs", "m1", 3)

	for i, c := range []string{"a", "b", "c", "d"} {
		_, _, err := db.InsertContent(ctx, "docs", c, []float32{1, float32(i) * 0.1, 0}, nil)
		require.NoError(t, err)
	}

	hits, err := db.QueryNearest(ctx, "docs", []float32{1, 0, 0}, store.QueryOpts{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	_, err = db.QueryNearest(ctx, "docs", []float32{1, 0, 0}, store.QueryOpts{Limit: 0})
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestContent_QueryNearest_EmptyStore(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	seedStore(t, db, "docs", "m1", 3)

	hits, err := db.QueryNearest(ctx, "docs", []float32{1, 0, 0}, store.QueryOpts{Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestContent_UnsafeStoreID(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)

	_, _, err := db.LookupContent(ctx, "docs;drop", "x")
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	_, _, err = db.InsertContent(ctx, "docs;drop", "x", []float32{1}, nil)
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	_, err = db.QueryNearest(ctx, "docs;drop", []float32{1}, store.QueryOpts{Limit: 1})
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}
