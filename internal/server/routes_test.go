// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

package server_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embedstore-dev/embedstore/internal/server"
)

func TestHealth(t *testing.T) {
	h := newTestServer(t)

	var body server.HealthBody
	rec := doJSON(t, h, http.MethodGet, "/health", nil, &body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body.Status)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestModelCRUD(t *testing.T) {
	h := newTestServer(t)

	// Create
	var created server.ModelBody
	rec := doJSON(t, h, http.MethodPost, "/api/v1/models", map[string]any{
		"id":          "fake/test",
		"description": "test model",
		"dimensions":  3,
	}, &created)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "fake/test", created.ID)
	assert.Equal(t, 3, created.Dimensions)

	// Duplicate registration conflicts.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/models", map[string]any{
		"id": "fake/test", "dimensions": 3,
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// A reference without a provider segment is rejected.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/models", map[string]any{
		"id": "noslash", "dimensions": 3,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Get
	var got server.ModelBody
	rec = doJSON(t, h, http.MethodGet, "/api/v1/models/fake/test", nil, &got)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test model", got.Description)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/models/fake/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// List
	var list struct {
		Models []server.ModelBody `json:"models"`
	}
	rec = doJSON(t, h, http.MethodGet, "/api/v1/models", nil, &list)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, list.Models, 1)

	// Unreferenced models accept dimension changes.
	var updated server.ModelBody
	rec = doJSON(t, h, http.MethodPatch, "/api/v1/models/fake/test", map[string]any{
		"dimensions": 5,
	}, &updated)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 5, updated.Dimensions)

	// Bind a store, then dimension edits and deletion must conflict.
	registerStore(t, h, "docs")

	rec = doJSON(t, h, http.MethodPatch, "/api/v1/models/fake/test", map[string]any{
		"dimensions": 8,
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/models/fake/test", nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Description edits stay allowed while referenced.
	rec = doJSON(t, h, http.MethodPatch, "/api/v1/models/fake/test", map[string]any{
		"description": "renamed",
	}, &updated)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "renamed", updated.Description)

	// Unbind and delete.
	rec = doJSON(t, h, http.MethodDelete, "/api/v1/stores/docs", nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/models/fake/test", nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/models/fake/test", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStoreCRUD(t *testing.T) {
	h := newTestServer(t)
	registerModel(t, h)

	var created server.StoreBody
	rec := doJSON(t, h, http.MethodPost, "/api/v1/stores", map[string]any{
		"id":          "docs",
		"model":       "fake/test",
		"description": "documentation",
	}, &created)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "docs", created.ID)
	assert.Equal(t, "fake/test", created.Model)

	// Duplicate store ID conflicts.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/stores", map[string]any{
		"id": "docs", "model": "fake/test",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Identifiers that cannot name a table are rejected.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/stores", map[string]any{
		"id": "docs; DROP TABLE models", "model": "fake/test",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Binding to an unknown model fails.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/stores", map[string]any{
		"id": "other", "model": "fake/missing",
	}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var got server.StoreBody
	rec = doJSON(t, h, http.MethodGet, "/api/v1/stores/docs", nil, &got)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "documentation", got.Description)

	var list struct {
		Stores []server.StoreBody `json:"stores"`
	}
	rec = doJSON(t, h, http.MethodGet, "/api/v1/stores", nil, &list)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, list.Stores, 1)

	var updated server.StoreBody
	rec = doJSON(t, h, http.MethodPatch, "/api/v1/stores/docs", map[string]any{
		"description": "updated",
	}, &updated)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "updated", updated.Description)

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/stores/docs", nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/stores/docs", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmbedContent(t *testing.T) {
	h := newTestServer(t)
	registerModel(t, h)
	registerStore(t, h, "docs")

	var first server.IngestResultBody
	rec := doJSON(t, h, http.MethodPost, "/api/v1/stores/docs/contents", map[string]any{
		"content":  "hello",
		"metadata": map[string]any{"lang": "en"},
	}, &first)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, first.Created)
	assert.Equal(t, 3, first.Dimensions)
	assert.Positive(t, first.ID)

	// Re-submitting the same content is a no-op returning the existing row.
	var second server.IngestResultBody
	rec = doJSON(t, h, http.MethodPost, "/api/v1/stores/docs/contents", map[string]any{
		"content": "hello",
	}, &second)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, second.Created)
	assert.Equal(t, 0, second.Dimensions)
	assert.Equal(t, first.ID, second.ID)

	// Unknown store.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/stores/nope/contents", map[string]any{
		"content": "hello",
	}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Schema-level validation: content is required.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/stores/docs/contents", map[string]any{}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestEmbedContentBatch(t *testing.T) {
	h := newTestServer(t)
	registerModel(t, h)
	registerStore(t, h, "docs")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/stores/docs/contents", map[string]any{
		"content": "hello",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var batch struct {
		Results []server.IngestResultBody `json:"results"`
		Total   int                       `json:"total"`
		Created int                       `json:"created"`
		Skipped int                       `json:"skipped"`
	}
	rec = doJSON(t, h, http.MethodPost, "/api/v1/stores/docs/contents/batch", map[string]any{
		"items": []map[string]any{
			{"content": "hello"},
			{"content": "world"},
			{"content": "world"},
		},
	}, &batch)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 3, batch.Total)
	assert.Equal(t, 1, batch.Created)
	assert.Equal(t, 2, batch.Skipped)
	require.Len(t, batch.Results, 3)
	assert.False(t, batch.Results[0].Created)
	assert.True(t, batch.Results[1].Created)
	assert.False(t, batch.Results[2].Created)
	assert.Equal(t, batch.Results[1].ID, batch.Results[2].ID)

	// An empty batch fails schema validation.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/stores/docs/contents/batch", map[string]any{
		"items": []map[string]any{},
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestQueryStore(t *testing.T) {
	h := newTestServer(t)
	registerModel(t, h)
	registerStore(t, h, "docs")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/stores/docs/contents/batch", map[string]any{
		"items": []map[string]any{
			{"content": "hello", "metadata": map[string]any{"lang": "en"}},
			{"content": "world", "metadata": map[string]any{"lang": "fr"}},
			{"content": "howdy", "metadata": map[string]any{"lang": "en"}},
		},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		QueryText string                `json:"query_text"`
		Results   []server.QueryHitBody `json:"results"`
		Count     int                   `json:"count"`
	}
	rec = doJSON(t, h, http.MethodPost, "/api/v1/stores/docs/query", map[string]any{
		"query_text": "hello",
	}, &res)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, 3, res.Count)
	assert.Equal(t, "hello", res.Results[0].Content)
	assert.Equal(t, "howdy", res.Results[1].Content)
	assert.Equal(t, "world", res.Results[2].Content)
	assert.InDelta(t, 0.0, res.Results[0].Distance, 1e-6)

	// Distance cutoff drops the orthogonal match.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/stores/docs/query", map[string]any{
		"query_text":   "hello",
		"max_distance": 0.5,
	}, &res)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, res.Count)

	// Metadata filters narrow results before ranking.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/stores/docs/query", map[string]any{
		"query_text": "hello",
		"filters":    map[string]string{"lang": "fr"},
	}, &res)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, res.Count)
	assert.Equal(t, "world", res.Results[0].Content)

	// Limit caps the result set.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/stores/docs/query", map[string]any{
		"query_text": "hello",
		"limit":      1,
	}, &res)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, res.Count)

	// Unsafe filter keys are rejected before any embedding work.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/stores/docs/query", map[string]any{
		"query_text": "hello",
		"filters":    map[string]string{"lang'; --": "en"},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Whitespace-only query text passes the schema but fails validation.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/stores/docs/query", map[string]any{
		"query_text": "   ",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/stores/nope/query", map[string]any{
		"query_text": "hello",
	}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmbeddings(t *testing.T) {
	h := newTestServer(t)

	var one struct {
		Model      string    `json:"model"`
		Embedding  []float32 `json:"embedding"`
		Dimensions int       `json:"dimensions"`
	}
	rec := doJSON(t, h, http.MethodPost, "/api/v1/embeddings", map[string]any{
		"model": "fake/test",
		"text":  "hello",
	}, &one)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []float32{1, 0, 0}, one.Embedding)
	assert.Equal(t, 3, one.Dimensions)

	var many struct {
		Embeddings [][]float32 `json:"embeddings"`
		Dimensions int         `json:"dimensions"`
		Count      int         `json:"count"`
	}
	rec = doJSON(t, h, http.MethodPost, "/api/v1/embeddings/batch", map[string]any{
		"model": "fake/test",
		"texts": []string{"hello", "world"},
	}, &many)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, many.Count)
	assert.Equal(t, 3, many.Dimensions)
	assert.Equal(t, []float32{0, 1, 0}, many.Embeddings[1])

	// Unknown provider.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/embeddings", map[string]any{
		"model": "nope/model",
		"text":  "hello",
	}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
