// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/embedstore-dev/embedstore/internal/embedder"
	"github.com/embedstore-dev/embedstore/internal/engine"
	"github.com/embedstore-dev/embedstore/internal/server"
	"github.com/embedstore-dev/embedstore/internal/store/sqlite"
)

// fakeEmbedder returns canned vectors keyed by text.
type fakeEmbedder struct {
	vecs     map[string][]float32
	fallback []float32
}

func (f *fakeEmbedder) Name() string { return "fake" }

func (f *fakeEmbedder) vecFor(text string) []float32 {
	if v, ok := f.vecs[text]; ok {
		return v
	}
	return f.fallback
}

func (f *fakeEmbedder) EmbedOne(_ context.Context, _, text string) ([]float32, error) {
	return f.vecFor(text), nil
}

func (f *fakeEmbedder) EmbedMany(_ context.Context, _ string, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		vecs[i] = f.vecFor(t)
	}
	return vecs, nil
}

// newTestServer builds a Server over a real SQLite store and a fake
// embedding provider named "fake" producing 3-dimensional vectors.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	dir, err := os.MkdirTemp("", "embedstore-server-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	db, err := sqlite.New(filepath.Join(dir, "embedstore.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	reg := embedder.NewRegistry()
	reg.Register(&fakeEmbedder{
		vecs: map[string][]float32{
			"hello": {1, 0, 0},
			"world": {0, 1, 0},
			"howdy": {0.9, 0.1, 0},
		},
		fallback: []float32{0.5, 0.5, 0},
	})

	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0"}, engine.New(db, db, reg))
	require.NoError(t, err)
	return srv.Handler()
}

// doJSON performs a request with an optional JSON body and decodes the JSON
// response into out (when out is non-nil and the response has a body).
func doJSON(t *testing.T, h http.Handler, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if out != nil && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

// registerModel creates the fake/test model (3 dimensions) via the API.
func registerModel(t *testing.T, h http.Handler) {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/v1/models", map[string]any{
		"id":         "fake/test",
		"dimensions": 3,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

// registerStore creates a store bound to fake/test via the API.
func registerStore(t *testing.T, h http.Handler, id string) {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/v1/stores", map[string]any{
		"id":    id,
		"model": "fake/test",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}
