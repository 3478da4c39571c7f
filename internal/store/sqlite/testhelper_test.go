// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/embedstore-dev/embedstore/internal/store"
	"github.com/embedstore-dev/embedstore/internal/store/sqlite"
)

// testDir creates a temp directory for a test and returns it.
func testDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "embedstore-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// testDB opens a fresh SQLite-backed store in a temp directory.
func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(filepath.Join(testDir(t), "embedstore.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// seedStore registers a model and a store bound to it.
func seedStore(t *testing.T, db *sqlite.DB, storeID, modelID string, dims int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, db.CreateModel(ctx, &store.Model{ID: modelID, Dimensions: dims}))
	require.NoError(t, db.CreateStore(ctx, &store.Store{ID: storeID, ModelID: modelID}))
}
