// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/embedstore-dev/embedstore/internal/store"
)

// CreateModel registers an embedding model.
func (d *DB) CreateModel(ctx context.Context, model *store.Model) error {
	if model.ID == "" {
		return fmt.Errorf("model id must not be empty: %w", store.ErrInvalidInput)
	}
	if model.Dimensions <= 0 {
		return fmt.Errorf("model %s dimensions must be positive, got %d: %w",
			model.ID, model.Dimensions, store.ErrInvalidInput)
	}

	const q = `INSERT INTO models (id, description, dimensions) VALUES (?, ?, ?)`
	_, err := d.db.ExecContext(ctx, q, model.ID, model.Description, model.Dimensions)
	if isUniqueViolation(err) {
		return fmt.Errorf("model %s already registered: %w", model.ID, store.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("inserting model %s: %w", model.ID, err)
	}
	return nil
}

// GetModel retrieves a model by id.
func (d *DB) GetModel(ctx context.Context, id string) (*store.Model, error) {
	const q = `SELECT id, description, dimensions FROM models WHERE id = ?`

	var m store.Model
	err := d.db.QueryRowContext(ctx, q, id).Scan(&m.ID, &m.Description, &m.Dimensions)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("model %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting model %s: %w", id, err)
	}
	return &m, nil
}

// ListModels returns all registered models.
func (d *DB) ListModels(ctx context.Context) ([]*store.Model, error) {
	const q = `SELECT id, description, dimensions FROM models ORDER BY id`

	rows, err := d.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var models []*store.Model
	for rows.Next() {
		var m store.Model
		if err := rows.Scan(&m.ID, &m.Description, &m.Dimensions); err != nil {
			return nil, fmt.Errorf("scanning model row: %w", err)
		}
		models = append(models, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating model rows: %w", err)
	}
	return models, nil
}

// UpdateModel applies a partial update. Changing dimensions is rejected
// while any store references the model: existing content tables are fixed
// to the width they were provisioned with.
func (d *DB) UpdateModel(ctx context.Context, id string, upd store.ModelUpdate) (*store.Model, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning tx for model %s: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	var m store.Model
	err = tx.QueryRowContext(ctx, `SELECT id, description, dimensions FROM models WHERE id = ?`, id).
		Scan(&m.ID, &m.Description, &m.Dimensions)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("model %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting model %s: %w", id, err)
	}

	if upd.Dimensions != nil && *upd.Dimensions != m.Dimensions {
		if *upd.Dimensions <= 0 {
			return nil, fmt.Errorf("model %s dimensions must be positive, got %d: %w",
				id, *upd.Dimensions, store.ErrInvalidInput)
		}
		refs, err := countStoreRefs(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if refs > 0 {
			return nil, fmt.Errorf("model %s dimensions are fixed while %d store(s) reference it: %w",
				id, refs, store.ErrConflict)
		}
		m.Dimensions = *upd.Dimensions
	}
	if upd.Description != nil {
		m.Description = *upd.Description
	}

	const q = `UPDATE models SET description = ?, dimensions = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, q, m.Description, m.Dimensions, id); err != nil {
		return nil, fmt.Errorf("updating model %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing model %s update: %w", id, err)
	}
	return &m, nil
}

// DeleteModel removes a model. Rejected while any store references it.
func (d *DB) DeleteModel(ctx context.Context, id string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx for model %s: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	refs, err := countStoreRefs(ctx, tx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return fmt.Errorf("model %s is referenced by %d store(s): %w", id, refs, store.ErrConflict)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM models WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting model %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting model %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("model %s: %w", id, store.ErrNotFound)
	}

	return tx.Commit()
}

func countStoreRefs(ctx context.Context, tx *sql.Tx, modelID string) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM stores WHERE model = ?`, modelID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting stores bound to model %s: %w", modelID, err)
	}
	return n, nil
}

// CreateStore registers a store and provisions its content table in one
// transaction, so the catalog never references a missing table. The store
// id doubles as the table name and must be a safe identifier.
func (d *DB) CreateStore(ctx context.Context, s *store.Store) error {
	table, err := tableName(s.ID)
	if err != nil {
		return err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx for store %s: %w", s.ID, err)
	}
	defer func() { _ = tx.Rollback() }()

	// Catalog uniqueness is the primary duplicate guard; check it before
	// any provisioning is attempted.
	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM stores WHERE id = ?`, s.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking store %s: %w", s.ID, err)
	}
	if exists > 0 {
		return fmt.Errorf("store %s already registered: %w", s.ID, store.ErrConflict)
	}

	var dims int
	err = tx.QueryRowContext(ctx, `SELECT dimensions FROM models WHERE id = ?`, s.ModelID).Scan(&dims)
	if err == sql.ErrNoRows {
		return fmt.Errorf("model %s: %w", s.ModelID, store.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("resolving model %s: %w", s.ModelID, err)
	}

	const insert = `INSERT INTO stores (id, model, description) VALUES (?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insert, s.ID, s.ModelID, s.Description); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("store %s already registered: %w", s.ID, store.ErrConflict)
		}
		return fmt.Errorf("inserting store %s: %w", s.ID, err)
	}

	// The embedding column width is fixed to the model's dimensionality at
	// creation time; vectors are validated against it before every insert.
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	content   TEXT NOT NULL UNIQUE,
	embedding BLOB NOT NULL,
	metadata  TEXT
)`, table)
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("provisioning table for store %s: %w", s.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing store %s creation: %w", s.ID, err)
	}
	return nil
}

// GetStore retrieves a store by id.
func (d *DB) GetStore(ctx context.Context, id string) (*store.Store, error) {
	const q = `SELECT id, model, description FROM stores WHERE id = ?`

	var s store.Store
	err := d.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.ModelID, &s.Description)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting store %s: %w", id, err)
	}
	return &s, nil
}

// ListStores returns all registered stores.
func (d *DB) ListStores(ctx context.Context) ([]*store.Store, error) {
	const q = `SELECT id, model, description FROM stores ORDER BY id`

	rows, err := d.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing stores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stores []*store.Store
	for rows.Next() {
		var s store.Store
		if err := rows.Scan(&s.ID, &s.ModelID, &s.Description); err != nil {
			return nil, fmt.Errorf("scanning store row: %w", err)
		}
		stores = append(stores, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating store rows: %w", err)
	}
	return stores, nil
}

// UpdateStore applies a partial update. Rebinding to a model with a
// different dimensionality is rejected: the content table keeps the width
// it was provisioned with.
func (d *DB) UpdateStore(ctx context.Context, id string, upd store.StoreUpdate) (*store.Store, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning tx for store %s: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	var s store.Store
	var curDims int
	const cur = `SELECT s.id, s.model, s.description, m.dimensions
FROM stores s JOIN models m ON m.id = s.model
WHERE s.id = ?`
	err = tx.QueryRowContext(ctx, cur, id).Scan(&s.ID, &s.ModelID, &s.Description, &curDims)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting store %s: %w", id, err)
	}

	if upd.ModelID != nil && *upd.ModelID != s.ModelID {
		var newDims int
		err = tx.QueryRowContext(ctx, `SELECT dimensions FROM models WHERE id = ?`, *upd.ModelID).Scan(&newDims)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("model %s: %w", *upd.ModelID, store.ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("resolving model %s: %w", *upd.ModelID, err)
		}
		if newDims != curDims {
			return nil, fmt.Errorf("store %s table is provisioned for %d dimensions, model %s has %d: %w",
				id, curDims, *upd.ModelID, newDims, store.ErrConflict)
		}
		s.ModelID = *upd.ModelID
	}
	if upd.Description != nil {
		s.Description = *upd.Description
	}

	const q = `UPDATE stores SET model = ?, description = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, q, s.ModelID, s.Description, id); err != nil {
		return nil, fmt.Errorf("updating store %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing store %s update: %w", id, err)
	}
	return &s, nil
}

// DeleteStore removes the catalog row. The content table is intentionally
// preserved; dropping embedded data requires an explicit backup/migration
// step outside this API.
func (d *DB) DeleteStore(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM stores WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting store %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting store %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("store %s: %w", id, store.ErrNotFound)
	}
	return nil
}

// ResolveStore returns the store's bound model and vector width.
func (d *DB) ResolveStore(ctx context.Context, id string) (*store.Binding, error) {
	const q = `SELECT s.id, s.model, m.dimensions
FROM stores s JOIN models m ON m.id = s.model
WHERE s.id = ?`

	var b store.Binding
	err := d.db.QueryRowContext(ctx, q, id).Scan(&b.StoreID, &b.ModelID, &b.Dimensions)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("resolving store %s: %w", id, err)
	}
	return &b, nil
}
