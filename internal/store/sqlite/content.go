// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"

	"github.com/embedstore-dev/embedstore/internal/store"
)

// LookupContent finds a row by exact content match.
func (d *DB) LookupContent(ctx context.Context, storeID, content string) (int64, bool, error) {
	table, err := tableName(storeID)
	if err != nil {
		return 0, false, err
	}

	var id int64
	err = d.db.QueryRowContext(ctx, `SELECT id FROM `+table+` WHERE content = ?`, content).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("looking up content in store %s: %w", storeID, err)
	}
	return id, true, nil
}

// LookupContents returns a content → id map for the subset of contents
// already present in the store. One query regardless of batch size.
func (d *DB) LookupContents(ctx context.Context, storeID string, contents []string) (map[string]int64, error) {
	table, err := tableName(storeID)
	if err != nil {
		return nil, err
	}
	if len(contents) == 0 {
		return map[string]int64{}, nil
	}

	placeholders := strings.Repeat("?,", len(contents))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(contents))
	for i, c := range contents {
		args[i] = c
	}

	q := `SELECT id, content FROM ` + table + ` WHERE content IN (` + placeholders + `)`
	rows, err := d.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("looking up contents in store %s: %w", storeID, err)
	}
	defer func() { _ = rows.Close() }()

	existing := make(map[string]int64)
	for rows.Next() {
		var id int64
		var content string
		if err := rows.Scan(&id, &content); err != nil {
			return nil, fmt.Errorf("scanning content row: %w", err)
		}
		existing[content] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating content rows: %w", err)
	}
	return existing, nil
}

// InsertContent inserts a row if the content is still absent. The insert is
// conflict-tolerant: when another writer wins the read-then-write race, the
// existing row is re-read and reported with created=false. An id of 0 with
// created=false means the conflicting row vanished before the re-read,
// which cannot happen under correct concurrency control.
func (d *DB) InsertContent(ctx context.Context, storeID, content string, embedding []float32, metadata map[string]any) (int64, bool, error) {
	table, err := tableName(storeID)
	if err != nil {
		return 0, false, err
	}

	blob, err := sqlite_vec.SerializeFloat32(embedding)
	if err != nil {
		return 0, false, fmt.Errorf("serializing embedding: %w", err)
	}

	var metaJSON any
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return 0, false, fmt.Errorf("marshalling metadata: %w", err)
		}
		metaJSON = string(raw)
	}

	q := `INSERT INTO ` + table + ` (content, embedding, metadata) VALUES (?, ?, ?)
ON CONFLICT(content) DO NOTHING
RETURNING id`

	var id int64
	err = d.db.QueryRowContext(ctx, q, content, blob, metaJSON).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, fmt.Errorf("inserting content into store %s: %w", storeID, err)
	}

	// Another writer won the race; resolve to the existing row.
	id, found, err := d.LookupContent(ctx, storeID, content)
	if err != nil {
		return 0, false, err
	}
	if !found {
		return 0, false, nil
	}
	return id, false, nil
}

// QueryNearest ranks rows by cosine distance to the given embedding,
// ascending. Metadata filter keys are validated identifiers spliced into
// json_extract paths; every data value is a bound parameter.
func (d *DB) QueryNearest(ctx context.Context, storeID string, embedding []float32, opts store.QueryOpts) ([]store.QueryHit, error) {
	table, err := tableName(storeID)
	if err != nil {
		return nil, err
	}
	if opts.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d: %w", opts.Limit, store.ErrInvalidInput)
	}

	blob, err := sqlite_vec.SerializeFloat32(embedding)
	if err != nil {
		return nil, fmt.Errorf("serializing query embedding: %w", err)
	}

	var where []string
	args := []any{blob}

	if opts.MaxDistance != nil {
		// SQLite does not allow the SELECT alias in WHERE; repeat the
		// distance expression with its own bound copy of the vector.
		where = append(where, `vec_distance_cosine(embedding, ?) <= ?`)
		args = append(args, blob, *opts.MaxDistance)
	}

	// Deterministic predicate order regardless of map iteration.
	keys := make([]string, 0, len(opts.MetadataEq))
	for k := range opts.MetadataEq {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := store.ValidateIdentifier(key); err != nil {
			return nil, fmt.Errorf("metadata filter key: %w", err)
		}
		where = append(where, `json_extract(metadata, '$.`+key+`') = ?`)
		args = append(args, opts.MetadataEq[key])
	}

	var sb strings.Builder
	sb.WriteString(`SELECT id, content, vec_distance_cosine(embedding, ?) AS distance FROM `)
	sb.WriteString(table)
	if len(where) > 0 {
		sb.WriteString(` WHERE `)
		sb.WriteString(strings.Join(where, ` AND `))
	}
	sb.WriteString(` ORDER BY distance LIMIT ?`)
	args = append(args, opts.Limit)

	rows, err := d.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying store %s: %w", storeID, err)
	}
	defer func() { _ = rows.Close() }()

	var hits []store.QueryHit
	for rows.Next() {
		var h store.QueryHit
		if err := rows.Scan(&h.ID, &h.Content, &h.Distance); err != nil {
			return nil, fmt.Errorf("scanning query hit: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query hits: %w", err)
	}
	return hits, nil
}
