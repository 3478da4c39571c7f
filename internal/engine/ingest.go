// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

package engine

import (
	"context"
	"strings"

	"github.com/embedstore-dev/embedstore/internal/store"
	esterr "github.com/embedstore-dev/embedstore/pkg/errors"
)

// IngestOne idempotently ingests a single item. Re-ingesting identical
// content returns the existing row with Created=false and Dimensions=0;
// the stored embedding is not re-fetched on a hit.
func (e *Engine) IngestOne(ctx context.Context, storeID string, item store.IngestItem) (*store.IngestResult, error) {
	if strings.TrimSpace(item.Content) == "" {
		return nil, esterr.New(esterr.CodeStoreContentInvalid,
			"content must not be empty", esterr.FieldStoreID(storeID))
	}

	binding, err := e.catalog.ResolveStore(ctx, storeID)
	if err != nil {
		return nil, wrapStoreErr(err, "resolving store", esterr.FieldStoreID(storeID))
	}

	id, found, err := e.contents.LookupContent(ctx, storeID, item.Content)
	if err != nil {
		return nil, wrapStoreErr(err, "looking up content", esterr.FieldStoreID(storeID))
	}
	if found {
		return &store.IngestResult{ID: id, Content: item.Content, Created: false}, nil
	}

	vec, err := e.embedItem(ctx, binding, item)
	if err != nil {
		return nil, err
	}

	// Conflict-tolerant insert: a concurrent ingest of the same content may
	// have won since the lookup; the loser resolves to the existing row.
	id, created, err := e.contents.InsertContent(ctx, storeID, item.Content, vec, item.Metadata)
	if err != nil {
		return nil, wrapStoreErr(err, "inserting content", esterr.FieldStoreID(storeID))
	}
	if !created {
		return &store.IngestResult{ID: id, Content: item.Content, Created: false}, nil
	}

	return &store.IngestResult{
		ID:         id,
		Content:    item.Content,
		Dimensions: len(vec),
		Created:    true,
	}, nil
}

// IngestBatch idempotently ingests an ordered batch. Already-present items
// are skipped without an embedding call; all new items are embedded in one
// provider round trip. In-batch duplicate content is de-duplicated before
// embedding (first occurrence wins), so the conflict-tolerant insert path
// only ever resolves cross-request races.
//
// Results are appended in two passes: pre-existing skips in encounter
// order, then newly-inserted items in new-item order, then in-batch
// duplicate skips. Total == Created + Skipped == len(items) always holds.
func (e *Engine) IngestBatch(ctx context.Context, storeID string, items []store.IngestItem) (*store.BatchResult, error) {
	if len(items) == 0 {
		return nil, esterr.New(esterr.CodeStoreContentInvalid,
			"batch must not be empty", esterr.FieldStoreID(storeID))
	}
	for i, item := range items {
		if strings.TrimSpace(item.Content) == "" {
			return nil, esterr.Errorf(esterr.CodeStoreContentInvalid,
				"batch item %d: content must not be empty", i)
		}
	}

	binding, err := e.catalog.ResolveStore(ctx, storeID)
	if err != nil {
		return nil, wrapStoreErr(err, "resolving store", esterr.FieldStoreID(storeID))
	}

	contents := make([]string, len(items))
	for i, item := range items {
		contents[i] = item.Content
	}

	existing, err := e.contents.LookupContents(ctx, storeID, contents)
	if err != nil {
		return nil, wrapStoreErr(err, "looking up batch contents", esterr.FieldStoreID(storeID))
	}

	res := &store.BatchResult{Total: len(items)}
	var newItems []store.IngestItem
	seen := make(map[string]bool)
	var dupes []string

	for _, item := range items {
		if id, ok := existing[item.Content]; ok {
			res.Results = append(res.Results, store.IngestResult{
				ID:      id,
				Content: item.Content,
				Created: false,
			})
			res.Skipped++
			continue
		}
		if seen[item.Content] {
			dupes = append(dupes, item.Content)
			continue
		}
		seen[item.Content] = true
		newItems = append(newItems, item)
	}

	if len(newItems) == 0 {
		return res, nil
	}

	// One provider round trip for the whole new-item portion. If it fails,
	// the entire portion fails together; skips above required no write and
	// are unaffected.
	vecs, err := e.embedItems(ctx, binding, newItems)
	if err != nil {
		return nil, err
	}

	insertedIDs := make(map[string]int64, len(newItems))
	for i, item := range newItems {
		id, created, err := e.contents.InsertContent(ctx, storeID, item.Content, vecs[i], item.Metadata)
		if err != nil {
			return nil, wrapStoreErr(err, "inserting batch content", esterr.FieldStoreID(storeID))
		}
		insertedIDs[item.Content] = id

		if created {
			res.Results = append(res.Results, store.IngestResult{
				ID:         id,
				Content:    item.Content,
				Dimensions: len(vecs[i]),
				Created:    true,
			})
			res.Created++
			continue
		}

		// A concurrent writer won the race; id 0 means even the re-read
		// found nothing, reported as a skip rather than failing the batch.
		res.Results = append(res.Results, store.IngestResult{
			ID:      id,
			Content: item.Content,
			Created: false,
		})
		res.Skipped++
	}

	for _, content := range dupes {
		res.Results = append(res.Results, store.IngestResult{
			ID:      insertedIDs[content],
			Content: content,
			Created: false,
		})
		res.Skipped++
	}

	return res, nil
}

// embedItem embeds one item using its query text when supplied, else its
// content, and validates the vector width against the store's binding.
func (e *Engine) embedItem(ctx context.Context, binding *store.Binding, item store.IngestItem) ([]float32, error) {
	emb, model, err := e.registry.Resolve(binding.ModelID)
	if err != nil {
		return nil, err
	}

	text := item.Content
	if item.QueryText != "" {
		text = item.QueryText
	}

	vec, err := emb.EmbedOne(ctx, model, text)
	if err != nil {
		return nil, err
	}
	if err := checkDimensions(binding, len(vec)); err != nil {
		return nil, err
	}
	return vec, nil
}

func (e *Engine) embedItems(ctx context.Context, binding *store.Binding, items []store.IngestItem) ([][]float32, error) {
	emb, model, err := e.registry.Resolve(binding.ModelID)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Content
		if item.QueryText != "" {
			texts[i] = item.QueryText
		}
	}

	vecs, err := emb.EmbedMany(ctx, model, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(items) {
		return nil, esterr.Errorf(esterr.CodeEmbedderResponseInvalid,
			"model %s returned %d embeddings for %d texts", binding.ModelID, len(vecs), len(items))
	}
	for _, vec := range vecs {
		if err := checkDimensions(binding, len(vec)); err != nil {
			return nil, err
		}
	}
	return vecs, nil
}

func checkDimensions(binding *store.Binding, got int) error {
	if got != binding.Dimensions {
		return esterr.New(esterr.CodeEmbedderResponseInvalid,
			"embedding width does not match store binding",
			esterr.FieldStoreID(binding.StoreID),
			esterr.FieldModelID(binding.ModelID),
			esterr.Field("want_dimensions", binding.Dimensions),
			esterr.Field("got_dimensions", got),
		)
	}
	return nil
}
