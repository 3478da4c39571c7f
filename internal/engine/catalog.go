// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

package engine

import (
	"context"
	"errors"

	"github.com/embedstore-dev/embedstore/internal/embedder"
	"github.com/embedstore-dev/embedstore/internal/store"
	esterr "github.com/embedstore-dev/embedstore/pkg/errors"
)

// wrapModelErr converts storage sentinels from model operations into coded
// errors so HTTP status mapping distinguishes them from store errors.
func wrapModelErr(err error, msg string, fields ...esterr.Attr) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return esterr.Wrap(err, esterr.CodeModelNotFound, msg, fields...)
	case errors.Is(err, store.ErrConflict):
		return esterr.Wrap(err, esterr.CodeModelConflict, msg, fields...)
	case errors.Is(err, store.ErrInvalidInput):
		return esterr.Wrap(err, esterr.CodeModelInvalid, msg, fields...)
	default:
		return esterr.Wrap(err, esterr.CodeStoreDatabaseFailure, msg, fields...)
	}
}

// CreateModel registers an embedding model. The model ID must be a
// provider/model reference so ingestion can route embedding calls.
func (e *Engine) CreateModel(ctx context.Context, model *store.Model) (*store.Model, error) {
	if _, _, err := embedder.ParseModelRef(model.ID); err != nil {
		return nil, err
	}
	if err := e.catalog.CreateModel(ctx, model); err != nil {
		return nil, wrapModelErr(err, "creating model", esterr.FieldModelID(model.ID))
	}
	e.logger.Info("model registered", "model", model.ID, "dimensions", model.Dimensions)
	return e.GetModel(ctx, model.ID)
}

// GetModel returns one registered model.
func (e *Engine) GetModel(ctx context.Context, id string) (*store.Model, error) {
	model, err := e.catalog.GetModel(ctx, id)
	if err != nil {
		return nil, wrapModelErr(err, "getting model", esterr.FieldModelID(id))
	}
	return model, nil
}

// ListModels returns all registered models.
func (e *Engine) ListModels(ctx context.Context) ([]*store.Model, error) {
	models, err := e.catalog.ListModels(ctx)
	if err != nil {
		return nil, wrapModelErr(err, "listing models")
	}
	return models, nil
}

// UpdateModel applies a partial update. Dimension changes are rejected while
// any store is bound to the model.
func (e *Engine) UpdateModel(ctx context.Context, id string, upd store.ModelUpdate) (*store.Model, error) {
	model, err := e.catalog.UpdateModel(ctx, id, upd)
	if err != nil {
		return nil, wrapModelErr(err, "updating model", esterr.FieldModelID(id))
	}
	return model, nil
}

// DeleteModel removes a model. Rejected while any store is bound to it.
func (e *Engine) DeleteModel(ctx context.Context, id string) error {
	if err := e.catalog.DeleteModel(ctx, id); err != nil {
		return wrapModelErr(err, "deleting model", esterr.FieldModelID(id))
	}
	e.logger.Info("model deleted", "model", id)
	return nil
}

// CreateStore registers a store bound to a model and provisions its content
// table atomically.
func (e *Engine) CreateStore(ctx context.Context, s *store.Store) (*store.Store, error) {
	if err := e.catalog.CreateStore(ctx, s); err != nil {
		return nil, wrapStoreErr(err, "creating store", esterr.FieldStoreID(s.ID))
	}
	e.logger.Info("store created", "store", s.ID, "model", s.ModelID)
	return e.GetStore(ctx, s.ID)
}

// GetStore returns one registered store.
func (e *Engine) GetStore(ctx context.Context, id string) (*store.Store, error) {
	st, err := e.catalog.GetStore(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "getting store", esterr.FieldStoreID(id))
	}
	return st, nil
}

// ListStores returns all registered stores.
func (e *Engine) ListStores(ctx context.Context) ([]*store.Store, error) {
	stores, err := e.catalog.ListStores(ctx)
	if err != nil {
		return nil, wrapStoreErr(err, "listing stores")
	}
	return stores, nil
}

// UpdateStore applies a partial update. Rebinding to a model with a different
// vector width is rejected.
func (e *Engine) UpdateStore(ctx context.Context, id string, upd store.StoreUpdate) (*store.Store, error) {
	st, err := e.catalog.UpdateStore(ctx, id, upd)
	if err != nil {
		return nil, wrapStoreErr(err, "updating store", esterr.FieldStoreID(id))
	}
	return st, nil
}

// DeleteStore removes the store registration. Its content table and rows are
// preserved; re-registering the same ID adopts them.
func (e *Engine) DeleteStore(ctx context.Context, id string) error {
	if err := e.catalog.DeleteStore(ctx, id); err != nil {
		return wrapStoreErr(err, "deleting store", esterr.FieldStoreID(id))
	}
	e.logger.Info("store deleted", "store", id)
	return nil
}
