// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

package server

import (
	"context"

	"github.com/embedstore-dev/embedstore/internal/store"
)

// StoreBody is the JSON representation of a vector store.
type StoreBody struct {
	ID          string `json:"id" example:"docs" doc:"Store identifier; also names the content table"`
	Model       string `json:"model" example:"ollama/nomic-embed-text" doc:"Bound embedding model"`
	Description string `json:"description,omitempty"`
}

func storeBody(st *store.Store) StoreBody {
	return StoreBody{ID: st.ID, Model: st.ModelID, Description: st.Description}
}

type createStoreInput struct {
	Body struct {
		ID          string `json:"id" minLength:"1" doc:"Store identifier: letters, digits, underscores; must not start with a digit"`
		Model       string `json:"model" minLength:"1" doc:"Model reference the store binds to"`
		Description string `json:"description,omitempty"`
	}
}
type storeOutput struct {
	Body StoreBody
}

type listStoresOutput struct {
	Body struct {
		Stores []StoreBody `json:"stores"`
	}
}

type storeIDInput struct {
	ID string `path:"id" doc:"Store identifier"`
}

type updateStoreInput struct {
	ID   string `path:"id"`
	Body struct {
		Model       *string `json:"model,omitempty" doc:"Rejected unless the new model has the same vector width"`
		Description *string `json:"description,omitempty"`
	}
}

func (s *Server) handleCreateStore(ctx context.Context, input *createStoreInput) (*storeOutput, error) {
	st, err := s.engine.CreateStore(ctx, &store.Store{
		ID:          input.Body.ID,
		ModelID:     input.Body.Model,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, apiError(err)
	}
	return &storeOutput{Body: storeBody(st)}, nil
}

func (s *Server) handleListStores(ctx context.Context, _ *struct{}) (*listStoresOutput, error) {
	stores, err := s.engine.ListStores(ctx)
	if err != nil {
		return nil, apiError(err)
	}
	out := &listStoresOutput{}
	out.Body.Stores = make([]StoreBody, 0, len(stores))
	for _, st := range stores {
		out.Body.Stores = append(out.Body.Stores, storeBody(st))
	}
	return out, nil
}

func (s *Server) handleGetStore(ctx context.Context, input *storeIDInput) (*storeOutput, error) {
	st, err := s.engine.GetStore(ctx, input.ID)
	if err != nil {
		return nil, apiError(err)
	}
	return &storeOutput{Body: storeBody(st)}, nil
}

func (s *Server) handleUpdateStore(ctx context.Context, input *updateStoreInput) (*storeOutput, error) {
	st, err := s.engine.UpdateStore(ctx, input.ID, store.StoreUpdate{
		ModelID:     input.Body.Model,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, apiError(err)
	}
	return &storeOutput{Body: storeBody(st)}, nil
}

func (s *Server) handleDeleteStore(ctx context.Context, input *storeIDInput) (*struct{}, error) {
	if err := s.engine.DeleteStore(ctx, input.ID); err != nil {
		return nil, apiError(err)
	}
	return &struct{}{}, nil
}
