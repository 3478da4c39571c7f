// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

package server

import (
	"context"

	"github.com/embedstore-dev/embedstore/internal/store"
)

// ModelBody is the JSON representation of a registered embedding model.
type ModelBody struct {
	ID          string `json:"id" example:"ollama/nomic-embed-text" doc:"Model reference in provider/model form"`
	Description string `json:"description,omitempty" doc:"Human-readable description"`
	Dimensions  int    `json:"dimensions" example:"768" doc:"Vector width produced by the model"`
}

func modelBody(m *store.Model) ModelBody {
	return ModelBody{ID: m.ID, Description: m.Description, Dimensions: m.Dimensions}
}

type createModelInput struct {
	Body struct {
		ID          string `json:"id" minLength:"1" doc:"Model reference in provider/model form"`
		Description string `json:"description,omitempty"`
		Dimensions  int    `json:"dimensions" minimum:"1" doc:"Vector width produced by the model"`
	}
}
type modelOutput struct {
	Body ModelBody
}

type listModelsOutput struct {
	Body struct {
		Models []ModelBody `json:"models"`
	}
}

// modelIDInput addresses a model as two path segments because model
// references contain a slash (provider/model).
type modelIDInput struct {
	Provider string `path:"provider" doc:"Provider name"`
	Model    string `path:"model" doc:"Model name within the provider"`
}

func (in *modelIDInput) ref() string {
	return in.Provider + "/" + in.Model
}

type updateModelInput struct {
	Provider string `path:"provider"`
	Model    string `path:"model"`
	Body     struct {
		Description *string `json:"description,omitempty"`
		Dimensions  *int    `json:"dimensions,omitempty" doc:"Rejected while any store is bound to the model"`
	}
}

func (s *Server) handleCreateModel(ctx context.Context, input *createModelInput) (*modelOutput, error) {
	model, err := s.engine.CreateModel(ctx, &store.Model{
		ID:          input.Body.ID,
		Description: input.Body.Description,
		Dimensions:  input.Body.Dimensions,
	})
	if err != nil {
		return nil, apiError(err)
	}
	return &modelOutput{Body: modelBody(model)}, nil
}

func (s *Server) handleListModels(ctx context.Context, _ *struct{}) (*listModelsOutput, error) {
	models, err := s.engine.ListModels(ctx)
	if err != nil {
		return nil, apiError(err)
	}
	out := &listModelsOutput{}
	out.Body.Models = make([]ModelBody, 0, len(models))
	for _, m := range models {
		out.Body.Models = append(out.Body.Models, modelBody(m))
	}
	return out, nil
}

func (s *Server) handleGetModel(ctx context.Context, input *modelIDInput) (*modelOutput, error) {
	model, err := s.engine.GetModel(ctx, input.ref())
	if err != nil {
		return nil, apiError(err)
	}
	return &modelOutput{Body: modelBody(model)}, nil
}

func (s *Server) handleUpdateModel(ctx context.Context, input *updateModelInput) (*modelOutput, error) {
	model, err := s.engine.UpdateModel(ctx, input.Provider+"/"+input.Model, store.ModelUpdate{
		Description: input.Body.Description,
		Dimensions:  input.Body.Dimensions,
	})
	if err != nil {
		return nil, apiError(err)
	}
	return &modelOutput{Body: modelBody(model)}, nil
}

func (s *Server) handleDeleteModel(ctx context.Context, input *modelIDInput) (*struct{}, error) {
	if err := s.engine.DeleteModel(ctx, input.ref()); err != nil {
		return nil, apiError(err)
	}
	return &struct{}{}, nil
}
