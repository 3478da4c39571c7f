// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

package server

import (
	"context"
)

type embedTextInput struct {
	Body struct {
		Model string `json:"model" minLength:"1" example:"ollama/nomic-embed-text" doc:"Model reference in provider/model form"`
		Text  string `json:"text" minLength:"1"`
	}
}
type embedTextOutput struct {
	Body struct {
		Model      string    `json:"model"`
		Embedding  []float32 `json:"embedding"`
		Dimensions int       `json:"dimensions"`
	}
}

type embedTextsInput struct {
	Body struct {
		Model string   `json:"model" minLength:"1" doc:"Model reference in provider/model form"`
		Texts []string `json:"texts" minItems:"1"`
	}
}
type embedTextsOutput struct {
	Body struct {
		Model      string      `json:"model"`
		Embeddings [][]float32 `json:"embeddings" doc:"One vector per input text, in order"`
		Dimensions int         `json:"dimensions"`
		Count      int         `json:"count"`
	}
}

func (s *Server) handleEmbedText(ctx context.Context, input *embedTextInput) (*embedTextOutput, error) {
	vec, err := s.engine.EmbedText(ctx, input.Body.Model, input.Body.Text)
	if err != nil {
		return nil, apiError(err)
	}

	out := &embedTextOutput{}
	out.Body.Model = input.Body.Model
	out.Body.Embedding = vec
	out.Body.Dimensions = len(vec)
	return out, nil
}

func (s *Server) handleEmbedTexts(ctx context.Context, input *embedTextsInput) (*embedTextsOutput, error) {
	vecs, err := s.engine.EmbedTexts(ctx, input.Body.Model, input.Body.Texts)
	if err != nil {
		return nil, apiError(err)
	}

	out := &embedTextsOutput{}
	out.Body.Model = input.Body.Model
	out.Body.Embeddings = vecs
	out.Body.Count = len(vecs)
	if len(vecs) > 0 {
		out.Body.Dimensions = len(vecs[0])
	}
	return out, nil
}
