// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

// Package openai implements the embedder capability using the OpenAI
// Embeddings API.
package openai

import (
	"context"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/embedstore-dev/embedstore/internal/embedder"
	esterr "github.com/embedstore-dev/embedstore/pkg/errors"
)

// Compile-time interface check.
var _ embedder.Embedder = (*Embedder)(nil)

// Config holds OpenAI embedder configuration.
type Config struct {
	APIKey  string
	BaseURL string // optional, useful for testing against a mock server
}

// Embedder generates embeddings through the OpenAI Embeddings API.
type Embedder struct {
	client openaisdk.Client
}

// New creates an OpenAI embedder. Returns an error if the API key is missing.
func New(cfg Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, esterr.New(esterr.CodeConfigValidateInvalidValue,
			"openai: missing api_key in config", esterr.FieldProvider("openai"))
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Embedder{client: openaisdk.NewClient(opts...)}, nil
}

func (e *Embedder) Name() string { return "openai" }

// EmbedOne embeds a single text.
func (e *Embedder) EmbedOne(ctx context.Context, model, text string) ([]float32, error) {
	vecs, err := e.EmbedMany(ctx, model, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedMany embeds an ordered batch in one API call.
func (e *Embedder) EmbedMany(ctx context.Context, model string, texts []string) ([][]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Model: openaisdk.EmbeddingModel(model),
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, esterr.Wrapf(err, esterr.CodeEmbedderUpstreamFailure, "calling openai model %s", model)
	}

	if len(resp.Data) != len(texts) {
		return nil, esterr.Errorf(esterr.CodeEmbedderResponseInvalid,
			"openai model %s returned %d embeddings, expected %d", model, len(resp.Data), len(texts))
	}

	// The API may return data out of order; Index is authoritative.
	vecs := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(texts) {
			return nil, esterr.Errorf(esterr.CodeEmbedderResponseInvalid,
				"openai model %s returned embedding index %d out of range", model, d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		vecs[d.Index] = vec
	}
	return vecs, nil
}
