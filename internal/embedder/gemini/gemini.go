// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

// Package gemini implements the embedder capability using the Gemini API.
package gemini

import (
	"context"

	"google.golang.org/genai"

	"github.com/embedstore-dev/embedstore/internal/embedder"
	esterr "github.com/embedstore-dev/embedstore/pkg/errors"
)

// Compile-time interface check.
var _ embedder.Embedder = (*Embedder)(nil)

// Config holds Gemini embedder configuration.
type Config struct {
	APIKey string
}

// Embedder generates embeddings through the Gemini embedContent API.
type Embedder struct {
	client *genai.Client
}

// New creates a Gemini embedder. Returns an error if the API key is missing.
func New(ctx context.Context, cfg Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, esterr.New(esterr.CodeConfigValidateInvalidValue,
			"gemini: missing api_key in config", esterr.FieldProvider("gemini"))
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, esterr.Wrapf(err, esterr.CodeEmbedderUpstreamFailure, "creating gemini client")
	}

	return &Embedder{client: client}, nil
}

func (e *Embedder) Name() string { return "gemini" }

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
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	resp, err := e.client.Models.EmbedContent(ctx, model, contents, nil)
	if err != nil {
		return nil, esterr.Wrapf(err, esterr.CodeEmbedderUpstreamFailure, "calling gemini model %s", model)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, esterr.Errorf(esterr.CodeEmbedderResponseInvalid,
			"gemini model %s returned %d embeddings, expected %d", model, len(resp.Embeddings), len(texts))
	}

	vecs := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, esterr.Errorf(esterr.CodeEmbedderResponseInvalid,
				"gemini model %s returned an empty embedding at index %d", model, i)
		}
		vecs[i] = emb.Values
	}
	return vecs, nil
}
