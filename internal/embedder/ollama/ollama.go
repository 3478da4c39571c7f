// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

// Package ollama implements the embedder capability against a local or
// remote Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/embedstore-dev/embedstore/internal/embedder"
	esterr "github.com/embedstore-dev/embedstore/pkg/errors"
)

// Compile-time interface check.
var _ embedder.Embedder = (*Embedder)(nil)

// Config holds Ollama embedder configuration.
type Config struct {
	// BaseURL is the Ollama API base URL (default http://localhost:11434).
	BaseURL string

	// Timeout is the HTTP request timeout (default 30s).
	Timeout time.Duration
}

// Embedder generates embeddings through Ollama's /api/embed endpoint.
type Embedder struct {
	baseURL string
	client  *http.Client
}

// New creates an Ollama embedder.
func New(cfg Config) *Embedder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Embedder{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

func (e *Embedder) Name() string { return "ollama" }

// embedRequest is the request body for /api/embed. Input is either a
// single string or an array of strings.
type embedRequest struct {
	Model string `json:"model"`
	Input any    `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// EmbedOne embeds a single text.
func (e *Embedder) EmbedOne(ctx context.Context, model, text string) ([]float32, error) {
	vecs, err := e.embed(ctx, model, text, 1)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedMany embeds an ordered batch in one request.
func (e *Embedder) EmbedMany(ctx context.Context, model string, texts []string) ([][]float32, error) {
	return e.embed(ctx, model, texts, len(texts))
}

func (e *Embedder) embed(ctx context.Context, model string, input any, want int) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Model: model, Input: input})
	if err != nil {
		return nil, esterr.Wrapf(err, esterr.CodeEmbedderRequestInvalid, "marshalling embed request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, esterr.Wrapf(err, esterr.CodeEmbedderRequestInvalid, "creating embed request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, esterr.Wrapf(err, esterr.CodeEmbedderUpstreamFailure, "calling ollama model %s", model)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, esterr.Errorf(esterr.CodeEmbedderUpstreamFailure,
			"ollama model %s returned status %d: %s", model, resp.StatusCode, string(respBody))
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, esterr.Wrapf(err, esterr.CodeEmbedderResponseInvalid, "decoding embed response")
	}

	if len(out.Embeddings) != want {
		return nil, esterr.Errorf(esterr.CodeEmbedderResponseInvalid,
			"ollama model %s returned %d embeddings, expected %d", model, len(out.Embeddings), want)
	}
	return out.Embeddings, nil
}
