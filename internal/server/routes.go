// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

package server

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	esterr "github.com/embedstore-dev/embedstore/pkg/errors"
)

func (s *Server) registerRoutes() {
	// Model endpoints
	huma.Register(s.api, huma.Operation{
		OperationID:   "create-model",
		Method:        http.MethodPost,
		Path:          "/api/v1/models",
		Summary:       "Register an embedding model",
		Tags:          []string{"models"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateModel)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-models",
		Method:      http.MethodGet,
		Path:        "/api/v1/models",
		Summary:     "List registered models",
		Tags:        []string{"models"},
	}, s.handleListModels)

	// Model references contain a slash (provider/model), so item routes use
	// two path segments.
	huma.Register(s.api, huma.Operation{
		OperationID: "get-model",
		Method:      http.MethodGet,
		Path:        "/api/v1/models/{provider}/{model}",
		Summary:     "Get model details",
		Tags:        []string{"models"},
	}, s.handleGetModel)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-model",
		Method:      http.MethodPatch,
		Path:        "/api/v1/models/{provider}/{model}",
		Summary:     "Update a model",
		Tags:        []string{"models"},
	}, s.handleUpdateModel)

	huma.Register(s.api, huma.Operation{
		OperationID:   "delete-model",
		Method:        http.MethodDelete,
		Path:          "/api/v1/models/{provider}/{model}",
		Summary:       "Delete a model",
		Tags:          []string{"models"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteModel)

	// Store endpoints
	huma.Register(s.api, huma.Operation{
		OperationID:   "create-store",
		Method:        http.MethodPost,
		Path:          "/api/v1/stores",
		Summary:       "Create a vector store",
		Tags:          []string{"stores"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateStore)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-stores",
		Method:      http.MethodGet,
		Path:        "/api/v1/stores",
		Summary:     "List vector stores",
		Tags:        []string{"stores"},
	}, s.handleListStores)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-store",
		Method:      http.MethodGet,
		Path:        "/api/v1/stores/{id}",
		Summary:     "Get store details",
		Tags:        []string{"stores"},
	}, s.handleGetStore)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-store",
		Method:      http.MethodPatch,
		Path:        "/api/v1/stores/{id}",
		Summary:     "Update a store",
		Tags:        []string{"stores"},
	}, s.handleUpdateStore)

	huma.Register(s.api, huma.Operation{
		OperationID:   "delete-store",
		Method:        http.MethodDelete,
		Path:          "/api/v1/stores/{id}",
		Summary:       "Delete a store registration",
		Description:   "Removes the store from the catalog. Embedded content is preserved and adopted if the same store ID is registered again.",
		Tags:          []string{"stores"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteStore)

	// Content endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "embed-content",
		Method:      http.MethodPost,
		Path:        "/api/v1/stores/{id}/contents",
		Summary:     "Embed and store one piece of content",
		Description: "Idempotent: re-submitting content already in the store returns the existing row without calling the embedding provider.",
		Tags:        []string{"contents"},
	}, s.handleEmbedContent)

	huma.Register(s.api, huma.Operation{
		OperationID: "embed-content-batch",
		Method:      http.MethodPost,
		Path:        "/api/v1/stores/{id}/contents/batch",
		Summary:     "Embed and store a batch of content",
		Tags:        []string{"contents"},
	}, s.handleEmbedContentBatch)

	huma.Register(s.api, huma.Operation{
		OperationID: "query-store",
		Method:      http.MethodPost,
		Path:        "/api/v1/stores/{id}/query",
		Summary:     "Query a store by similarity",
		Tags:        []string{"query"},
	}, s.handleQueryStore)

	// Raw embedding endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "embed-text",
		Method:      http.MethodPost,
		Path:        "/api/v1/embeddings",
		Summary:     "Embed a single text without storing it",
		Tags:        []string{"embeddings"},
	}, s.handleEmbedText)

	huma.Register(s.api, huma.Operation{
		OperationID: "embed-texts",
		Method:      http.MethodPost,
		Path:        "/api/v1/embeddings/batch",
		Summary:     "Embed a batch of texts without storing them",
		Tags:        []string{"embeddings"},
	}, s.handleEmbedTexts)
}

// apiError converts an engine error into a huma status error, preserving the
// machine-readable code as error detail.
func apiError(err error) error {
	if err == nil {
		return nil
	}
	return huma.NewError(esterr.HTTPStatus(err), err.Error())
}
