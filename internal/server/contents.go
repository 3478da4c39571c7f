// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Embedstore Contributors

package server

import (
	"context"

	"github.com/embedstore-dev/embedstore/internal/engine"
	"github.com/embedstore-dev/embedstore/internal/store"
)

// IngestItemBody is one piece of content to embed and store.
type IngestItemBody struct {
	Content   string         `json:"content" minLength:"1" doc:"Content to store; duplicates are detected by exact match"`
	QueryText string         `json:"query_text,omitempty" doc:"Alternate text to embed instead of content"`
	Metadata  map[string]any `json:"metadata,omitempty" doc:"Arbitrary JSON metadata stored with the row"`
}

// IngestResultBody reports the outcome of ingesting one item. Dimensions is
// 0 when the content already existed and no embedding call was made.
type IngestResultBody struct {
	ID         int64  `json:"id" doc:"Row ID in the store"`
	Content    string `json:"content"`
	Dimensions int    `json:"dimensions" doc:"Vector width of the new embedding, or 0 for a duplicate"`
	Created    bool   `json:"created" doc:"Whether a new row was inserted"`
}

func ingestResultBody(r *store.IngestResult) IngestResultBody {
	return IngestResultBody{ID: r.ID, Content: r.Content, Dimensions: r.Dimensions, Created: r.Created}
}

type embedContentInput struct {
	ID   string `path:"id" doc:"Store identifier"`
	Body IngestItemBody
}
type embedContentOutput struct {
	Body IngestResultBody
}

type embedContentBatchInput struct {
	ID   string `path:"id" doc:"Store identifier"`
	Body struct {
		Items []IngestItemBody `json:"items" minItems:"1"`
	}
}
type embedContentBatchOutput struct {
	Body struct {
		Results []IngestResultBody `json:"results"`
		Total   int                `json:"total"`
		Created int                `json:"created"`
		Skipped int                `json:"skipped" doc:"Duplicates of existing rows or of earlier items in the batch"`
	}
}

type queryStoreInput struct {
	ID   string `path:"id" doc:"Store identifier"`
	Body struct {
		QueryText   string            `json:"query_text" minLength:"1" doc:"Text to embed and rank against"`
		Limit       int               `json:"limit,omitempty" minimum:"0" maximum:"100" doc:"Max results; 0 means the default of 10"`
		MaxDistance *float64          `json:"max_distance,omitempty" minimum:"0" maximum:"2" doc:"Cosine distance cutoff"`
		Filters     map[string]string `json:"filters,omitempty" doc:"Equality filters on metadata keys"`
	}
}
type queryStoreOutput struct {
	Body struct {
		QueryText string         `json:"query_text"`
		Results   []QueryHitBody `json:"results"`
		Count     int            `json:"count"`
	}
}

// QueryHitBody is one ranked similarity match.
type QueryHitBody struct {
	ID       int64   `json:"id"`
	Content  string  `json:"content"`
	Distance float64 `json:"distance" doc:"Cosine distance in [0,2]; lower is more similar"`
}

func ingestItem(b IngestItemBody) store.IngestItem {
	return store.IngestItem{Content: b.Content, QueryText: b.QueryText, Metadata: b.Metadata}
}

func (s *Server) handleEmbedContent(ctx context.Context, input *embedContentInput) (*embedContentOutput, error) {
	res, err := s.engine.IngestOne(ctx, input.ID, ingestItem(input.Body))
	if err != nil {
		return nil, apiError(err)
	}
	return &embedContentOutput{Body: ingestResultBody(res)}, nil
}

func (s *Server) handleEmbedContentBatch(ctx context.Context, input *embedContentBatchInput) (*embedContentBatchOutput, error) {
	items := make([]store.IngestItem, 0, len(input.Body.Items))
	for _, b := range input.Body.Items {
		items = append(items, ingestItem(b))
	}

	batch, err := s.engine.IngestBatch(ctx, input.ID, items)
	if err != nil {
		return nil, apiError(err)
	}

	out := &embedContentBatchOutput{}
	out.Body.Results = make([]IngestResultBody, 0, len(batch.Results))
	for i := range batch.Results {
		out.Body.Results = append(out.Body.Results, ingestResultBody(&batch.Results[i]))
	}
	out.Body.Total = batch.Total
	out.Body.Created = batch.Created
	out.Body.Skipped = batch.Skipped
	return out, nil
}

func (s *Server) handleQueryStore(ctx context.Context, input *queryStoreInput) (*queryStoreOutput, error) {
	res, err := s.engine.Query(ctx, input.ID, input.Body.QueryText, engine.QueryOptions{
		Limit:           input.Body.Limit,
		MaxDistance:     input.Body.MaxDistance,
		MetadataFilters: input.Body.Filters,
	})
	if err != nil {
		return nil, apiError(err)
	}

	out := &queryStoreOutput{}
	out.Body.QueryText = res.QueryText
	out.Body.Results = make([]QueryHitBody, 0, len(res.Results))
	for _, hit := range res.Results {
		out.Body.Results = append(out.Body.Results, QueryHitBody{ID: hit.ID, Content: hit.Content, Distance: hit.Distance})
	}
	out.Body.Count = res.Count
	return out, nil
}
