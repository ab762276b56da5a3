// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package meili implements index.Indexer on Meilisearch.
package meili

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"github.com/poiesic/enrichit/core"
	"github.com/poiesic/enrichit/index"
)

// PrimaryKey is the document field used as the Meilisearch primary key.
const PrimaryKey = "id"

// SearchableAttributes are the fields matched by full-text queries.
var SearchableAttributes = []string{"content", "title", "tags", "file_name"}

// DefaultTaskPollInterval is how often Upsert polls a pending indexing task.
const DefaultTaskPollInterval = 100 * time.Millisecond

// FilterableAttributes are the fields usable in search filters.
var FilterableAttributes = []interface{}{"folder", "file_class", "tags"}

// Indexer upserts index chunks into a Meilisearch index.
type Indexer struct {
	client       meilisearch.ServiceManager
	indexName    string
	pollInterval time.Duration
	logger       *slog.Logger
}

var _ index.Indexer = (*Indexer)(nil)

// NewIndexer connects to host, ensures the index exists with the "id" primary
// key, and configures its searchable and filterable attributes.
func NewIndexer(host, apiKey, indexName string) (*Indexer, error) {
	if host == "" || indexName == "" {
		return nil, fmt.Errorf("meilisearch host and index name are required")
	}

	logger := slog.Default().With("component", "meilisearch", "index", indexName)
	client := meilisearch.New(host, meilisearch.WithAPIKey(apiKey))

	if _, err := client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        indexName,
		PrimaryKey: PrimaryKey,
	}); err != nil {
		// The index usually exists already.
		logger.Warn("create index failed", "err", err)
	}

	searchable := SearchableAttributes
	if _, err := client.Index(indexName).UpdateSearchableAttributes(&searchable); err != nil {
		return nil, fmt.Errorf("failed to configure searchable attributes: %w", err)
	}

	filterable := FilterableAttributes
	if _, err := client.Index(indexName).UpdateFilterableAttributes(&filterable); err != nil {
		return nil, fmt.Errorf("failed to configure filterable attributes: %w", err)
	}

	logger.Info("connected to meilisearch", "host", host)
	return &Indexer{
		client:       client,
		indexName:    indexName,
		pollInterval: DefaultTaskPollInterval,
		logger:       logger,
	}, nil
}

// Upsert submits docs as a single task and waits for Meilisearch to apply it.
// A document with an existing id replaces it. A task that ends in any status
// other than succeeded returns an error wrapping index.ErrUpsertFailed.
func (i *Indexer) Upsert(ctx context.Context, docs []core.IndexChunk) error {
	if len(docs) == 0 {
		return index.ErrNoDocuments
	}

	pk := PrimaryKey
	info, err := i.client.Index(i.indexName).UpdateDocumentsWithContext(ctx, docs, &meilisearch.DocumentOptions{PrimaryKey: &pk})
	if err != nil {
		return fmt.Errorf("failed to index documents: %w", err)
	}
	i.logger.Debug("submitted documents", "count", len(docs), "task_uid", info.TaskUID)

	task, err := i.client.Index(i.indexName).WaitForTaskWithContext(ctx, info.TaskUID, i.pollInterval)
	if err != nil {
		return fmt.Errorf("failed to wait for index task %d: %w", info.TaskUID, err)
	}
	if task.Status != meilisearch.TaskStatusSucceeded {
		return fmt.Errorf("%w: task %d %s: %s (%s)", index.ErrUpsertFailed, info.TaskUID, task.Status, task.Error.Message, task.Error.Code)
	}
	return nil
}

// Search runs a full-text query against the index. A non-empty filter is
// passed through as a Meilisearch filter expression, e.g. `folder = "photos"`.
func (i *Indexer) Search(ctx context.Context, query string, limit int64, filter string) ([]core.IndexChunk, error) {
	req := &meilisearch.SearchRequest{Limit: limit}
	if filter != "" {
		req.Filter = filter
	}

	resp, err := i.client.Index(i.indexName).SearchWithContext(ctx, query, req)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", i.indexName, err)
	}

	// Hits arrive as loosely typed maps; round-trip them into index chunks.
	raw, err := json.Marshal(resp.Hits)
	if err != nil {
		return nil, fmt.Errorf("failed to decode search hits: %w", err)
	}
	var hits []core.IndexChunk
	if err := json.Unmarshal(raw, &hits); err != nil {
		return nil, fmt.Errorf("failed to decode search hits: %w", err)
	}
	return hits, nil
}

// Document returns the index document stored under id.
func (i *Indexer) Document(ctx context.Context, id string) (*core.IndexChunk, error) {
	var doc core.IndexChunk
	if err := i.client.Index(i.indexName).GetDocumentWithContext(ctx, id, &meilisearch.DocumentQuery{}, &doc); err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	return &doc, nil
}
