// Package index defines the search index abstraction fed by the enrichment pipeline.
package index

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/poiesic/enrichit/core"
)

var (
	// ErrNoDocuments is returned when Upsert is called with an empty batch.
	ErrNoDocuments = errors.New("no documents to index")

	// ErrUpsertFailed is returned when the index accepted a batch but failed to apply it.
	ErrUpsertFailed = errors.New("index upsert failed")
)

// Indexer upserts documents into a search index.
// An upsert replaces any existing document with the same id and returns only
// once the documents are applied.
type Indexer interface {
	Upsert(ctx context.Context, docs []core.IndexChunk) error
}

// MemoryIndexer is an in-process Indexer keyed by document id.
// It backs dry runs and tests.
type MemoryIndexer struct {
	mu      sync.Mutex
	docs    map[string]core.IndexChunk
	upserts int
}

var _ Indexer = (*MemoryIndexer)(nil)

// NewMemoryIndexer creates an empty in-memory index.
func NewMemoryIndexer() *MemoryIndexer {
	return &MemoryIndexer{docs: make(map[string]core.IndexChunk)}
}

// Upsert stores each document, last writer wins.
func (m *MemoryIndexer) Upsert(ctx context.Context, docs []core.IndexChunk) error {
	if len(docs) == 0 {
		return ErrNoDocuments
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range docs {
		doc.Tags = slices.Clone(doc.Tags)
		m.docs[doc.ID] = doc
	}
	m.upserts++
	return nil
}

// Get returns the document stored under id.
func (m *MemoryIndexer) Get(id string) (core.IndexChunk, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	return doc, ok
}

// Len returns the number of distinct documents.
func (m *MemoryIndexer) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

// UpsertCount returns the number of successful Upsert calls.
func (m *MemoryIndexer) UpsertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upserts
}
