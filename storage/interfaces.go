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


package storage

import (
	"context"
	"time"

	"github.com/poiesic/enrichit/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// StatusRepository persists per-document status timelines.
type StatusRepository interface {
	Repository

	// PutStatus stores a status record, replacing any existing record for the same key.
	// Sets UpdatedAt automatically.
	PutStatus(ctx context.Context, record *core.StatusRecord) error

	// GetStatus retrieves the record for a document key.
	// Returns ErrNotFound if the record doesn't exist.
	GetStatus(ctx context.Context, documentKey string) (*core.StatusRecord, error)

	// ListStatus returns every stored record ordered by document key.
	ListStatus(ctx context.Context) ([]*core.StatusRecord, error)

	// DeleteStatus removes the record for a document key.
	// Returns ErrNotFound if the record doesn't exist.
	DeleteStatus(ctx context.Context, documentKey string) error
}

// BlobStore reads uploaded images and their metadata.
// Blob paths include the upload container as the first segment.
type BlobStore interface {
	// ReadBlob returns the full contents of a blob.
	// Returns ErrNotFound if the blob doesn't exist.
	ReadBlob(ctx context.Context, blobPath string) ([]byte, error)

	// Tags returns the blob's "tags" metadata split on commas.
	// A blob without tags metadata yields an empty list.
	Tags(ctx context.Context, blobPath string) ([]string, error)

	// SignedURL returns a time-limited URL granting read access to the blob.
	SignedURL(ctx context.Context, blobPath string, ttl time.Duration) (string, error)
}

// ChunkWriter persists chunk records to the content store.
type ChunkWriter interface {
	// WriteChunk stores chunk at chunkPath, overwriting any existing chunk.
	WriteChunk(ctx context.Context, chunkPath string, chunk *core.Chunk) error
}
