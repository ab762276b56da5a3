package blob

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/enrichit/core"
	"github.com/poiesic/enrichit/storage"
)

// ChunkStore implements storage.ChunkWriter by writing chunk JSON under a content directory.
type ChunkStore struct {
	root   string
	logger *slog.Logger
}

var _ storage.ChunkWriter = (*ChunkStore)(nil)

// NewChunkStore creates a chunk store rooted at root.
func NewChunkStore(root string) (*ChunkStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create content root: %w", err)
	}
	return &ChunkStore{
		root:   filepath.Clean(root),
		logger: slog.Default().With("component", "chunk-store"),
	}, nil
}

// WriteChunk stores chunk at chunkPath, overwriting any existing chunk.
func (c *ChunkStore) WriteChunk(ctx context.Context, chunkPath string, chunk *core.Chunk) error {
	path, err := resolve(c.root, chunkPath)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(chunk, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode chunk: %w", err)
	}

	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write chunk: %w", err)
	}
	c.logger.Debug("wrote chunk", "path", chunkPath, "tokens", chunk.TokenCount)
	return nil
}

// ReadChunk loads a previously written chunk.
func (c *ChunkStore) ReadChunk(ctx context.Context, chunkPath string) (*core.Chunk, error) {
	path, err := resolve(c.root, chunkPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: chunk %s", storage.ErrNotFound, chunkPath)
		}
		return nil, fmt.Errorf("failed to read chunk: %w", err)
	}

	var chunk core.Chunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return nil, fmt.Errorf("failed to decode chunk: %w", err)
	}
	return &chunk, nil
}
