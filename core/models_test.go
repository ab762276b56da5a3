package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDFromContent(t *testing.T) {
	t.Run("same content yields same ID", func(t *testing.T) {
		assert.Equal(t, IDFromContent("upload/cat.png"), IDFromContent("upload/cat.png"))
	})

	t.Run("different content yields different IDs", func(t *testing.T) {
		assert.NotEqual(t, IDFromContent("upload/cat.png"), IDFromContent("upload/dog.png"))
	})
}

func TestSplitBlobPath(t *testing.T) {
	tests := []struct {
		path string
		name string
		ext  string
		dir  string
	}{
		{"drop/img1.png", "img1", ".png", ""},
		{"upload/a/b/cat.jpeg", "cat", ".jpeg", "a/b/"},
		{"upload/folder/archive.tar.gz", "archive.tar", ".gz", "folder/"},
		{"upload/noext", "noext", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			name, ext, dir := SplitBlobPath(tt.path)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.ext, ext)
			assert.Equal(t, tt.dir, dir)
		})
	}
}

func TestChunkFilePath(t *testing.T) {
	assert.Equal(t, "img1.png/img1-0.json", ChunkFilePath("", "img1", ".png", 0))
	assert.Equal(t, "a/b/cat.jpeg/cat-0.json", ChunkFilePath("a/b/", "cat", ".jpeg", 0))
}

func TestFolder(t *testing.T) {
	assert.Equal(t, "", Folder(""))
	assert.Equal(t, "a/b", Folder("a/b/"))
}

func TestEnrichmentSummary_Flatten(t *testing.T) {
	var s EnrichmentSummary
	s.AddNarrative("Tags", "\t'cat', Confidence 0.9000")
	s.AddNarrative("", "note line")
	s.AddIndex("Descriptions", "chair", "table")
	s.AddIndex("", "cat")

	assert.Equal(t, "Tags:\n\t'cat', Confidence 0.9000\nnote line\n", s.NarrativeText())
	assert.Equal(t, "Descriptions: chair\n table\n cat\n ", s.IndexContent())
}

func TestEnrichmentSummary_Empty(t *testing.T) {
	var s EnrichmentSummary
	assert.Empty(t, s.NarrativeText())
	assert.Empty(t, s.IndexContent())
}
