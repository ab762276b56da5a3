package blob

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/enrichit/core"
	"github.com/poiesic/enrichit/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, now func() time.Time) *Store {
	t.Helper()
	opts := []Option{}
	if now != nil {
		opts = append(opts, WithClock(now))
	}
	s, err := NewStore(t.TempDir(), "http://localhost:8080", []byte("secret"), opts...)
	require.NoError(t, err)
	return s
}

func TestNewStore_Validation(t *testing.T) {
	_, err := NewStore(t.TempDir(), "http://localhost", nil)
	require.Error(t, err)

	_, err = NewStore(t.TempDir(), "", []byte("s"))
	require.Error(t, err)
}

func TestPutAndReadBlob(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	require.NoError(t, s.PutBlob(ctx, "upload/photos/cat.png", []byte("PNG")))

	data, err := s.ReadBlob(ctx, "upload/photos/cat.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("PNG"), data)

	_, err = os.Stat(filepath.Join(s.Root(), "upload", "photos", "cat.png"))
	require.NoError(t, err)
}

func TestReadBlob_NotFound(t *testing.T) {
	s := newTestStore(t, nil)
	_, err := s.ReadBlob(context.Background(), "upload/missing.png")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestReadBlob_PathTraversal(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	for _, p := range []string{"../etc/passwd", "upload/../../x", "/abs/path", ""} {
		_, err := s.ReadBlob(ctx, p)
		require.ErrorIs(t, err, storage.ErrInvalidPath, p)
	}
}

func TestTags(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()
	require.NoError(t, s.PutBlob(ctx, "upload/cat.png", []byte("x")))

	tags, err := s.Tags(ctx, "upload/cat.png")
	require.NoError(t, err)
	assert.NotNil(t, tags)
	assert.Empty(t, tags)

	require.NoError(t, s.SetMetadata(ctx, "upload/cat.png", map[string]string{"tags": "pets, indoor,,cats "}))
	tags, err = s.Tags(ctx, "upload/cat.png")
	require.NoError(t, err)
	assert.Equal(t, []string{"pets", "indoor", "cats"}, tags)

	require.NoError(t, s.SetMetadata(ctx, "upload/cat.png", map[string]string{"owner": "me"}))
	tags, err = s.Tags(ctx, "upload/cat.png")
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestTags_CorruptMetadata(t *testing.T) {
	s := newTestStore(t, nil)
	path := filepath.Join(s.Root(), "upload", "cat.png"+MetadataSuffix)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := s.Tags(context.Background(), "upload/cat.png")
	require.Error(t, err)
}

func TestSplitTags(t *testing.T) {
	tests := []struct {
		raw      string
		expected []string
	}{
		{"", []string{}},
		{"a", []string{"a"}},
		{"a,b", []string{"a", "b"}},
		{" a , b ,", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitTags(tt.raw))
		})
	}
}

func TestSignedURL(t *testing.T) {
	now := time.Unix(1700000000, 0)
	s := newTestStore(t, func() time.Time { return now })

	signed, err := s.SignedURL(context.Background(), "upload/my photos/cat.png", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", u.Host)
	assert.Equal(t, "/blobs/upload/my%20photos/cat.png", u.EscapedPath())
	assert.Equal(t, "1700003600", u.Query().Get("expires"))
	assert.Len(t, u.Query().Get("sig"), 64)

	assert.True(t, s.verify("upload/my photos/cat.png", "1700003600", u.Query().Get("sig")))
	assert.False(t, s.verify("upload/other.png", "1700003600", u.Query().Get("sig")))
	assert.False(t, s.verify("upload/my photos/cat.png", "1700009999", u.Query().Get("sig")))
	assert.False(t, s.verify("upload/my photos/cat.png", "nope", u.Query().Get("sig")))
}

func TestHandler(t *testing.T) {
	var clock atomic.Int64
	clock.Store(1700000000)
	s := newTestStore(t, func() time.Time { return time.Unix(clock.Load(), 0) })
	ctx := context.Background()
	require.NoError(t, s.PutBlob(ctx, "upload/cat.png", []byte("PNGDATA")))

	server := httptest.NewServer(NewHandler(s))
	defer server.Close()

	signed, err := s.SignedURL(ctx, "upload/cat.png", time.Minute)
	require.NoError(t, err)
	target := server.URL + strings.TrimPrefix(signed, "http://localhost:8080")

	resp, err := http.Get(target)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "PNGDATA", string(body))

	// Tampered signature
	resp, err = http.Get(strings.Replace(target, "sig=", "sig=0", 1))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Expired
	clock.Add(120)
	resp, err = http.Get(target)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHandler_MissingBlob(t *testing.T) {
	s := newTestStore(t, nil)
	server := httptest.NewServer(NewHandler(s))
	defer server.Close()

	signed, err := s.SignedURL(context.Background(), "upload/gone.png", time.Minute)
	require.NoError(t, err)

	resp, err := http.Get(server.URL + strings.TrimPrefix(signed, "http://localhost:8080"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	s := newTestStore(t, nil)
	rec := httptest.NewRecorder()
	NewHandler(s).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/blobs/upload/x.png", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestChunkStore(t *testing.T) {
	root := t.TempDir()
	c, err := NewChunkStore(root)
	require.NoError(t, err)
	ctx := context.Background()

	chunk := &core.Chunk{
		FileName:          "upload/photos/cat.png",
		FileURI:           "https://blobs.example.com/upload/photos/cat.png",
		FileClass:         core.FileClassImage,
		ProcessedDatetime: "2026-01-01T00:00:00Z",
		Title:             "cat",
		Pages:             []int{0},
		TokenCount:        12,
		Content:           "Tags:\n\t'cat', Confidence 0.9000\n",
	}
	chunkPath := core.ChunkFilePath("photos/", "cat", ".png", 0)
	require.NoError(t, c.WriteChunk(ctx, chunkPath, chunk))

	_, err = os.Stat(filepath.Join(root, "photos", "cat.png", "cat-0.json"))
	require.NoError(t, err)

	got, err := c.ReadChunk(ctx, chunkPath)
	require.NoError(t, err)
	assert.Equal(t, chunk, got)

	chunk.Content = "replaced"
	require.NoError(t, c.WriteChunk(ctx, chunkPath, chunk))
	got, err = c.ReadChunk(ctx, chunkPath)
	require.NoError(t, err)
	assert.Equal(t, "replaced", got.Content)
}

func TestChunkStore_Invalid(t *testing.T) {
	c, err := NewChunkStore(t.TempDir())
	require.NoError(t, err)

	err = c.WriteChunk(context.Background(), "../escape.json", &core.Chunk{})
	require.ErrorIs(t, err, storage.ErrInvalidPath)

	_, err = c.ReadChunk(context.Background(), "missing/x-0.json")
	require.ErrorIs(t, err, storage.ErrNotFound)
}
