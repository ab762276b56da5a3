// Package blob implements the blob store and chunk writer on the local filesystem.
//
// Blob paths carry the upload container as their first segment and map
// directly onto directories under the store root. Blob metadata lives in a
// "<file>.metadata.json" sidecar next to the blob. Read access for external
// services is granted through HMAC-signed, expiring URLs served by Handler.
package blob

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/enrichit/storage"
)

// MetadataSuffix is appended to a blob's file name to locate its metadata sidecar.
const MetadataSuffix = ".metadata.json"

// TagsMetadataKey is the metadata entry holding comma separated tags.
const TagsMetadataKey = "tags"

// Store implements storage.BlobStore on a directory tree.
type Store struct {
	root      string
	publicURL string
	secret    []byte
	now       func() time.Time
	logger    *slog.Logger
}

var _ storage.BlobStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger.With("component", "blob-store")
	}
}

// WithClock overrides the time source used for URL expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a blob store rooted at root. Signed URLs are built on
// publicURL and signed with secret.
func NewStore(root, publicURL string, secret []byte, opts ...Option) (*Store, error) {
	if len(secret) == 0 {
		return nil, errors.New("blob store: signing secret is required")
	}
	if _, err := url.Parse(publicURL); err != nil || publicURL == "" {
		return nil, fmt.Errorf("blob store: invalid public URL %q", publicURL)
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob root: %w", err)
	}

	s := &Store{
		root:      filepath.Clean(root),
		publicURL: strings.TrimSuffix(publicURL, "/"),
		secret:    secret,
		now:       time.Now,
		logger:    slog.Default().With("component", "blob-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// ReadBlob returns the full contents of a blob.
func (s *Store) ReadBlob(ctx context.Context, blobPath string) ([]byte, error) {
	path, err := resolve(s.root, blobPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: blob %s", storage.ErrNotFound, blobPath)
		}
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}

// Tags returns the blob's tags metadata. A missing sidecar or missing tags
// entry yields an empty list.
func (s *Store) Tags(ctx context.Context, blobPath string) ([]string, error) {
	path, err := resolve(s.root, blobPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path + MetadataSuffix)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read blob metadata: %w", err)
	}

	var metadata map[string]string
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("failed to decode blob metadata: %w", err)
	}
	return SplitTags(metadata[TagsMetadataKey]), nil
}

// SetMetadata writes the metadata sidecar for a blob, replacing any existing entries.
func (s *Store) SetMetadata(ctx context.Context, blobPath string, metadata map[string]string) error {
	path, err := resolve(s.root, blobPath)
	if err != nil {
		return err
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode blob metadata: %w", err)
	}
	return writeFileAtomic(path+MetadataSuffix, data)
}

// PutBlob stores data at blobPath, creating parent directories as needed.
func (s *Store) PutBlob(ctx context.Context, blobPath string, data []byte) error {
	path, err := resolve(s.root, blobPath)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// SignedURL returns a URL under publicURL that grants read access to the blob until ttl elapses.
func (s *Store) SignedURL(ctx context.Context, blobPath string, ttl time.Duration) (string, error) {
	if _, err := resolve(s.root, blobPath); err != nil {
		return "", err
	}

	expires := s.now().Add(ttl).Unix()
	query := url.Values{}
	query.Set("expires", strconv.FormatInt(expires, 10))
	query.Set("sig", s.sign(blobPath, expires))

	return s.publicURL + "/blobs/" + escapePath(blobPath) + "?" + query.Encode(), nil
}

// sign computes the hex HMAC-SHA256 of the blob path and expiry.
func (s *Store) sign(blobPath string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(blobPath))
	mac.Write([]byte{'\n'})
	mac.Write([]byte(strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// verify reports whether sig is a valid, unexpired signature for blobPath.
func (s *Store) verify(blobPath, expiresParam, sig string) bool {
	expires, err := strconv.ParseInt(expiresParam, 10, 64)
	if err != nil {
		return false
	}
	if s.now().Unix() > expires {
		return false
	}
	expected := s.sign(blobPath, expires)
	return hmac.Equal([]byte(expected), []byte(sig))
}

// SplitTags splits comma separated tags, trimming whitespace and dropping empty entries.
func SplitTags(raw string) []string {
	tags := []string{}
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// resolve maps a slash separated relative path onto root, rejecting paths that escape it.
func resolve(root, relPath string) (string, error) {
	if relPath == "" || strings.HasPrefix(relPath, "/") {
		return "", fmt.Errorf("%w: %q", storage.ErrInvalidPath, relPath)
	}
	path := filepath.Join(root, filepath.FromSlash(relPath))
	if path != root && !strings.HasPrefix(path, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes root", storage.ErrInvalidPath, relPath)
	}
	return path, nil
}

func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

// writeFileAtomic writes data to a temp file beside path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
