package blob

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/poiesic/enrichit/storage"
)

// Handler serves blobs at /blobs/<path> for requests carrying a valid signature.
type Handler struct {
	store *Store
}

// NewHandler returns an http.Handler serving signed blob URLs from store.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	escaped, ok := strings.CutPrefix(r.URL.EscapedPath(), "/blobs/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	blobPath, err := url.PathUnescape(escaped)
	if err != nil {
		http.Error(w, "bad path", http.StatusBadRequest)
		return
	}

	query := r.URL.Query()
	if !h.store.verify(blobPath, query.Get("expires"), query.Get("sig")) {
		h.store.logger.Warn("rejected blob request", "path", blobPath, "remote", r.RemoteAddr)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	data, err := h.store.ReadBlob(r.Context(), blobPath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if errors.Is(err, storage.ErrInvalidPath) {
			http.Error(w, "bad path", http.StatusBadRequest)
			return
		}
		h.store.logger.Error("failed to serve blob", "path", blobPath, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.ServeContent(w, r, path.Base(blobPath), time.Time{}, bytes.NewReader(data))
}
