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


// Package status records the per-document processing timeline.
//
// A Recorder keeps the in-flight record for each document in memory and
// writes it through to a storage.StatusRepository on every change, so a crash
// mid-job leaves the partial timeline behind. Save flushes the final state and
// evicts the cached record.
package status

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"sync"
	"time"

	"github.com/poiesic/enrichit/core"
	"github.com/poiesic/enrichit/storage"
)

// DefaultSource prefixes every message recorded for image enrichment.
const DefaultSource = "ImageEnrichment"

// Recorder appends status events and tags to document status records.
// It is safe for concurrent use.
type Recorder struct {
	repo   storage.StatusRepository
	source string
	now    func() time.Time
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]*core.StatusRecord
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithSource sets the name prefixed to every message.
func WithSource(source string) Option {
	return func(r *Recorder) {
		r.source = source
	}
}

// WithLogger sets the recorder logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger.With("component", "status")
	}
}

// WithClock overrides the time source for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

// NewRecorder creates a recorder backed by repo.
func NewRecorder(repo storage.StatusRepository, opts ...Option) *Recorder {
	r := &Recorder{
		repo:   repo,
		source: DefaultSource,
		now:    time.Now,
		logger: slog.Default().With("component", "status"),
		cache:  make(map[string]*core.StatusRecord),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FormatMessage prefixes message with the recorder source.
func (r *Recorder) FormatMessage(message string) string {
	return fmt.Sprintf("%s - %s", r.source, message)
}

// Upsert appends an event to the document's timeline and writes the record through.
// The event is kept in memory even when the write fails, so a later Save can retry it.
func (r *Recorder) Upsert(ctx context.Context, documentKey, message string, classification core.Classification, state core.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, err := r.loadLocked(ctx, documentKey)
	if err != nil {
		return err
	}

	formatted := r.FormatMessage(message)
	record.Events = append(record.Events, core.StatusEvent{
		DocumentKey:    documentKey,
		Message:        formatted,
		Classification: classification,
		State:          state,
		Timestamp:      r.now().UTC(),
	})
	record.State = state
	record.StateDescription = formatted

	r.logger.Debug("status event", "document", documentKey, "state", state, "classification", classification)
	return r.writeLocked(ctx, record)
}

// UpdateTags replaces the document's tag set.
func (r *Recorder) UpdateTags(ctx context.Context, documentKey string, tags []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, err := r.loadLocked(ctx, documentKey)
	if err != nil {
		return err
	}
	record.Tags = slices.Clone(tags)
	if record.Tags == nil {
		record.Tags = []string{}
	}
	return r.writeLocked(ctx, record)
}

// Save flushes the document's record and evicts it from the cache.
// Saving a document with no pending record is a no-op.
func (r *Recorder) Save(ctx context.Context, documentKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.cache[documentKey]
	if !ok {
		return nil
	}
	delete(r.cache, documentKey)
	return r.writeLocked(ctx, record)
}

// Get returns a copy of the document's current record.
func (r *Recorder) Get(ctx context.Context, documentKey string) (*core.StatusRecord, error) {
	r.mu.Lock()
	cached, ok := r.cache[documentKey]
	if ok {
		clone := cloneRecord(cached)
		r.mu.Unlock()
		return clone, nil
	}
	r.mu.Unlock()

	return r.repo.GetStatus(ctx, documentKey)
}

// List returns every persisted record ordered by document key.
func (r *Recorder) List(ctx context.Context) ([]*core.StatusRecord, error) {
	return r.repo.ListStatus(ctx)
}

// Pending returns the number of documents with an unsaved record.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

func (r *Recorder) loadLocked(ctx context.Context, documentKey string) (*core.StatusRecord, error) {
	if record, ok := r.cache[documentKey]; ok {
		return record, nil
	}

	record, err := r.repo.GetStatus(ctx, documentKey)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		record = &core.StatusRecord{
			DocumentKey: documentKey,
			FileName:    path.Base(documentKey),
			Tags:        []string{},
			StartedAt:   r.now().UTC(),
		}
	default:
		return nil, fmt.Errorf("failed to load status for %s: %w", documentKey, err)
	}

	r.cache[documentKey] = record
	return record, nil
}

func (r *Recorder) writeLocked(ctx context.Context, record *core.StatusRecord) error {
	if err := r.repo.PutStatus(ctx, record); err != nil {
		r.logger.Error("failed to write status", "document", record.DocumentKey, "err", err)
		return fmt.Errorf("failed to write status for %s: %w", record.DocumentKey, err)
	}
	return nil
}

func cloneRecord(record *core.StatusRecord) *core.StatusRecord {
	clone := *record
	clone.Tags = slices.Clone(record.Tags)
	clone.Events = slices.Clone(record.Events)
	return &clone
}

// EncodeDocumentID maps a path to an index-safe document id.
// The encoding is unpadded URL-safe base64, which is deterministic and injective.
func EncodeDocumentID(p string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(p))
}

// DecodeDocumentID reverses EncodeDocumentID.
func DecodeDocumentID(id string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return "", fmt.Errorf("invalid document id %q: %w", id, err)
	}
	return string(data), nil
}
