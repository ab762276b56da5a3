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


// Package enrichit wires the image enrichment pipeline to its storage,
// AI services, search index, and queue.
package enrichit

import (
	"context"
	"log/slog"

	"github.com/poiesic/enrichit/ai"
	"github.com/poiesic/enrichit/ai/azure"
	"github.com/poiesic/enrichit/config"
	"github.com/poiesic/enrichit/enrichment"
	"github.com/poiesic/enrichit/index"
	"github.com/poiesic/enrichit/index/meili"
	"github.com/poiesic/enrichit/queue"
	"github.com/poiesic/enrichit/status"
	"github.com/poiesic/enrichit/storage"
	"github.com/poiesic/enrichit/storage/badger"
	"github.com/poiesic/enrichit/storage/blob"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Service owns the long-lived resources shared by every enrichment job.
type Service struct {
	cfg        *config.Config
	aiConfig   *ai.Config
	backend    *badger.Backend
	statusRepo storage.StatusRepository
	recorder   *status.Recorder
	blobs      *blob.Store
	chunks     *blob.ChunkStore
	indexer    index.Indexer
	provider   ai.AIProvider
	registry   *prometheus.Registry
	metrics    *enrichment.Metrics
	logger     *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	provider       ai.AIProvider
	indexer        index.Indexer
	inMemoryStatus bool
	logger         *slog.Logger
}

// WithProvider uses provider instead of building the Azure provider from config.
func WithProvider(provider ai.AIProvider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = provider
	}
}

// WithIndexer uses indexer instead of connecting to Meilisearch.
func WithIndexer(indexer index.Indexer) ServiceOption {
	return func(o *serviceOptions) {
		o.indexer = indexer
	}
}

// WithInMemoryStatus keeps the status database in memory.
func WithInMemoryStatus() ServiceOption {
	return func(o *serviceOptions) {
		o.inMemoryStatus = true
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewService opens the status database, blob and chunk stores, AI provider,
// and search indexer described by cfg.
func NewService(cfg *config.Config, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := options.logger
	aiConfig := cfg.AIConfig()

	blobs, err := blob.NewStore(cfg.Storage.UploadDir, cfg.Storage.PublicURL, []byte(cfg.Storage.SigningSecret),
		blob.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	chunks, err := blob.NewChunkStore(cfg.Storage.ContentDir)
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = azure.NewProvider(aiConfig)
		if err != nil {
			return nil, err
		}
	}

	indexer := options.indexer
	if indexer == nil {
		indexer, err = meili.NewIndexer(cfg.Meilisearch.Host, cfg.Meilisearch.Key, cfg.Meilisearch.Index)
		if err != nil {
			provider.Close()
			return nil, err
		}
	}

	backend, err := badger.OpenBackend(cfg.Storage.StatusDir, options.inMemoryStatus)
	if err != nil {
		provider.Close()
		return nil, err
	}

	statusRepo, err := badger.NewStatusRepository(backend)
	if err != nil {
		backend.Close()
		provider.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Service{
		cfg:        cfg,
		aiConfig:   aiConfig,
		backend:    backend,
		statusRepo: statusRepo,
		recorder:   status.NewRecorder(statusRepo, status.WithLogger(logger)),
		blobs:      blobs,
		chunks:     chunks,
		indexer:    indexer,
		provider:   provider,
		registry:   registry,
		metrics:    enrichment.NewMetrics(registry),
		logger:     logger,
	}, nil
}

// Close releases the AI provider and the status database.
// Records still pending in the recorder are lost.
func (s *Service) Close() error {
	if n := s.recorder.Pending(); n > 0 {
		s.logger.Warn("closing with unsaved status records", "count", n)
	}

	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	if err := s.statusRepo.Close(); err != nil {
		s.logger.Error("error closing status repository", "err", err)
		return err
	}

	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// NewPipeline builds an enrichment pipeline over the service resources.
// opts are applied after the configured defaults.
func (s *Service) NewPipeline(opts ...enrichment.Option) (*enrichment.Pipeline, error) {
	base := []enrichment.Option{
		enrichment.WithLogger(s.logger),
		enrichment.WithMetrics(s.metrics),
		enrichment.WithMaxImageDimension(s.cfg.Pipeline.MaxImageDimension),
		enrichment.WithSignedURLTTL(s.cfg.Storage.SignedURLTTL),
	}
	return enrichment.NewPipeline(s.provider, s.aiConfig, s.blobs, s.chunks, s.indexer, s.recorder, append(base, opts...)...)
}

// NewDispatcher builds a queue dispatcher sized from the pipeline config.
func (s *Service) NewDispatcher(pipeline *enrichment.Pipeline, opts ...queue.DispatcherOption) (*queue.Dispatcher, error) {
	base := []queue.DispatcherOption{
		queue.WithPoolSize(s.cfg.Pipeline.PoolSize),
		queue.WithLogger(s.logger),
	}
	return queue.NewDispatcher(pipeline, append(base, opts...)...)
}

// ConnectQueue connects to the configured NATS JetStream subject.
func (s *Service) ConnectQueue(ctx context.Context) (*queue.NATSConsumer, error) {
	return queue.ConnectNATS(ctx, s.cfg.NATSConfig(), s.logger)
}

// Recorder returns the status recorder.
func (s *Service) Recorder() *status.Recorder {
	return s.recorder
}

// Blobs returns the blob store.
func (s *Service) Blobs() *blob.Store {
	return s.blobs
}

// Chunks returns the chunk store.
func (s *Service) Chunks() *blob.ChunkStore {
	return s.chunks
}

// Registry returns the Prometheus registry holding the service metrics.
func (s *Service) Registry() *prometheus.Registry {
	return s.registry
}
