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


package enrichment

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/enrichit/ai"
	"github.com/poiesic/enrichit/core"
	"github.com/poiesic/enrichit/index"
	"github.com/poiesic/enrichit/status"
	"github.com/poiesic/enrichit/storage"
	"github.com/poiesic/enrichit/translation"
	"github.com/tmc/langchaingo/llms"
)

const (
	// DefaultSignedURLTTL is how long the image URL handed to the describer stays valid.
	DefaultSignedURLTTL = 15 * time.Minute

	// DefaultMaxImageDimension bounds the longest side of images sent for analysis.
	DefaultMaxImageDimension = 4096
)

// StatusRecorder is the subset of the status recorder a job writes to.
type StatusRecorder interface {
	Upsert(ctx context.Context, documentKey, message string, classification core.Classification, state core.State) error
	UpdateTags(ctx context.Context, documentKey string, tags []string) error
	Save(ctx context.Context, documentKey string) error
}

var _ StatusRecorder = (*status.Recorder)(nil)

// Outcome reports what happened to one job. Process never returns an error;
// failures are carried here instead.
type Outcome struct {
	RunID       string
	DocumentKey string

	// Stage is the last stage reached, or StageErrored when a phase failed.
	Stage Stage

	ContentErr error
	IndexErr   error
	SaveErr    error

	ChunkPath  string
	IndexChunk *core.IndexChunk
	Duration   time.Duration
}

// Succeeded reports whether both phases and the final save completed.
func (o *Outcome) Succeeded() bool {
	return o.ContentErr == nil && o.IndexErr == nil && o.SaveErr == nil
}

// Err returns the first error recorded for the job, or nil.
func (o *Outcome) Err() error {
	switch {
	case o.ContentErr != nil:
		return o.ContentErr
	case o.IndexErr != nil:
		return o.IndexErr
	default:
		return o.SaveErr
	}
}

// Result classifies the outcome for metrics: "success", "partial", or "failed".
func (o *Outcome) Result() string {
	switch {
	case o.Succeeded():
		return "success"
	case o.ContentErr != nil && o.IndexErr != nil:
		return "failed"
	default:
		return "partial"
	}
}

// Pipeline runs the enrichment stages for one image at a time.
// A single Pipeline may process many jobs concurrently.
type Pipeline struct {
	provider    ai.AIProvider
	aiConfig    *ai.Config
	blobs       storage.BlobStore
	chunks      storage.ChunkWriter
	indexer     index.Indexer
	recorder    StatusRecorder
	translation *translation.Stage
	phases      []phase

	maxImageDimension int
	signedURLTTL      time.Duration
	tokenModel        string
	countTokens       func(text string) int
	encodeID          func(chunkPath string) string
	now               func() time.Time
	metrics           *Metrics
	logger            *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithMetrics records job outcomes on m.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) error {
		p.metrics = m
		return nil
	}
}

// WithMaxImageDimension sets the longest side images are downscaled to before
// analysis. Zero disables downscaling.
func WithMaxImageDimension(n int) Option {
	return func(p *Pipeline) error {
		if n < 0 {
			n = 0
		}
		p.maxImageDimension = n
		return nil
	}
}

// WithTokenCounter replaces the function used to size chunks.
func WithTokenCounter(count func(text string) int) Option {
	return func(p *Pipeline) error {
		p.countTokens = count
		return nil
	}
}

// WithTokenModel sets the model whose tokenizer sizes chunks.
// Default is the configured chat model.
func WithTokenModel(model string) Option {
	return func(p *Pipeline) error {
		p.tokenModel = model
		return nil
	}
}

// WithSignedURLTTL sets the lifetime of the image URL sent to the describer.
func WithSignedURLTTL(ttl time.Duration) Option {
	return func(p *Pipeline) error {
		if ttl > 0 {
			p.signedURLTTL = ttl
		}
		return nil
	}
}

// WithClock overrides the time source for processed timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) error {
		p.now = now
		return nil
	}
}

// NewPipeline creates a new enrichment pipeline.
func NewPipeline(
	provider ai.AIProvider,
	cfg *ai.Config,
	blobs storage.BlobStore,
	chunks storage.ChunkWriter,
	indexer index.Indexer,
	recorder StatusRecorder,
	opts ...Option,
) (*Pipeline, error) {
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if cfg == nil {
		return nil, ErrAIConfigRequired
	}
	if blobs == nil {
		return nil, ErrBlobStoreRequired
	}
	if chunks == nil {
		return nil, ErrChunkWriterRequired
	}
	if indexer == nil {
		return nil, ErrIndexerRequired
	}
	if recorder == nil {
		return nil, ErrStatusRecorderRequired
	}

	p := &Pipeline{
		provider:          provider,
		aiConfig:          cfg,
		blobs:             blobs,
		chunks:            chunks,
		indexer:           indexer,
		recorder:          recorder,
		maxImageDimension: DefaultMaxImageDimension,
		signedURLTTL:      DefaultSignedURLTTL,
		tokenModel:        cfg.ChatModel,
		encodeID:          status.EncodeDocumentID,
		now:               time.Now,
		logger:            slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	p.logger = p.logger.With("component", "enrichment")
	if p.countTokens == nil {
		model := p.tokenModel
		p.countTokens = func(text string) int {
			return llms.CountTokens(model, text)
		}
	}
	p.translation = translation.NewStage(provider.Language(), provider.Translator(), cfg.TargetLanguage).
		WithLogger(p.logger)
	p.phases = []phase{&contentPhase{p: p}, &indexPhase{p: p}}

	return p, nil
}

// Process runs both phases for job and saves its status record.
// A failed content phase does not stop the index phase.
func (p *Pipeline) Process(ctx context.Context, job core.EnrichmentJob) *Outcome {
	start := p.now()
	runID := uuid.NewString()
	state := &jobState{
		runID:  runID,
		job:    job,
		docKey: job.BlobPath,
		logger: p.logger.With("run_id", runID, "blob", job.BlobPath),
	}
	out := &Outcome{RunID: runID, DocumentKey: state.docKey}

	state.logger.Info("processing image")

	for _, ph := range p.phases {
		err := ph.run(ctx, state)
		if err == nil {
			continue
		}

		jobErr := &JobError{Phase: ph.name(), Stage: state.stage, Err: err}
		state.logger.Error("phase failed", "phase", ph.name(), "stage", state.stage, "error", err)
		if statusErr := p.status(ctx, state, ph.failureMessage(err), core.ClassificationError, core.StateError); statusErr != nil {
			state.logger.Error("failed to record phase failure", "phase", ph.name(), "error", statusErr)
		}
		state.stage = StageErrored

		switch ph.name() {
		case PhaseContent:
			out.ContentErr = jobErr
		case PhaseIndex:
			out.IndexErr = jobErr
		}
	}

	if err := p.recorder.Save(ctx, state.docKey); err != nil {
		state.logger.Error("failed to save status", "error", err)
		out.SaveErr = err
	}

	if out.ContentErr == nil && out.IndexErr == nil {
		state.stage = StageDone
	} else {
		state.stage = StageErrored
	}
	out.Stage = state.stage
	out.ChunkPath = state.chunkPath
	out.IndexChunk = state.indexChunk
	out.Duration = p.now().Sub(start)

	p.metrics.observe(out)
	state.logger.Info("processed image", "result", out.Result(), "duration", out.Duration)
	return out
}

func (p *Pipeline) status(ctx context.Context, job *jobState, message string, classification core.Classification, state core.State) error {
	return p.recorder.Upsert(ctx, job.docKey, message, classification, state)
}
