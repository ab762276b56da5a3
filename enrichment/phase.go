package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/enrichit/ai"
	"github.com/poiesic/enrichit/core"
	"github.com/poiesic/enrichit/summary"
)

// phase is one independently failing half of an enrichment job.
type phase interface {
	// name identifies the phase in errors and metrics.
	name() Phase

	// run executes the phase, advancing job.stage as it goes.
	run(ctx context.Context, job *jobState) error

	// failureMessage renders the status message recorded when run fails.
	failureMessage(err error) string
}

// jobState is the mutable state threaded through both phases of one job.
type jobState struct {
	runID  string
	job    core.EnrichmentJob
	docKey string
	logger *slog.Logger

	stage Stage

	name, ext, dir string

	// indexContent is the partial index content, kept when content extraction
	// fails part way.
	indexContent string

	chunkPath  string
	indexChunk *core.IndexChunk
}

func (j *jobState) advance(stage Stage) {
	j.stage = stage
	j.logger.Debug("stage", "stage", stage)
}

// contentPhase runs vision analysis, description, OCR translation, and the
// chunk write.
type contentPhase struct {
	p *Pipeline
}

func (c *contentPhase) name() Phase {
	return PhaseContent
}

func (c *contentPhase) failureMessage(err error) string {
	var analysisErr *ImageAnalysisError
	if errors.As(err, &analysisErr) {
		return "Image analysis failed: " + analysisErr.Body
	}
	return "An error occurred - " + err.Error()
}

func (c *contentPhase) run(ctx context.Context, job *jobState) error {
	p := c.p

	job.advance(StageReceived)
	if err := p.status(ctx, job, "Received message from image-enrichment-queue", core.ClassificationDebug, core.StateProcessing); err != nil {
		return err
	}

	job.name, job.ext, job.dir = core.SplitBlobPath(job.job.BlobPath)
	imageURL, err := p.blobs.SignedURL(ctx, job.job.BlobPath, p.signedURLTTL)
	if err != nil {
		return fmt.Errorf("failed to sign blob url: %w", err)
	}

	job.advance(StageAnalyzing)
	data, err := p.blobs.ReadBlob(ctx, job.job.BlobPath)
	if err != nil {
		return fmt.Errorf("failed to read blob: %w", err)
	}
	data, err = downscale(data, job.ext, p.maxImageDimension, job.logger)
	if err != nil {
		return err
	}

	result, err := p.provider.Vision().AnalyzeImage(ctx, data)
	if err != nil {
		var httpErr *ai.HTTPError
		if errors.As(err, &httpErr) {
			return &ImageAnalysisError{StatusCode: httpErr.StatusCode, Body: httpErr.Body, Err: err}
		}
		return err
	}

	job.advance(StageSummarizing)
	description, err := p.provider.Describer().DescribeImage(ctx, imageURL, p.aiConfig.Prompt, p.aiConfig.SystemMessage)
	if err != nil {
		return fmt.Errorf("failed to describe image: %w", err)
	}
	s := summary.Build(result, description, job.name, p.aiConfig.GPURegion)
	job.indexContent = s.IndexContent()

	job.advance(StageTranslating)
	res, err := p.translation.Resolve(ctx, s.OCRText)
	if err != nil {
		return err
	}
	if res.Skipped {
		if err := p.status(ctx, job, "No OCR text detected", core.ClassificationInfo, core.StateProcessing); err != nil {
			return err
		}
	} else {
		s.AddNarrative("", res.Notes...)
		summary.AddOCRText(&s, res.Text)
		job.indexContent = s.IndexContent()
		if res.Translated {
			p.metrics.translated()
		}
	}

	narrative := s.NarrativeText()
	chunk := &core.Chunk{
		FileName:          job.job.BlobPath,
		FileURI:           job.job.BlobURI,
		FileClass:         core.FileClassImage,
		ProcessedDatetime: p.now().Format(time.RFC3339),
		Title:             job.name,
		Pages:             []int{0},
		TokenCount:        p.countTokens(narrative),
		Content:           narrative,
	}
	chunkPath := core.ChunkFilePath(job.dir, job.name, job.ext, 0)
	if err := p.chunks.WriteChunk(ctx, chunkPath, chunk); err != nil {
		return fmt.Errorf("failed to write chunk: %w", err)
	}
	job.advance(StageChunkWritten)

	return p.status(ctx, job, "Image enrichment is complete", core.ClassificationDebug, core.StateQueued)
}

// indexPhase records blob tags and upserts the search document. It runs
// whether or not content extraction succeeded.
type indexPhase struct {
	p *Pipeline
}

func (x *indexPhase) name() Phase {
	return PhaseIndex
}

func (x *indexPhase) failureMessage(err error) string {
	return "An error occurred while indexing - " + err.Error()
}

func (x *indexPhase) run(ctx context.Context, job *jobState) error {
	p := x.p

	job.advance(StageTagging)
	job.name, job.ext, job.dir = core.SplitBlobPath(job.job.BlobPath)

	tags, err := p.blobs.Tags(ctx, job.job.BlobPath)
	if err != nil {
		return fmt.Errorf("failed to read blob tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	if err := p.recorder.UpdateTags(ctx, job.docKey, tags); err != nil {
		return err
	}

	job.chunkPath = core.ChunkFilePath(job.dir, job.name, job.ext, 0)
	doc := core.IndexChunk{
		ID:                p.encodeID(job.chunkPath),
		ProcessedDatetime: p.now().Format(time.RFC3339),
		FileName:          job.job.BlobPath,
		FileURI:           job.job.BlobURI,
		Folder:            core.Folder(job.dir),
		Title:             job.name,
		Content:           job.indexContent,
		Pages:             []int{0},
		ChunkFile:         job.chunkPath,
		FileClass:         core.FileClassImage,
		Tags:              tags,
	}
	if err := p.indexer.Upsert(ctx, []core.IndexChunk{doc}); err != nil {
		return fmt.Errorf("failed to upsert index document: %w", err)
	}
	job.indexChunk = &doc
	job.advance(StageIndexed)

	return p.status(ctx, job, "Image added to index.", core.ClassificationInfo, core.StateComplete)
}
