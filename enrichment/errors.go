package enrichment

import (
	"errors"
	"fmt"
)

var (
	// ErrBlobStoreRequired is returned when a blob store is not provided.
	ErrBlobStoreRequired = errors.New("blob store required")

	// ErrChunkWriterRequired is returned when a chunk writer is not provided.
	ErrChunkWriterRequired = errors.New("chunk writer required")

	// ErrIndexerRequired is returned when a search indexer is not provided.
	ErrIndexerRequired = errors.New("indexer required")

	// ErrStatusRecorderRequired is returned when a status recorder is not provided.
	ErrStatusRecorderRequired = errors.New("status recorder required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrAIConfigRequired is returned when an AI configuration is not provided.
	ErrAIConfigRequired = errors.New("AI config required")

	// ErrImageAnalysisFailed marks a vision analysis call that returned a non-success response.
	ErrImageAnalysisFailed = errors.New("image analysis failed")
)

// ImageAnalysisError carries the body of a failed vision analysis response.
// errors.Is(err, ErrImageAnalysisFailed) holds for every ImageAnalysisError.
type ImageAnalysisError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ImageAnalysisError) Error() string {
	return fmt.Sprintf("%s: %s", ErrImageAnalysisFailed, e.Body)
}

func (e *ImageAnalysisError) Unwrap() []error {
	return []error{ErrImageAnalysisFailed, e.Err}
}

// JobError records which phase and stage of a job failed.
type JobError struct {
	Phase Phase
	Stage Stage
	Err   error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("%s phase failed at %s: %v", e.Phase, e.Stage, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}
