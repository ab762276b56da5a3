package core

import (
	"fmt"
	"strings"
)

// ValidateJob validates an EnrichmentJob.
//
// Validation rules:
//   - BlobPath must not be empty
//   - BlobPath must have a container segment followed by a file name
//
// BlobURI is not validated; it is copied verbatim into the index.
func ValidateJob(job *EnrichmentJob) error {
	if job == nil {
		return fmt.Errorf("%w: job is nil", ErrInvalidJob)
	}

	if job.BlobPath == "" {
		return fmt.Errorf("%w: %w", ErrInvalidJob, ErrEmptyBlobPath)
	}

	i := strings.Index(job.BlobPath, "/")
	if i <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidJob, ErrMissingContainer)
	}

	if strings.HasSuffix(job.BlobPath, "/") || i == len(job.BlobPath)-1 {
		return fmt.Errorf("%w: %w", ErrInvalidJob, ErrMissingFileName)
	}

	return nil
}
