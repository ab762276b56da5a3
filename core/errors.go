package core

import "errors"

var (
	// ErrInvalidJob indicates an EnrichmentJob failed validation.
	ErrInvalidJob = errors.New("invalid enrichment job")

	// ErrEmptyBlobPath indicates the blob path is empty.
	ErrEmptyBlobPath = errors.New("blob path cannot be empty")

	// ErrMissingContainer indicates the blob path has no container segment.
	ErrMissingContainer = errors.New("blob path must start with a container segment")

	// ErrMissingFileName indicates the blob path ends without a file name.
	ErrMissingFileName = errors.New("blob path has no file name")
)
