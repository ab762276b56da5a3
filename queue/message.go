package queue

import (
	"encoding/json"
	"fmt"

	"github.com/poiesic/enrichit/core"
)

// DecodeMessage parses a queue message body into a validated job.
func DecodeMessage(data []byte) (core.EnrichmentJob, error) {
	var job core.EnrichmentJob
	if err := json.Unmarshal(data, &job); err != nil {
		return core.EnrichmentJob{}, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	if err := core.ValidateJob(&job); err != nil {
		return core.EnrichmentJob{}, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	return job, nil
}

// EncodeMessage renders job as a queue message body.
func EncodeMessage(job core.EnrichmentJob) ([]byte, error) {
	if err := core.ValidateJob(&job); err != nil {
		return nil, err
	}
	return json.Marshal(job)
}
