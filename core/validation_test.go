package core

import (
	"errors"
	"testing"
)

func TestValidateJob(t *testing.T) {
	tests := []struct {
		name    string
		job     *EnrichmentJob
		wantErr error
	}{
		{
			name:    "valid job",
			job:     &EnrichmentJob{BlobPath: "drop/img1.png", BlobURI: "https://x/img1.png"},
			wantErr: nil,
		},
		{
			name:    "valid nested job",
			job:     &EnrichmentJob{BlobPath: "drop/a/b/img1.png"},
			wantErr: nil,
		},
		{
			name:    "nil job",
			job:     nil,
			wantErr: ErrInvalidJob,
		},
		{
			name:    "empty blob path",
			job:     &EnrichmentJob{},
			wantErr: ErrEmptyBlobPath,
		},
		{
			name:    "no container",
			job:     &EnrichmentJob{BlobPath: "img1.png"},
			wantErr: ErrMissingContainer,
		},
		{
			name:    "leading slash",
			job:     &EnrichmentJob{BlobPath: "/img1.png"},
			wantErr: ErrMissingContainer,
		},
		{
			name:    "directory only",
			job:     &EnrichmentJob{BlobPath: "drop/folder/"},
			wantErr: ErrMissingFileName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJob(tt.job)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateJob() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateJob() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidJob) {
				t.Errorf("ValidateJob() error = %v, want wrapped %v", err, ErrInvalidJob)
			}
		})
	}
}
