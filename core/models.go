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


package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for persisted entities.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// FileClass identifies the media type of an indexed document.
type FileClass string

const (
	// FileClassImage is the only class produced by image enrichment.
	FileClassImage FileClass = "image"
)

// EnrichmentJob is the unit of work announced on the enrichment queue.
// BlobPath includes the upload container as its first segment.
type EnrichmentJob struct {
	BlobPath string `json:"blob_name"`
	BlobURI  string `json:"blob_uri"`
}

// Caption is a generated caption with its confidence.
type Caption struct {
	Text       string
	Confidence float64
}

// Detection is a named object or tag with its confidence.
type Detection struct {
	Name       string
	Confidence float64
}

// VisionResult is the normalized output of an image analysis call.
// A nil or empty slice means the section was not returned.
type VisionResult struct {
	Caption       *Caption
	DenseCaptions []Caption
	Objects       []Detection
	Tags          []Detection
	OCRLines      []string // words from the first OCR page, in document order
}

// LanguageDetection is the outcome of a language detection call.
type LanguageDetection struct {
	ISOCode    string
	Confidence float64
}

// IndexChunk is the document upserted into the search index for one image.
type IndexChunk struct {
	ID                string    `json:"id"`
	ProcessedDatetime string    `json:"processed_datetime"`
	FileName          string    `json:"file_name"`
	FileURI           string    `json:"file_uri"`
	Folder            string    `json:"folder"`
	Title             string    `json:"title"`
	Content           string    `json:"content"`
	Pages             []int     `json:"pages"`
	ChunkFile         string    `json:"chunk_file"`
	FileClass         FileClass `json:"file_class"`
	Tags              []string  `json:"tags"`
}

// Chunk is the normalized content record persisted alongside the source image.
type Chunk struct {
	FileName          string    `json:"file_name"`
	FileURI           string    `json:"file_uri"`
	FileClass         FileClass `json:"file_class"`
	ProcessedDatetime string    `json:"processed_datetime"`
	Title             string    `json:"title"`
	Subtitle          string    `json:"subtitle"`
	Section           string    `json:"section"`
	Pages             []int     `json:"pages"`
	TokenCount        int       `json:"token_count"`
	Content           string    `json:"content"`
}

// Classification is the severity of a status event.
type Classification string

const (
	ClassificationDebug Classification = "Debug"
	ClassificationInfo  Classification = "Info"
	ClassificationError Classification = "Error"
)

// State is the lifecycle state recorded with a status event.
type State string

const (
	StateProcessing State = "Processing"
	StateQueued     State = "Queued"
	StateError      State = "Error"
	StateComplete   State = "Complete"
)

// StatusEvent is one entry in a document's status timeline.
type StatusEvent struct {
	DocumentKey    string
	Message        string
	Classification Classification
	State          State
	Timestamp      time.Time
}

// StatusRecord is the persisted status timeline for one document.
type StatusRecord struct {
	DocumentKey      string
	FileName         string
	State            State
	StateDescription string
	Tags             []string
	Events           []StatusEvent
	StartedAt        time.Time
	UpdatedAt        time.Time
}
