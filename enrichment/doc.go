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


// Package enrichment turns one uploaded image into searchable content.
//
// A Pipeline runs each job in two phases that fail independently. The content
// phase analyzes the image, asks a chat model to describe it, translates any
// OCR text, and writes one chunk record. The index phase reads the blob's tags
// and upserts one search document, using whatever index content the content
// phase managed to produce. Every stage is recorded on the document's status
// timeline, and the timeline is saved exactly once when the job ends.
//
// Basic usage:
//
//	pipeline, err := enrichment.NewPipeline(provider, aiConfig, blobs, chunks, indexer, recorder)
//	if err != nil {
//	    return err
//	}
//	out := pipeline.Process(ctx, core.EnrichmentJob{BlobPath: "upload/photos/cat.png"})
//	if !out.Succeeded() {
//	    slog.Warn("enrichment incomplete", "error", out.Err())
//	}
package enrichment
