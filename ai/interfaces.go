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


package ai

import (
	"context"

	"github.com/poiesic/enrichit/core"
)

// VisionAnalyzer runs image analysis over raw image bytes.
// Implementations must be thread-safe for concurrent use.
type VisionAnalyzer interface {
	// AnalyzeImage submits the image and returns the normalized result.
	// The set of requested features depends on the configured region capability.
	// A non-success response is returned as *HTTPError.
	AnalyzeImage(ctx context.Context, image []byte) (*core.VisionResult, error)
}

// LanguageDetector identifies the dominant language of a text.
type LanguageDetector interface {
	// DetectLanguage returns the ISO 639-1 code and confidence for text.
	// Only a leading prefix of text is submitted.
	DetectLanguage(ctx context.Context, text string) (core.LanguageDetection, error)
}

// Translator translates text into a target language.
type Translator interface {
	// Translate submits the full text and returns its translation.
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// ImageDescriber produces a natural-language description of an image.
type ImageDescriber interface {
	// DescribeImage sends one chat completion with a system message and a user turn
	// holding the prompt and the image URL, returning the first choice's text.
	DescribeImage(ctx context.Context, imageURL, prompt, systemMessage string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	Vision() VisionAnalyzer
	Language() LanguageDetector
	Translator() Translator
	Describer() ImageDescriber

	// Close releases resources held by the provider and its services.
	Close() error
}
