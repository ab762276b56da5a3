// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.VisionAnalyzer,
// ai.LanguageDetector, ai.Translator, ai.ImageDescriber, and ai.AIProvider for
// use in unit tests. The mocks allow tests to run without external AI service
// dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	result, err := mockProvider.Vision().AnalyzeImage(ctx, image)
//
//	// Custom behavior injection
//	vision := mock.NewMockVisionAnalyzer()
//	vision.AnalyzeImageFunc = func(ctx context.Context, image []byte) (*core.VisionResult, error) {
//	    return nil, &ai.HTTPError{Service: "vision", StatusCode: 400, Body: "bad image"}
//	}
//
//	// Check call counts
//	count := vision.CallCount()
//
// # Default Behavior
//
//   - MockVisionAnalyzer: Returns a result with a single "object" tag and no OCR text
//   - MockLanguageDetector: Reports the text as English with full confidence
//   - MockTranslator: Returns the input unchanged
//   - MockImageDescriber: Returns a fixed description
//   - MockProvider: Aggregates the four mocks
package mock
