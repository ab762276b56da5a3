package mock

import (
	"context"
	"sync"

	"github.com/poiesic/enrichit/core"
)

// MockVisionAnalyzer is a test double for ai.VisionAnalyzer.
type MockVisionAnalyzer struct {
	// AnalyzeImageFunc is called by AnalyzeImage if set.
	AnalyzeImageFunc func(ctx context.Context, image []byte) (*core.VisionResult, error)

	mu        sync.Mutex
	callCount int
}

// NewMockVisionAnalyzer creates a mock analyzer with default behavior.
func NewMockVisionAnalyzer() *MockVisionAnalyzer {
	return &MockVisionAnalyzer{}
}

// AnalyzeImage returns the injected result or a single default tag.
func (m *MockVisionAnalyzer) AnalyzeImage(ctx context.Context, image []byte) (*core.VisionResult, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.AnalyzeImageFunc != nil {
		return m.AnalyzeImageFunc(ctx, image)
	}
	return &core.VisionResult{
		Tags: []core.Detection{{Name: "object", Confidence: 1}},
	}, nil
}

// CallCount returns the number of times AnalyzeImage was called.
func (m *MockVisionAnalyzer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}
