package mock

import (
	"context"
	"sync"

	"github.com/poiesic/enrichit/core"
)

// MockLanguageDetector is a test double for ai.LanguageDetector.
type MockLanguageDetector struct {
	// DetectLanguageFunc is called by DetectLanguage if set.
	DetectLanguageFunc func(ctx context.Context, text string) (core.LanguageDetection, error)

	mu        sync.Mutex
	callCount int
}

// NewMockLanguageDetector creates a mock detector that reports English.
func NewMockLanguageDetector() *MockLanguageDetector {
	return &MockLanguageDetector{}
}

// DetectLanguage returns the injected detection or English with full confidence.
func (m *MockLanguageDetector) DetectLanguage(ctx context.Context, text string) (core.LanguageDetection, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.DetectLanguageFunc != nil {
		return m.DetectLanguageFunc(ctx, text)
	}
	return core.LanguageDetection{ISOCode: "en", Confidence: 1}, nil
}

// CallCount returns the number of times DetectLanguage was called.
func (m *MockLanguageDetector) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}
