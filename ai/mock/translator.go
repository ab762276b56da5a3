package mock

import (
	"context"
	"sync"
)

// MockTranslator is a test double for ai.Translator.
type MockTranslator struct {
	// TranslateFunc is called by Translate if set.
	TranslateFunc func(ctx context.Context, text, targetLanguage string) (string, error)

	mu        sync.Mutex
	callCount int
}

// NewMockTranslator creates a mock translator that echoes its input.
func NewMockTranslator() *MockTranslator {
	return &MockTranslator{}
}

// Translate returns the injected translation or text unchanged.
func (m *MockTranslator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, text, targetLanguage)
	}
	return text, nil
}

// CallCount returns the number of times Translate was called.
func (m *MockTranslator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}
