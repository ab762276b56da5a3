package mock

import (
	"context"
	"sync"
)

// DefaultDescription is returned by MockImageDescriber when no func is injected.
const DefaultDescription = "An image."

// MockImageDescriber is a test double for ai.ImageDescriber.
type MockImageDescriber struct {
	// DescribeImageFunc is called by DescribeImage if set.
	DescribeImageFunc func(ctx context.Context, imageURL, prompt, systemMessage string) (string, error)

	mu        sync.Mutex
	callCount int
	lastURL   string
}

// NewMockImageDescriber creates a mock describer returning DefaultDescription.
func NewMockImageDescriber() *MockImageDescriber {
	return &MockImageDescriber{}
}

// DescribeImage records the URL and returns the injected or default description.
func (m *MockImageDescriber) DescribeImage(ctx context.Context, imageURL, prompt, systemMessage string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastURL = imageURL
	m.mu.Unlock()

	if m.DescribeImageFunc != nil {
		return m.DescribeImageFunc(ctx, imageURL, prompt, systemMessage)
	}
	return DefaultDescription, nil
}

// CallCount returns the number of times DescribeImage was called.
func (m *MockImageDescriber) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastURL returns the image URL from the most recent call.
func (m *MockImageDescriber) LastURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastURL
}
