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


package mock

import "github.com/poiesic/enrichit/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates the mock vision, language, translation, and describer services.
type MockProvider struct {
	vision     *MockVisionAnalyzer
	language   *MockLanguageDetector
	translator *MockTranslator
	describer  *MockImageDescriber
}

var _ ai.AIProvider = (*MockProvider)(nil)

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns *MockProvider so tests can reach the concrete mocks for assertions.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		vision:     NewMockVisionAnalyzer(),
		language:   NewMockLanguageDetector(),
		translator: NewMockTranslator(),
		describer:  NewMockImageDescriber(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(vision *MockVisionAnalyzer, language *MockLanguageDetector, translator *MockTranslator, describer *MockImageDescriber) *MockProvider {
	return &MockProvider{
		vision:     vision,
		language:   language,
		translator: translator,
		describer:  describer,
	}
}

// Vision returns the mock vision analyzer.
func (p *MockProvider) Vision() ai.VisionAnalyzer {
	return p.vision
}

// Language returns the mock language detector.
func (p *MockProvider) Language() ai.LanguageDetector {
	return p.language
}

// Translator returns the mock translator.
func (p *MockProvider) Translator() ai.Translator {
	return p.translator
}

// Describer returns the mock image describer.
func (p *MockProvider) Describer() ai.ImageDescriber {
	return p.describer
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockVision returns the underlying mock analyzer for test assertions.
func (p *MockProvider) GetMockVision() *MockVisionAnalyzer {
	return p.vision
}

// GetMockLanguage returns the underlying mock detector for test assertions.
func (p *MockProvider) GetMockLanguage() *MockLanguageDetector {
	return p.language
}

// GetMockTranslator returns the underlying mock translator for test assertions.
func (p *MockProvider) GetMockTranslator() *MockTranslator {
	return p.translator
}

// GetMockDescriber returns the underlying mock describer for test assertions.
func (p *MockProvider) GetMockDescriber() *MockImageDescriber {
	return p.describer
}
