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


package azure

import (
	"log/slog"

	"github.com/poiesic/enrichit/ai"
	"github.com/poiesic/enrichit/ai/openai"
)

// Provider implements ai.AIProvider with the cognitive services REST clients
// and a langchaingo image describer.
type Provider struct {
	config     *ai.Config
	vision     *VisionAnalyzer
	language   *LanguageDetector
	translator *Translator
	describer  ai.ImageDescriber
	logger     *slog.Logger
}

// NewProvider creates the production AI provider.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	vision, err := newVisionAnalyzer(config)
	if err != nil {
		return nil, err
	}

	language, err := newLanguageDetector(config)
	if err != nil {
		return nil, err
	}

	translator, err := newTranslator(config)
	if err != nil {
		return nil, err
	}

	describer, err := openai.NewDescriber(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:     config,
		vision:     vision,
		language:   language,
		translator: translator,
		describer:  describer,
		logger:     slog.Default().With("component", "azure-provider"),
	}, nil
}

// Vision returns the image analysis service.
func (p *Provider) Vision() ai.VisionAnalyzer {
	return p.vision
}

// Language returns the language detection service.
func (p *Provider) Language() ai.LanguageDetector {
	return p.language
}

// Translator returns the translation service.
func (p *Provider) Translator() ai.Translator {
	return p.translator
}

// Describer returns the image description service.
func (p *Provider) Describer() ai.ImageDescriber {
	return p.describer
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing azure provider")
	return nil
}
