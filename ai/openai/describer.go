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


package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/enrichit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Describer implements ai.ImageDescriber using OpenAI-compatible chat APIs.
type Describer struct {
	client    llms.Model
	maxTokens int
	logger    *slog.Logger
}

var _ ai.ImageDescriber = (*Describer)(nil)

// newDescriber is an internal constructor that returns the concrete type.
func newDescriber(config *ai.Config) (*Describer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	opts := []openai.Option{
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(chatToken(config.ChatKey)),
		openai.WithModel(config.ChatModel),
	}
	if config.ChatAPIType == ai.ChatAPIAzure {
		opts = append(opts,
			openai.WithAPIType(openai.APITypeAzure),
			openai.WithAPIVersion(config.ChatAPIVersion),
		)
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}

	return &Describer{
		client:    client,
		maxTokens: config.MaxTokens,
		logger:    slog.Default().With("component", "openai-describer"),
	}, nil
}

// NewDescriber creates a new image describer using the provided configuration.
//
// Returns ai.ImageDescriber interface to enforce abstraction.
func NewDescriber(config *ai.Config) (ai.ImageDescriber, error) {
	return newDescriber(config)
}

// DescribeImage sends a single non-streaming completion and returns the first choice.
func (d *Describer) DescribeImage(ctx context.Context, imageURL, prompt, systemMessage string) (string, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(systemMessage),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
				llms.ImageURLPart(imageURL),
			},
		},
	}

	response, err := d.client.GenerateContent(ctx, content,
		llms.WithMaxTokens(d.maxTokens),
		openai.WithLegacyMaxTokensField(),
	)
	if err != nil {
		d.logger.Error("failed to generate description", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		d.logger.Debug("no choices returned from model")
		return "", ai.ErrNoChoices
	}

	return strings.TrimSpace(response.Choices[0].Content), nil
}

// chatToken substitutes a placeholder for local OpenAI-compatible services
// that don't require authentication.
func chatToken(key string) string {
	if key == "" {
		return "none"
	}
	return key
}
