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
	"errors"
	"slices"
	"strings"
	"time"
)

// GPURegions lists the locations where caption and dense caption analysis are available.
var GPURegions = []string{
	"eastus",
	"francecentral",
	"koreacentral",
	"northeurope",
	"southeastasia",
	"westeurope",
	"westus",
}

// Chat API flavors understood by the describer.
const (
	ChatAPIAzure  = "azure"
	ChatAPIOpenAI = "openai"
)

// Config holds configuration for AI service providers.
type Config struct {
	// Endpoint is the base URL of the cognitive services account that hosts
	// vision, language detection, and translation.
	// Example: "https://myaccount.cognitiveservices.azure.com/"
	Endpoint string

	// Key is the subscription key sent with vision, language, and translation calls.
	Key string

	// Location is the account region, e.g. "eastus".
	Location string

	// GPURegion is resolved from Location by Normalize. When false, caption and
	// dense caption features are neither requested nor summarized.
	GPURegion bool

	// TargetLanguage is the ISO 639-1 code OCR text is translated into.
	TargetLanguage string

	// ChatHost is the base URL of the chat completion service.
	ChatHost string

	// ChatKey is the API key for the chat completion service.
	ChatKey string

	// ChatModel is the model (or Azure deployment) used to describe images.
	ChatModel string

	// ChatAPIType selects the chat API flavor: "azure" or "openai".
	ChatAPIType string

	// ChatAPIVersion is the Azure OpenAI API version.
	ChatAPIVersion string

	// Prompt and SystemMessage drive the image description.
	Prompt        string
	SystemMessage string

	// MaxTokens bounds the length of the image description.
	// Default: 100
	MaxTokens int

	// Timeout bounds each outbound HTTP request.
	// Default: 60s
	Timeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEndpoint sets the cognitive services endpoint.
func WithEndpoint(endpoint string) ConfigOption {
	return func(c *Config) {
		c.Endpoint = endpoint
	}
}

// WithKey sets the cognitive services subscription key.
func WithKey(key string) ConfigOption {
	return func(c *Config) {
		c.Key = key
	}
}

// WithLocation sets the cognitive services region.
func WithLocation(location string) ConfigOption {
	return func(c *Config) {
		c.Location = location
	}
}

// WithTargetLanguage sets the OCR translation target.
func WithTargetLanguage(lang string) ConfigOption {
	return func(c *Config) {
		c.TargetLanguage = lang
	}
}

// WithChatHost sets the chat completion host URL.
func WithChatHost(host string) ConfigOption {
	return func(c *Config) {
		c.ChatHost = host
	}
}

// WithChatKey sets the chat completion API key.
func WithChatKey(key string) ConfigOption {
	return func(c *Config) {
		c.ChatKey = key
	}
}

// WithChatModel sets the chat model or deployment.
func WithChatModel(model string) ConfigOption {
	return func(c *Config) {
		c.ChatModel = model
	}
}

// WithChatAPIType sets the chat API flavor.
func WithChatAPIType(apiType string) ConfigOption {
	return func(c *Config) {
		c.ChatAPIType = apiType
	}
}

// WithChatAPIVersion sets the Azure OpenAI API version.
func WithChatAPIVersion(version string) ConfigOption {
	return func(c *Config) {
		c.ChatAPIVersion = version
	}
}

// WithPrompt sets the user prompt and system message used to describe images.
func WithPrompt(prompt, systemMessage string) ConfigOption {
	return func(c *Config) {
		c.Prompt = prompt
		c.SystemMessage = systemMessage
	}
}

// WithMaxTokens sets the description token budget.
func WithMaxTokens(n int) ConfigOption {
	return func(c *Config) {
		c.MaxTokens = n
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = d
	}
}

// DefaultConfig returns a Config with defaults for everything except endpoints and keys.
func DefaultConfig() *Config {
	return &Config{
		TargetLanguage: "en",
		ChatModel:      "gpt-4o",
		ChatAPIType:    ChatAPIAzure,
		ChatAPIVersion: "2024-02-01",
		Prompt:         "Describe this image in detail.",
		SystemMessage:  "You are an assistant that describes images for a search index.",
		MaxTokens:      100,
		Timeout:        60 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
// The returned config is normalized, so GPURegion is already resolved.
//
// Example:
//
//	cfg := NewConfig(
//	    WithEndpoint("https://myaccount.cognitiveservices.azure.com/"),
//	    WithKey(key),
//	    WithLocation("eastus"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.Normalize()
	return cfg
}

// IsGPURegion reports whether a location supports caption features.
func IsGPURegion(location string) bool {
	return slices.Contains(GPURegions, strings.ToLower(strings.TrimSpace(location)))
}

// Normalize ensures the configuration is in a canonical form.
// Endpoints get a trailing slash and the region capability is resolved.
func (c *Config) Normalize() {
	if c.Endpoint != "" && !strings.HasSuffix(c.Endpoint, "/") {
		c.Endpoint += "/"
	}
	c.ChatHost = strings.TrimSuffix(c.ChatHost, "/")
	c.ChatAPIType = strings.ToLower(c.ChatAPIType)
	c.GPURegion = IsGPURegion(c.Location)
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Endpoint == "" {
		return errors.New("ai config: Endpoint is required")
	}
	if c.Key == "" {
		return errors.New("ai config: Key is required")
	}
	if c.Location == "" {
		return errors.New("ai config: Location is required")
	}
	if c.TargetLanguage == "" {
		return errors.New("ai config: TargetLanguage is required")
	}
	if c.ChatHost == "" {
		return errors.New("ai config: ChatHost is required")
	}
	if c.ChatModel == "" {
		return errors.New("ai config: ChatModel is required")
	}
	if c.ChatAPIType != ChatAPIAzure && c.ChatAPIType != ChatAPIOpenAI {
		return errors.New("ai config: ChatAPIType must be azure or openai")
	}
	if c.MaxTokens < 1 {
		return errors.New("ai config: MaxTokens must be positive")
	}
	if c.Timeout <= 0 {
		return errors.New("ai config: Timeout must be positive")
	}
	return nil
}
