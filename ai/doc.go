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


// Package ai provides abstractions for the AI services used by enrichit.
//
// This package defines interfaces for the four external calls the enrichment
// pipeline makes: vision analysis, language detection, translation, and
// multimodal chat completion. Business logic depends on these interfaces
// rather than on concrete clients.
//
// # Implementation Packages
//
//   - ai/azure: REST clients for vision, language, and translation, plus the
//     production AIProvider
//   - ai/openai: image description through langchaingo (Azure OpenAI or
//     any OpenAI-compatible endpoint)
//   - ai/mock: call-counting test doubles
//
// # Region capability
//
// Caption and dense caption analysis are only available in some regions.
// Config.Normalize resolves Config.GPURegion once from Config.Location; the
// vision client and the summary builder both read that flag instead of
// re-deriving it.
//
// # Usage Example
//
//	cfg := ai.NewConfig(
//	    ai.WithEndpoint(endpoint),
//	    ai.WithKey(key),
//	    ai.WithLocation("eastus"),
//	    ai.WithChatHost(chatHost),
//	    ai.WithChatKey(chatKey),
//	)
//	provider, err := azure.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	result, err := provider.Vision().AnalyzeImage(ctx, imageBytes)
package ai
