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


// Package openai provides the image describer using OpenAI-compatible chat APIs.
//
// The describer talks to either an Azure OpenAI deployment or a plain
// OpenAI-compatible service through the langchaingo library. The flavor is
// selected by ai.Config.ChatAPIType.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithEndpoint("https://myaccount.cognitiveservices.azure.com/"),
//	    ai.WithKey(key),
//	    ai.WithLocation("eastus"),
//	    ai.WithChatHost("https://myaccount.openai.azure.com"),
//	    ai.WithChatKey(chatKey),
//	    ai.WithChatModel("gpt-4o"),
//	)
//
//	describer, err := openai.NewDescriber(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	text, err := describer.DescribeImage(ctx, signedURL, config.Prompt, config.SystemMessage)
package openai
