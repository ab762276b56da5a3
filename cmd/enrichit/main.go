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


package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/poiesic/enrichit/config"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "enrichit",
		Usage: "Image enrichment and indexing service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				EnvVars: []string{config.EnvConfigPath},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Optional .env file loaded before reading the environment",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:    "ai-endpoint",
				Usage:   "Cognitive services endpoint for vision, language, and translation",
				EnvVars: []string{"AZURE_AI_ENDPOINT"},
			},
			&cli.StringFlag{
				Name:    "ai-key",
				Usage:   "Cognitive services subscription key",
				EnvVars: []string{"AZURE_AI_KEY"},
			},
			&cli.StringFlag{
				Name:    "ai-location",
				Usage:   "Cognitive services region",
				EnvVars: []string{"AZURE_AI_LOCATION"},
			},
			&cli.StringFlag{
				Name:    "target-language",
				Usage:   "Language OCR text is translated into",
				EnvVars: []string{"TARGET_TRANSLATION_LANGUAGE"},
			},
			&cli.StringFlag{
				Name:    "chat-host",
				Usage:   "Chat completion host URL",
				EnvVars: []string{"AZURE_OPENAI_ENDPOINT"},
			},
			&cli.StringFlag{
				Name:    "chat-key",
				Usage:   "Chat completion API key",
				EnvVars: []string{"AZURE_OPENAI_KEY"},
			},
			&cli.StringFlag{
				Name:    "chat-model",
				Usage:   "Chat model or deployment used to describe images",
				EnvVars: []string{"GPT4O_MODEL"},
			},
			&cli.StringFlag{
				Name:    "prompt",
				Usage:   "Prompt sent with every image",
				EnvVars: []string{"GPT4O_PROMPT"},
			},
			&cli.StringFlag{
				Name:    "signing-secret",
				Usage:   "Secret used to sign blob URLs",
				EnvVars: []string{"ENRICHIT_SIGNING_SECRET"},
			},
			&cli.StringFlag{
				Name:    "meili-host",
				Usage:   "Meilisearch host URL",
				EnvVars: []string{"MEILI_HOST"},
			},
			&cli.StringFlag{
				Name:    "meili-key",
				Usage:   "Meilisearch API key",
				EnvVars: []string{"MEILI_MASTER_KEY"},
			},
			&cli.StringFlag{
				Name:    "nats-url",
				Usage:   "NATS server URL",
				EnvVars: []string{"NATS_URL"},
			},
		},
		Before: func(c *cli.Context) error {
			if err := loadEnvFile(c.String("env-file")); err != nil {
				return err
			}
			return setupLogger(c)
		},
		Commands: []*cli.Command{
			serveCommand(),
			enrichCommand(),
			enqueueCommand(),
			searchCommand(),
			statusCommand(),
		},
	}
}

// loadEnvFile loads path into the environment. A missing file is not an error.
// Variables already set in the environment win.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// loadConfig reads the config file and applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	overrides := map[string]*string{
		"ai-endpoint":     &cfg.AI.Endpoint,
		"ai-key":          &cfg.AI.Key,
		"ai-location":     &cfg.AI.Location,
		"target-language": &cfg.AI.TargetLanguage,
		"chat-host":       &cfg.AI.Chat.Host,
		"chat-key":        &cfg.AI.Chat.Key,
		"chat-model":      &cfg.AI.Chat.Model,
		"prompt":          &cfg.AI.Chat.Prompt,
		"signing-secret":  &cfg.Storage.SigningSecret,
		"meili-host":      &cfg.Meilisearch.Host,
		"meili-key":       &cfg.Meilisearch.Key,
		"nats-url":        &cfg.Nats.URL,
	}
	for name, field := range overrides {
		if c.IsSet(name) {
			*field = c.String(name)
		}
	}
	return cfg, nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
