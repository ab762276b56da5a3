// Package config loads the enrichit service configuration from a YAML file.
//
// Every field has a default, so a missing file yields a usable local setup
// apart from the AI service endpoints and keys. The CLI layers flag and
// environment overrides on top of the loaded values.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/poiesic/enrichit/ai"
	"github.com/poiesic/enrichit/queue"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable consulted when no path is given.
const EnvConfigPath = "ENRICHIT_CONFIG"

// Config is the complete service configuration.
type Config struct {
	AI struct {
		Endpoint       string        `yaml:"endpoint"`
		Key            string        `yaml:"key"`
		Location       string        `yaml:"location"`
		TargetLanguage string        `yaml:"target_language"`
		Timeout        time.Duration `yaml:"timeout"`

		Chat struct {
			Host          string `yaml:"host"`
			Key           string `yaml:"key"`
			Model         string `yaml:"model"`
			APIType       string `yaml:"api_type"`
			APIVersion    string `yaml:"api_version"`
			Prompt        string `yaml:"prompt"`
			SystemMessage string `yaml:"system_message"`
			MaxTokens     int    `yaml:"max_tokens"`
		} `yaml:"chat"`
	} `yaml:"ai"`

	Storage struct {
		// StatusDir holds the badger status database.
		StatusDir string `yaml:"status_dir"`

		// UploadDir is the blob root; its first path level is the container.
		UploadDir string `yaml:"upload_dir"`

		// ContentDir receives chunk JSON files.
		ContentDir string `yaml:"content_dir"`

		// PublicURL is the externally reachable base of the blob handler.
		PublicURL     string        `yaml:"public_url"`
		SigningSecret string        `yaml:"signing_secret"`
		SignedURLTTL  time.Duration `yaml:"signed_url_ttl"`
	} `yaml:"storage"`

	Meilisearch struct {
		Host  string `yaml:"host"`
		Key   string `yaml:"key"`
		Index string `yaml:"index"`
	} `yaml:"meilisearch"`

	Nats struct {
		URL     string        `yaml:"url"`
		Stream  string        `yaml:"stream"`
		Subject string        `yaml:"subject"`
		Durable string        `yaml:"durable"`
		AckWait time.Duration `yaml:"ack_wait"`
	} `yaml:"nats"`

	Pipeline struct {
		PoolSize          int `yaml:"pool_size"`
		MaxImageDimension int `yaml:"max_image_dimension"`
	} `yaml:"pipeline"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

// Default returns a configuration populated with defaults.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	natsDefaults := queue.DefaultNATSConfig()

	cfg := &Config{}
	cfg.AI.TargetLanguage = aiDefaults.TargetLanguage
	cfg.AI.Timeout = aiDefaults.Timeout
	cfg.AI.Chat.Model = aiDefaults.ChatModel
	cfg.AI.Chat.APIType = aiDefaults.ChatAPIType
	cfg.AI.Chat.APIVersion = aiDefaults.ChatAPIVersion
	cfg.AI.Chat.Prompt = aiDefaults.Prompt
	cfg.AI.Chat.SystemMessage = aiDefaults.SystemMessage
	cfg.AI.Chat.MaxTokens = aiDefaults.MaxTokens

	cfg.Storage.StatusDir = "data/status"
	cfg.Storage.UploadDir = "data/blobs"
	cfg.Storage.ContentDir = "data/content"
	cfg.Storage.PublicURL = "http://localhost:8080"
	cfg.Storage.SignedURLTTL = 15 * time.Minute

	cfg.Meilisearch.Host = "http://localhost:7700"
	cfg.Meilisearch.Index = "images"

	cfg.Nats.URL = natsDefaults.URL
	cfg.Nats.Stream = natsDefaults.Stream
	cfg.Nats.Subject = natsDefaults.Subject
	cfg.Nats.Durable = natsDefaults.Durable
	cfg.Nats.AckWait = natsDefaults.AckWait

	cfg.Pipeline.PoolSize = max(runtime.NumCPU()/2, 1)
	cfg.Pipeline.MaxImageDimension = 4096

	cfg.Server.Addr = ":8080"
	return cfg
}

// Load reads the YAML file at path over the defaults. An empty path falls
// back to $ENRICHIT_CONFIG; when neither is set the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// AIConfig converts the AI section into a normalized ai.Config.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEndpoint(c.AI.Endpoint),
		ai.WithKey(c.AI.Key),
		ai.WithLocation(c.AI.Location),
		ai.WithTargetLanguage(c.AI.TargetLanguage),
		ai.WithTimeout(c.AI.Timeout),
		ai.WithChatHost(c.AI.Chat.Host),
		ai.WithChatKey(c.AI.Chat.Key),
		ai.WithChatModel(c.AI.Chat.Model),
		ai.WithChatAPIType(c.AI.Chat.APIType),
		ai.WithChatAPIVersion(c.AI.Chat.APIVersion),
		ai.WithPrompt(c.AI.Chat.Prompt, c.AI.Chat.SystemMessage),
		ai.WithMaxTokens(c.AI.Chat.MaxTokens),
	)
}

// NATSConfig converts the NATS section into a queue.NATSConfig.
func (c *Config) NATSConfig() queue.NATSConfig {
	nc := queue.DefaultNATSConfig()
	nc.URL = c.Nats.URL
	nc.Stream = c.Nats.Stream
	nc.Subject = c.Nats.Subject
	nc.Durable = c.Nats.Durable
	nc.AckWait = c.Nats.AckWait
	return nc
}

// Validate checks the settings every command depends on.
// AI settings are validated separately by ai.Config.
func (c *Config) Validate() error {
	if c.Storage.StatusDir == "" {
		return errors.New("config: storage.status_dir is required")
	}
	if c.Storage.UploadDir == "" {
		return errors.New("config: storage.upload_dir is required")
	}
	if c.Storage.ContentDir == "" {
		return errors.New("config: storage.content_dir is required")
	}
	if c.Storage.SigningSecret == "" {
		return errors.New("config: storage.signing_secret is required")
	}
	if c.Storage.SignedURLTTL <= 0 {
		return errors.New("config: storage.signed_url_ttl must be positive")
	}
	if c.Pipeline.PoolSize < 1 {
		return errors.New("config: pipeline.pool_size must be positive")
	}
	if c.Pipeline.MaxImageDimension < 0 {
		return errors.New("config: pipeline.max_image_dimension cannot be negative")
	}
	return nil
}
