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


package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EmbeddingConfig configures the embedding service connection.
type EmbeddingConfig struct {
	// Host is the base URL of an OpenAI-compatible embedding service.
	Host string `yaml:"host"`

	// Model is the embedding model identifier.
	Model string `yaml:"model"`

	// APITokenEnv names the environment variable holding the API token.
	// Local services typically ignore the token.
	APITokenEnv string `yaml:"api_token_env"`
}

// ChunkingConfig configures how rendered documents are split.
type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// IndexConfig configures the vector index manager and provider.
type IndexConfig struct {
	// PoolSize bounds how many batches are processed concurrently during
	// index operations. Zero means one worker per two CPUs.
	PoolSize int `yaml:"pool_size"`

	// RetryAttempts is the number of embedding attempts per request.
	RetryAttempts int `yaml:"retry_attempts"`

	// RetryBaseDelayMS is the initial backoff delay in milliseconds.
	RetryBaseDelayMS int `yaml:"retry_base_delay_ms"`
}

// AppConfig is the root application configuration.
type AppConfig struct {
	// DataDir is the root of the raw document store.
	DataDir string `yaml:"data_dir"`

	// IndexDir holds the vector index database, version record, and backups.
	IndexDir string `yaml:"index_dir"`

	Embedding EmbeddingConfig `yaml:"embedding"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Index     IndexConfig     `yaml:"index"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`
}

// Load reads a config from the given path. A missing file yields defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *AppConfig {
	return &AppConfig{
		DataDir:  "./data",
		IndexDir: "./index",
		Embedding: EmbeddingConfig{
			Host:        "http://localhost:11434/v1",
			Model:       "embeddinggemma",
			APITokenEnv: "CORPUS_API_TOKEN",
		},
		Chunking: ChunkingConfig{Size: 700, Overlap: 100},
		Index: IndexConfig{
			RetryAttempts:    3,
			RetryBaseDelayMS: 500,
		},
		LogLevel: "info",
	}
}

// APIToken resolves the embedding service token from the environment.
func (c *AppConfig) APIToken() string {
	if c.Embedding.APITokenEnv == "" {
		return ""
	}
	return os.Getenv(c.Embedding.APITokenEnv)
}

// RetryBaseDelay returns the configured backoff base as a duration.
func (c *AppConfig) RetryBaseDelay() time.Duration {
	return time.Duration(c.Index.RetryBaseDelayMS) * time.Millisecond
}

func applyDefaults(cfg *AppConfig) {
	def := Default()
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.IndexDir == "" {
		cfg.IndexDir = def.IndexDir
	}
	if cfg.Embedding.Host == "" {
		cfg.Embedding.Host = def.Embedding.Host
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = def.Embedding.Model
	}
	if cfg.Embedding.APITokenEnv == "" {
		cfg.Embedding.APITokenEnv = def.Embedding.APITokenEnv
	}
	if cfg.Chunking.Size == 0 {
		cfg.Chunking.Size = def.Chunking.Size
	}
	if cfg.Chunking.Overlap == 0 {
		cfg.Chunking.Overlap = def.Chunking.Overlap
	}
	if cfg.Index.RetryAttempts == 0 {
		cfg.Index.RetryAttempts = def.Index.RetryAttempts
	}
	if cfg.Index.RetryBaseDelayMS == 0 {
		cfg.Index.RetryBaseDelayMS = def.Index.RetryBaseDelayMS
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
}
