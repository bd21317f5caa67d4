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
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// LLMHost is the base URL for the answer-generation service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	LLMHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "all-minilm", "text-embedding-3-small"
	EmbeddingModel string

	// LLMModel is the model identifier to use for answer generation.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	LLMModel string

	// EmbeddingDimension is the expected embedding vector length.
	// Vectors of any other length are rejected. Default: 384
	EmbeddingDimension int

	// MaxEmbedTokens is the embedding model's input token limit.
	// Longer input fails with ErrInputTooLong. Default: 512
	MaxEmbedTokens int

	// Temperature controls answer-generation sampling. Default: 0.3
	Temperature float64

	// MaxTokens bounds the generated answer length. Default: 1000
	MaxTokens int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithLLMHost sets the answer-generation service host URL.
func WithLLMHost(host string) ConfigOption {
	return func(c *Config) {
		c.LLMHost = host
	}
}

// WithHost sets both embedding and generation hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.LLMHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithLLMModel sets the answer-generation model identifier.
func WithLLMModel(model string) ConfigOption {
	return func(c *Config) {
		c.LLMModel = model
	}
}

// WithEmbeddingDimension sets the expected embedding vector length.
func WithEmbeddingDimension(dim int) ConfigOption {
	return func(c *Config) {
		c.EmbeddingDimension = dim
	}
}

// WithMaxEmbedTokens sets the embedding model's input token limit.
func WithMaxEmbedTokens(max int) ConfigOption {
	return func(c *Config) {
		c.MaxEmbedTokens = max
	}
}

// WithTemperature sets the answer-generation sampling temperature.
func WithTemperature(temperature float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = temperature
	}
}

// WithMaxTokens sets the generated answer length bound.
func WithMaxTokens(max int) ConfigOption {
	return func(c *Config) {
		c.MaxTokens = max
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, both embedding and generation use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:      defaultHost,
		LLMHost:            defaultHost,
		EmbeddingModel:     "all-minilm",
		LLMModel:           "qwen2.5:3b",
		EmbeddingDimension: 384,
		MaxEmbedTokens:     512,
		Temperature:        0.3,
		MaxTokens:          1000,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
// This is the recommended way to create a Config with custom settings.
//
// Example:
//
//	cfg := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434/v1"),
//	    ai.WithEmbeddingModel("all-minilm"),
//	    ai.WithLLMModel("qwen2.5:3b"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
	if c.LLMHost != "" && !strings.HasSuffix(c.LLMHost, "/v1") {
		c.LLMHost = strings.TrimSuffix(c.LLMHost, "/")
		c.LLMHost = c.LLMHost + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	// Normalize first to ensure hosts are in correct format
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.LLMHost == "" {
		return errors.New("ai config: LLMHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.LLMModel == "" {
		return errors.New("ai config: LLMModel is required")
	}
	if c.EmbeddingDimension <= 0 {
		return errors.New("ai config: EmbeddingDimension must be positive")
	}
	if c.MaxEmbedTokens <= 0 {
		return errors.New("ai config: MaxEmbedTokens must be positive")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New("ai config: Temperature must be between 0 and 2")
	}
	if c.MaxTokens <= 0 {
		return errors.New("ai config: MaxTokens must be positive")
	}
	return nil
}
