package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLMHost)
	assert.Equal(t, "all-minilm", cfg.EmbeddingModel)
	assert.Equal(t, "qwen2.5:3b", cfg.LLMModel)
	assert.Equal(t, 384, cfg.EmbeddingDimension)
	assert.Equal(t, 512, cfg.MaxEmbedTokens)
	assert.Equal(t, 0.3, cfg.Temperature)
	assert.Equal(t, 1000, cfg.MaxTokens)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.NotNil(t, cfg)
		// Should have default values
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, 384, cfg.EmbeddingDimension)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.LLMHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithLLMHost("http://generate:9090/v1"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://generate:9090/v1", cfg.LLMHost)
	})

	t.Run("with custom models", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingModel("text-embedding-3-small"),
			WithLLMModel("gpt-4o-mini"),
		)

		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
		assert.Equal(t, "gpt-4o-mini", cfg.LLMModel)
	})

	t.Run("with generation parameters", func(t *testing.T) {
		cfg := NewConfig(
			WithTemperature(0.7),
			WithMaxTokens(512),
		)

		assert.Equal(t, 0.7, cfg.Temperature)
		assert.Equal(t, 512, cfg.MaxTokens)
	})

	t.Run("with embedding parameters", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingDimension(768),
			WithMaxEmbedTokens(256),
		)

		assert.Equal(t, 768, cfg.EmbeddingDimension)
		assert.Equal(t, 256, cfg.MaxEmbedTokens)
	})
}

func TestConfigNormalize(t *testing.T) {
	t.Run("adds /v1 suffix", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434"))
		cfg.Normalize()

		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.LLMHost)
	})

	t.Run("strips trailing slash before adding /v1", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434/"))
		cfg.Normalize()

		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})

	t.Run("leaves /v1 hosts untouched", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434/v1"))
		cfg.Normalize()

		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		require.NoError(t, NewConfig().Validate())
	})

	tests := []struct {
		name string
		opts []ConfigOption
	}{
		{"missing embedding host", []ConfigOption{WithEmbeddingHost("")}},
		{"missing llm host", []ConfigOption{WithLLMHost("")}},
		{"missing embedding model", []ConfigOption{WithEmbeddingModel("")}},
		{"missing llm model", []ConfigOption{WithLLMModel("")}},
		{"zero dimension", []ConfigOption{WithEmbeddingDimension(0)}},
		{"negative dimension", []ConfigOption{WithEmbeddingDimension(-1)}},
		{"zero embed tokens", []ConfigOption{WithMaxEmbedTokens(0)}},
		{"negative temperature", []ConfigOption{WithTemperature(-0.1)}},
		{"temperature above 2", []ConfigOption{WithTemperature(2.5)}},
		{"zero max tokens", []ConfigOption{WithMaxTokens(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(tt.opts...)
			assert.Error(t, cfg.Validate())
		})
	}
}
