package main

import (
	"context"
	"flag"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func flagContext(t *testing.T, setters map[string]string) *cli.Context {
	t.Helper()

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("host", "http://localhost:11434/v1", "")
	set.String("embedding-model", "all-minilm", "")
	set.Int("embedding-dimension", 384, "")
	set.String("device-type", "", "")
	set.String("brand", "", "")
	set.String("model", "", "")

	ctx := cli.NewContext(nil, set, nil)
	for name, value := range setters {
		require.NoError(t, ctx.Set(name, value))
	}
	return ctx
}

func TestAIConfigFromFlags(t *testing.T) {
	ctx := flagContext(t, map[string]string{
		"host":                "http://ollama:11434",
		"embedding-model":     "nomic-embed-text",
		"embedding-dimension": "768",
	})

	cfg := aiConfigFromFlags(ctx)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://ollama:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
	assert.Equal(t, 768, cfg.EmbeddingDimension)
}

func TestFilterFromFlags(t *testing.T) {
	t.Run("empty flags give open filter", func(t *testing.T) {
		ctx := flagContext(t, nil)
		assert.True(t, filterFromFlags(ctx).IsZero())
	})

	t.Run("set flags populate filter fields", func(t *testing.T) {
		ctx := flagContext(t, map[string]string{
			"device-type": "tv",
			"brand":       "Samsung",
		})
		f := filterFromFlags(ctx)
		assert.Equal(t, "tv", f.DeviceType)
		assert.Equal(t, "Samsung", f.Brand)
		assert.Empty(t, f.Model)
	})
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "WARN", "Debug"} {
			t.Run(level, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: "info",
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error { return nil },
				}

				err := app.Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}

		err := app.Run([]string{"test", "--log-level", "loud"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("debug level enables debug logging", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}

		require.NoError(t, app.Run([]string{"test", "--log-level", "debug"}))
		assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
	})
}
