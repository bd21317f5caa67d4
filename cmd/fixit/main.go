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
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/fixit"
	"github.com/poiesic/fixit/ai"
	"github.com/poiesic/fixit/answer"
	"github.com/poiesic/fixit/core"
	"github.com/poiesic/fixit/ingest"
	"github.com/poiesic/fixit/retrieval"
	"github.com/poiesic/fixit/storage"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "fixit",
		Usage: "Device troubleshooting assistant over indexed appliance manuals",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Index a device manual for retrieval",
				Action: ingestCommand,
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the manual file (plain text)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "device-type",
						Usage:    "Device category, e.g. washing_machine, tv",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "brand",
						Usage:    "Device brand, e.g. Samsung",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "Device model identifier (optional)",
					},
					&cli.IntFlag{
						Name:    "chunk-size",
						Usage:   "Maximum chunk length in characters",
						Value:   ingest.DefaultChunkSize,
						EnvVars: []string{"CHUNK_SIZE"},
					},
					&cli.IntFlag{
						Name:    "chunk-overlap",
						Usage:   "Overlap between consecutive chunks in characters",
						Value:   ingest.DefaultChunkOverlap,
						EnvVars: []string{"CHUNK_OVERLAP"},
					},
				),
			},
			{
				Name:   "query",
				Usage:  "Ask a troubleshooting question",
				Action: queryCommand,
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:     "question",
						Aliases:  []string{"q"},
						Usage:    "The troubleshooting question",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "device-type",
						Usage: "Restrict retrieval to a device category",
					},
					&cli.StringFlag{
						Name:  "brand",
						Usage: "Restrict retrieval to a brand",
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "Restrict retrieval to a model",
					},
					&cli.IntFlag{
						Name:    "top-k",
						Usage:   "Number of chunks to feed the answer",
						Value:   retrieval.DefaultTopK,
						EnvVars: []string{"RETRIEVAL_TOP_K"},
					},
					&cli.Float64Flag{
						Name:    "threshold",
						Usage:   "Minimum relevance score in [0,1]",
						Value:   float64(retrieval.DefaultThreshold),
						EnvVars: []string{"RELEVANCE_THRESHOLD"},
					},
					&cli.StringFlag{
						Name:    "llm-model",
						Usage:   "Answer-generation model name",
						EnvVars: []string{"LLM_MODEL"},
					},
					&cli.Float64Flag{
						Name:    "temperature",
						Usage:   "Answer-generation sampling temperature",
						Value:   0.3,
						EnvVars: []string{"LLM_TEMPERATURE"},
					},
					&cli.IntFlag{
						Name:    "max-tokens",
						Usage:   "Generated answer length bound",
						Value:   1000,
						EnvVars: []string{"LLM_MAX_TOKENS"},
					},
				),
			},
			{
				Name:   "documents",
				Usage:  "List indexed documents with status",
				Action: documentsCommand,
				Flags:  commonFlags(),
			},
			{
				Name:   "delete",
				Usage:  "Remove a document and its indexed chunks",
				Action: deleteCommand,
				Flags: append(commonFlags(),
					&cli.Uint64Flag{
						Name:     "id",
						Usage:    "Document ID to delete",
						Required: true,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// commonFlags are shared by every subcommand: storage location and AI
// service endpoints.
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory",
			Value:   "fixit-db",
			EnvVars: []string{"FIXIT_DB"},
		},
		&cli.StringFlag{
			Name:    "host",
			Usage:   "OpenAI-compatible service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"FIXIT_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "all-minilm",
			EnvVars: []string{"EMBEDDING_MODEL"},
		},
		&cli.IntFlag{
			Name:    "embedding-dimension",
			Usage:   "Embedding vector length",
			Value:   384,
			EnvVars: []string{"EMBEDDING_DIMENSION"},
		},
	}
}

func aiConfigFromFlags(c *cli.Context) *ai.Config {
	opts := []ai.ConfigOption{
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithEmbeddingDimension(c.Int("embedding-dimension")),
	}
	if c.IsSet("llm-model") {
		opts = append(opts, ai.WithLLMModel(c.String("llm-model")))
	}
	if c.IsSet("temperature") {
		opts = append(opts, ai.WithTemperature(c.Float64("temperature")))
	}
	if c.IsSet("max-tokens") {
		opts = append(opts, ai.WithMaxTokens(c.Int("max-tokens")))
	}
	return ai.NewConfig(opts...)
}

func filterFromFlags(c *cli.Context) storage.Filter {
	return storage.Filter{
		DeviceType: c.String("device-type"),
		Brand:      c.String("brand"),
		Model:      c.String("model"),
	}
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	filePath := c.String("file")
	fileBytes, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read manual: %w", err)
	}

	chunker, err := ingest.NewChunker(
		ingest.WithChunkSize(c.Int("chunk-size")),
		ingest.WithChunkOverlap(c.Int("chunk-overlap")),
	)
	if err != nil {
		return err
	}

	svc, err := fixit.Open(c.String("db"),
		fixit.WithAIConfig(aiConfigFromFlags(c)),
		fixit.WithPipelineOptions(ingest.WithChunker(chunker)),
	)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer svc.Close()

	upload := &ingest.Upload{
		Filename:   filepath.Base(filePath),
		FileType:   strings.TrimPrefix(filepath.Ext(filePath), "."),
		DeviceType: c.String("device-type"),
		Brand:      c.String("brand"),
		Model:      c.String("model"),
		FileBytes:  fileBytes,
	}

	doc, err := svc.Ingest(ctx, upload)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	svc.Wait()

	doc, err = svc.Document(ctx, doc.Id)
	if err != nil {
		return err
	}
	if doc.Status == core.StatusFailed {
		return fmt.Errorf("ingestion failed: %s", doc.ErrorMessage)
	}

	fmt.Printf("Indexed %s as document %d (%d chunks)\n", doc.Filename, doc.Id, doc.ChunksCount)
	return nil
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()

	topK := c.Int("top-k")
	if topK <= 0 {
		return fmt.Errorf("top-k must be greater than 0")
	}
	threshold := c.Float64("threshold")
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("threshold must be between 0 and 1")
	}

	svc, err := fixit.Open(c.String("db"),
		fixit.WithAIConfig(aiConfigFromFlags(c)),
		fixit.WithRetrieverOptions(retrieval.WithThreshold(float32(threshold))),
		fixit.WithAnswerOptions(answer.WithTopK(topK)),
	)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer svc.Close()

	ans, err := svc.Query(ctx, c.String("question"), filterFromFlags(c))
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	fmt.Println(ans.Text)
	if len(ans.Sources) > 0 {
		fmt.Println("\nSources:")
		for i, src := range ans.Sources {
			page := "N/A"
			if src.PageNumber > 0 {
				page = fmt.Sprintf("%d", src.PageNumber)
			}
			fmt.Printf("%d. %s (page %s, score %.2f)\n", i+1, src.SourceFile, page, src.RelevanceScore)
		}
	}
	return nil
}

func documentsCommand(c *cli.Context) error {
	ctx := context.Background()

	svc, err := fixit.Open(c.String("db"), fixit.WithAIConfig(aiConfigFromFlags(c)))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer svc.Close()

	docs, err := svc.Documents(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Println("No documents indexed.")
		return nil
	}

	for _, doc := range docs {
		line := fmt.Sprintf("%d\t%s\t%s/%s/%s\t%s", doc.Id, doc.Filename, doc.DeviceType, doc.Brand, doc.Model, doc.Status)
		if doc.Status == core.StatusIndexed {
			line += fmt.Sprintf("\t%d chunks", doc.ChunksCount)
		}
		if doc.Status == core.StatusFailed {
			line += "\t" + doc.ErrorMessage
		}
		fmt.Println(line)
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	ctx := context.Background()

	svc, err := fixit.Open(c.String("db"), fixit.WithAIConfig(aiConfigFromFlags(c)))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer svc.Close()

	id := core.ID(c.Uint64("id"))
	if err := svc.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	fmt.Printf("Deleted document %d\n", id)
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
