package fixit

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/fixit/ai/mock"
	"github.com/poiesic/fixit/core"
	"github.com/poiesic/fixit/ingest"
	"github.com/poiesic/fixit/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) *Service {
	t.Helper()

	svc, err := Open("", WithInMemory(), WithAIProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func manualUpload(brand, deviceType, model, filename, topic string) *ingest.Upload {
	var b strings.Builder
	b.WriteString("TROUBLESHOOTING\n")
	for i := 0; i < 8; i++ {
		b.WriteString(brand)
		b.WriteString(" ")
		b.WriteString(topic)
		b.WriteString(": power cycle the unit and check the cable connections.\n")
	}
	return &ingest.Upload{
		Filename:   filename,
		FileType:   "txt",
		DeviceType: deviceType,
		Brand:      brand,
		Model:      model,
		FileBytes:  []byte(b.String()),
	}
}

func TestOpen(t *testing.T) {
	t.Run("create on disk", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "fixit_db")
		svc, err := Open(tmpDir, WithAIProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, svc)
		assert.NoError(t, svc.Close())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0644))

		svc, err := Open(tmpFile, WithAIProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, svc)
	})

	t.Run("default provider from config", func(t *testing.T) {
		tmpDir := t.TempDir()
		svc, err := Open(tmpDir)
		require.NoError(t, err)
		assert.NoError(t, svc.Close())
	})
}

func TestServiceIngestAndQuery(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	doc, err := svc.Ingest(ctx, manualUpload("Samsung", "washing_machine", "WF45T6000AW", "washer.txt", "washer will not drain"))
	require.NoError(t, err)
	svc.Wait()

	indexed, err := svc.Document(ctx, doc.Id)
	require.NoError(t, err)
	require.Equal(t, core.StatusIndexed, indexed.Status)
	assert.Greater(t, indexed.ChunksCount, 0)

	ans, err := svc.Query(ctx, "my washer will not drain", storage.Filter{})
	require.NoError(t, err)
	assert.NotEmpty(t, ans.Text)
	assert.NotEmpty(t, ans.Sources)
	for _, src := range ans.Sources {
		assert.Equal(t, "washer.txt", src.SourceFile)
		assert.Greater(t, src.RelevanceScore, float32(0))
	}

	docs, err := svc.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, doc.Id, docs[0].Id)
}

func TestServiceFilterScopesRetrieval(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	samsung, err := svc.Ingest(ctx, manualUpload("Samsung", "tv", "QN55Q60", "samsung_tv.txt", "screen flickers"))
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, manualUpload("LG", "tv", "OLED55C3", "lg_tv.txt", "screen flickers"))
	require.NoError(t, err)
	svc.Wait()

	filter := storage.Filter{DeviceType: "tv", Brand: "Samsung"}
	results, err := svc.Retrieve(ctx, "tv screen flickers", filter, 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Equal(t, samsung.Id, r.Chunk.DocumentId)
		assert.Equal(t, "Samsung", r.Chunk.Brand)
	}

	// Unfiltered retrieval sees both manuals.
	results, err = svc.Retrieve(ctx, "tv screen flickers", storage.Filter{}, 10)
	require.NoError(t, err)
	brands := make(map[string]bool)
	for _, r := range results {
		brands[r.Chunk.Brand] = true
	}
	assert.True(t, brands["Samsung"])
	assert.True(t, brands["LG"])

	ans, err := svc.Query(ctx, "tv screen flickers", filter)
	require.NoError(t, err)
	for _, src := range ans.Sources {
		assert.Equal(t, "samsung_tv.txt", src.SourceFile)
	}
}

func TestServiceDeleteDocument(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	doc, err := svc.Ingest(ctx, manualUpload("Samsung", "fridge", "RF28R7351", "fridge.txt", "ice maker jammed"))
	require.NoError(t, err)
	svc.Wait()

	results, err := svc.Retrieve(ctx, "ice maker jammed", storage.Filter{}, 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	require.NoError(t, svc.DeleteDocument(ctx, doc.Id))

	_, err = svc.Document(ctx, doc.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	results, err = svc.Retrieve(ctx, "ice maker jammed", storage.Filter{}, 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	err = svc.DeleteDocument(ctx, doc.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestServiceNoContextFallback(t *testing.T) {
	svc := setupService(t)

	ans, err := svc.Query(context.Background(), "why does my toaster sing", storage.Filter{})
	require.NoError(t, err)
	assert.Contains(t, ans.Text, "don't have specific information")
	assert.Empty(t, ans.Sources)
}
