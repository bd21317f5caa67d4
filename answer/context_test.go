package answer

import (
	"testing"

	"github.com/poiesic/fixit/core"
	"github.com/stretchr/testify/assert"
)

func result(text, source string, page int) *core.RetrievalResult {
	return &core.RetrievalResult{
		Chunk: &core.ChunkRecord{
			Text:       text,
			SourceFile: source,
			PageNumber: page,
		},
		Score: 0.8,
	}
}

func TestAssembleContext(t *testing.T) {
	t.Run("empty results give the explicit marker", func(t *testing.T) {
		assembled := AssembleContext(nil)
		assert.True(t, assembled.Empty())
		assert.Empty(t, assembled.Text())

		assembled = AssembleContext([]*core.RetrievalResult{})
		assert.True(t, assembled.Empty())
	})

	t.Run("formats source and page markers", func(t *testing.T) {
		assembled := AssembleContext([]*core.RetrievalResult{
			result("Check the drain hose.", "washer.txt", 12),
		})
		assert.False(t, assembled.Empty())
		assert.Equal(t, "[Source: washer.txt, Page: 12]\nCheck the drain hose.", assembled.Text())
	})

	t.Run("unknown page renders as N/A", func(t *testing.T) {
		assembled := AssembleContext([]*core.RetrievalResult{
			result("Check the filter.", "washer.txt", 0),
		})
		assert.Equal(t, "[Source: washer.txt, Page: N/A]\nCheck the filter.", assembled.Text())
	})

	t.Run("blocks keep ranked order separated by blank lines", func(t *testing.T) {
		assembled := AssembleContext([]*core.RetrievalResult{
			result("First excerpt.", "a.txt", 1),
			result("Second excerpt.", "b.txt", 2),
		})
		assert.Equal(t,
			"[Source: a.txt, Page: 1]\nFirst excerpt.\n\n[Source: b.txt, Page: 2]\nSecond excerpt.",
			assembled.Text())
	})
}
