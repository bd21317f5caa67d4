package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	t.Run("trims line whitespace", func(t *testing.T) {
		got := CleanText("  first line  \n\tsecond line\t")
		assert.Equal(t, "first line\nsecond line", got)
	})

	t.Run("drops blank lines", func(t *testing.T) {
		got := CleanText("first\n\n\n   \n\nsecond")
		assert.Equal(t, "first\nsecond", got)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", CleanText(""))
		assert.Equal(t, "", CleanText("  \n \n\t\n"))
	})

	t.Run("idempotent", func(t *testing.T) {
		raw := "Troubleshooting Guide\n\n\n  Step 1: unplug the unit.  \n\nStep 2: wait 30 seconds."
		once := CleanText(raw)
		assert.Equal(t, once, CleanText(once))
	})

	t.Run("no triple newlines in output", func(t *testing.T) {
		got := CleanText("a\n\n\n\n\nb\n\n\n\nc")
		assert.NotContains(t, got, "\n\n\n")
	})
}

func TestExtractHints(t *testing.T) {
	t.Run("detects model line", func(t *testing.T) {
		hints := ExtractHints("Samsung Washer\nModel: WF45T6000AW\nWarranty information")
		assert.Equal(t, "Model: WF45T6000AW", hints.DetectedModel)
	})

	t.Run("long lines are not model candidates", func(t *testing.T) {
		line := "This model " + strings.Repeat("is a very popular one ", 5) + "according to our records"
		assert.GreaterOrEqual(t, len(line), 100)

		hints := ExtractHints(line)
		assert.Empty(t, hints.DetectedModel)
	})

	t.Run("classifies section type", func(t *testing.T) {
		assert.Equal(t, "troubleshooting", ExtractHints("Troubleshooting common problems").SectionType)
		assert.Equal(t, "installation", ExtractHints("INSTALLATION INSTRUCTIONS").SectionType)
		assert.Equal(t, "maintenance", ExtractHints("Routine Maintenance Schedule").SectionType)
		assert.Equal(t, "safety", ExtractHints("Important Safety Precautions").SectionType)
		assert.Equal(t, "user_guide", ExtractHints("Refrigerator User Guide").SectionType)
		assert.Equal(t, "user_guide", ExtractHints("user manual for model X").SectionType)
	})

	t.Run("later hints override earlier ones", func(t *testing.T) {
		hints := ExtractHints("Installation\nTroubleshooting")
		assert.Equal(t, "troubleshooting", hints.SectionType)
	})

	t.Run("scans only the first 50 lines", func(t *testing.T) {
		text := strings.Repeat("filler line\n", 50) + "Model: HIDDEN-123\nTroubleshooting"
		hints := ExtractHints(text)
		assert.Empty(t, hints.DetectedModel)
		assert.Empty(t, hints.SectionType)
	})

	t.Run("no hints leaves fields empty", func(t *testing.T) {
		hints := ExtractHints("nothing interesting here")
		assert.Empty(t, hints.DetectedModel)
		assert.Empty(t, hints.SectionType)
	})
}
