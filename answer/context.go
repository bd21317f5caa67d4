package answer

import (
	"fmt"
	"strings"

	"github.com/poiesic/fixit/core"
)

// Context is an assembled block of manual excerpts ready for prompting.
// The zero value is the explicit "no context" marker; the generator must
// branch on Empty rather than interpolating an empty string into the
// prompt.
type Context struct {
	text    string
	present bool
}

// Empty reports whether no chunks were available for assembly.
func (c Context) Empty() bool {
	return !c.present
}

// Text returns the assembled context block.
func (c Context) Text() string {
	return c.text
}

// AssembleContext formats retrieval results into a single context block.
// Each chunk becomes "[Source: file, Page: N]\n<text>"; blocks keep the
// retriever's ranked order and are separated by blank lines. Page zero
// means the page is unknown and renders as "N/A".
func AssembleContext(results []*core.RetrievalResult) Context {
	if len(results) == 0 {
		return Context{}
	}

	blocks := make([]string, len(results))
	for i, result := range results {
		page := "N/A"
		if result.Chunk.PageNumber > 0 {
			page = fmt.Sprintf("%d", result.Chunk.PageNumber)
		}
		blocks[i] = fmt.Sprintf("[Source: %s, Page: %s]\n%s",
			result.Chunk.SourceFile, page, result.Chunk.Text)
	}

	return Context{
		text:    strings.Join(blocks, "\n\n"),
		present: true,
	}
}
