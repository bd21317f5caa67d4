package ingest

import (
	"strings"
)

// hintLineLimit bounds how far into a document metadata hints are searched.
const hintLineLimit = 50

// maxModelLineLength rejects long lines as model number candidates; lines
// this long are prose that merely mentions the word "model".
const maxModelLineLength = 100

// CleanText normalizes raw extracted text. Each line is trimmed of
// surrounding whitespace, empty lines are dropped, and runs of three or
// more newlines collapse to two. The result is stable: cleaning already
// cleaned text changes nothing.
func CleanText(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}

	cleaned := strings.Join(kept, "\n")
	for strings.Contains(cleaned, "\n\n\n") {
		cleaned = strings.ReplaceAll(cleaned, "\n\n\n", "\n\n")
	}
	return cleaned
}

// Hints holds metadata guessed from document text.
// Empty fields mean no hint was found.
type Hints struct {
	DetectedModel string
	SectionType   string
}

// ExtractHints scans the first lines of a document for metadata heuristics:
// a line mentioning a model number, and keywords classifying the manual
// section. Later lines override earlier ones.
func ExtractHints(text string) Hints {
	lines := strings.Split(text, "\n")
	if len(lines) > hintLineLimit {
		lines = lines[:hintLineLimit]
	}

	var hints Hints
	for _, line := range lines {
		lower := strings.ToLower(line)

		if strings.Contains(lower, "model") && len(line) < maxModelLineLength {
			hints.DetectedModel = strings.TrimSpace(line)
		}

		switch {
		case strings.Contains(lower, "troubleshooting"):
			hints.SectionType = "troubleshooting"
		case strings.Contains(lower, "installation"):
			hints.SectionType = "installation"
		case strings.Contains(lower, "maintenance"):
			hints.SectionType = "maintenance"
		case strings.Contains(lower, "safety"):
			hints.SectionType = "safety"
		case strings.Contains(lower, "user guide"), strings.Contains(lower, "user manual"):
			hints.SectionType = "user_guide"
		}
	}
	return hints
}
