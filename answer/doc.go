// Package answer generates grounded troubleshooting answers.
//
// The Generator runs the query side of the system: it retrieves relevant
// manual chunks, assembles them into a cited context block, prompts the
// language model with a fixed troubleshooting template, and returns the
// answer together with citations for every chunk that informed it. When
// retrieval comes back empty the model is not called at all; a fixed
// fallback answer admits the gap instead.
package answer
