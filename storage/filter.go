package storage

import "github.com/poiesic/fixit/core"

// Filter restricts a vector query to chunks whose metadata matches every
// non-empty field. An empty field matches anything; the zero Filter matches
// every chunk.
//
// Matching is exact string equality, including the core.UnknownModel
// placeholder: filtering on Model="Unknown" selects chunks whose model was
// never detected, and chunks with Model="Unknown" do not match a query for a
// concrete model.
type Filter struct {
	DeviceType string
	Brand      string
	Model      string
}

// IsZero reports whether the filter constrains nothing.
func (f Filter) IsZero() bool {
	return f.DeviceType == "" && f.Brand == "" && f.Model == ""
}

// Matches reports whether the chunk satisfies every set field.
func (f Filter) Matches(chunk *core.ChunkRecord) bool {
	if f.DeviceType != "" && chunk.DeviceType != f.DeviceType {
		return false
	}
	if f.Brand != "" && chunk.Brand != f.Brand {
		return false
	}
	if f.Model != "" && chunk.Model != f.Model {
		return false
	}
	return true
}
