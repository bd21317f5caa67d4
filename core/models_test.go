package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "test content",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "How do I fix a refrigerator that is not cooling even though the compressor runs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestChunkID(t *testing.T) {
	if ChunkID(1, 0) != ChunkID(1, 0) {
		t.Errorf("ChunkID() is not deterministic")
	}
	if ChunkID(1, 0) == ChunkID(1, 1) {
		t.Errorf("ChunkID() collided for different chunk indices")
	}
	if ChunkID(1, 0) == ChunkID(2, 0) {
		t.Errorf("ChunkID() collided for different documents")
	}
}

func TestDocumentStatus_String(t *testing.T) {
	tests := []struct {
		status DocumentStatus
		want   string
	}{
		{StatusPending, "PENDING"},
		{StatusProcessing, "PROCESSING"},
		{StatusIndexed, "INDEXED"},
		{StatusFailed, "FAILED"},
		{DocumentStatus(0), "DocumentStatus(0)"},
		{DocumentStatus(99), "DocumentStatus(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
