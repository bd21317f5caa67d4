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


package core

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Filename, DeviceType and Brand must not be empty
//   - Status must be a known lifecycle state
//
// NOT validated (populated by the pipeline):
//   - Model (empty is valid and defaults to "Unknown" at the chunk level)
//   - ChunksCount, ErrorMessage, ProcessedAt
//   - ID (0 is valid before a database sequence assigns one)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Filename == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyFilename)
	}
	if doc.DeviceType == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDeviceType)
	}
	if doc.Brand == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyBrand)
	}

	if err := ValidateStatus(doc.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return nil
}

// ValidateChunkRecord validates a ChunkRecord according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - ChunkIndex must be within 0..TotalChunks-1
//   - DocumentId must be set
//
// NOT validated:
//   - Vector (empty until the embedder runs)
func ValidateChunkRecord(rec *ChunkRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidChunk)
	}

	if rec.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}
	if rec.DocumentId == 0 {
		return fmt.Errorf("%w: document id is not set", ErrInvalidChunk)
	}
	if rec.ChunkIndex < 0 || rec.ChunkIndex >= rec.TotalChunks {
		return fmt.Errorf("%w: %w: index %d of %d", ErrInvalidChunk, ErrInvalidChunkIndex,
			rec.ChunkIndex, rec.TotalChunks)
	}

	return nil
}

// ValidateStatus validates that a DocumentStatus has a known value.
func ValidateStatus(status DocumentStatus) error {
	switch status {
	case StatusPending, StatusProcessing, StatusIndexed, StatusFailed:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidStatus, status)
	}
}

// ValidateStatusTransition enforces the document lifecycle state machine.
// Allowed: Pending -> Processing, Processing -> Indexed, Processing -> Failed.
// Indexed and Failed documents may re-enter Processing when reprocessed.
func ValidateStatusTransition(from, to DocumentStatus) error {
	if err := ValidateStatus(from); err != nil {
		return err
	}
	if err := ValidateStatus(to); err != nil {
		return err
	}

	switch from {
	case StatusPending:
		if to == StatusProcessing {
			return nil
		}
	case StatusProcessing:
		if to == StatusIndexed || to == StatusFailed {
			return nil
		}
	case StatusIndexed, StatusFailed:
		if to == StatusProcessing {
			return nil
		}
	}

	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
