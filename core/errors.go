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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidChunk indicates a ChunkRecord failed validation.
	ErrInvalidChunk = errors.New("invalid chunk record")

	// ErrEmptyText indicates a required text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrEmptyFilename indicates the document Filename field is empty.
	ErrEmptyFilename = errors.New("filename cannot be empty")

	// ErrEmptyDeviceType indicates the document DeviceType field is empty.
	ErrEmptyDeviceType = errors.New("device type cannot be empty")

	// ErrEmptyBrand indicates the document Brand field is empty.
	ErrEmptyBrand = errors.New("brand cannot be empty")

	// ErrInvalidStatus indicates an invalid DocumentStatus value.
	ErrInvalidStatus = errors.New("invalid document status")

	// ErrInvalidTransition indicates a lifecycle transition the state
	// machine does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidChunkIndex indicates a chunk index outside 0..TotalChunks-1.
	ErrInvalidChunkIndex = errors.New("chunk index out of range")
)
