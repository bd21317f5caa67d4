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


// Package storage provides the storage abstraction layer for fixit.
//
// This package defines repository interfaces that decouple storage implementation
// from business logic. It allows for different storage backends (BadgerDB, in-memory,
// etc.) to be used interchangeably.
//
// # Constructor Return Type Pattern
//
// This package follows a strict "return interface" pattern for all public constructors
// to enforce abstraction and enable multiple storage backend implementations:
//
//	index, err := badger.NewVectorIndex(backend, dim)  // returns storage.VectorIndex interface
//
// This design decision prioritizes:
//   - Abstraction: Prevents accidental coupling to BadgerDB specifics
//   - Swappability: Easy to add alternative backends (Qdrant, in-memory, etc.)
//   - Testing: Consumers can use mock implementations without modification
//
// Internal package constructors (newChunkIndex, newBackend, etc.) may return
// concrete types since they're only used within the implementation package.
//
// # Architecture
//
// The storage layer splits the domain into two concerns:
//
//   - VectorIndex: Chunk embeddings plus filtered nearest-neighbour queries
//   - DocumentRepository: Document records and their lifecycle state machine
//
// # Usage
//
// Create the backends:
//
//	backend, err := badger.OpenBackend("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	index, err := badger.NewVectorIndex(backend, 384)
//	docs, err := badger.NewDocumentRepository(backend)
//
// Use in tests with in-memory storage:
//
//	backend, err := badger.OpenMemoryBackend()
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access
// from multiple goroutines.
//
// # Context Support
//
// All methods accept context.Context for cancellation and timeout support.
// Pass context.Background() for operations without specific timeout
// requirements.
package storage
