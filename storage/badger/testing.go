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


package badger

import "github.com/poiesic/fixit/storage"

// NewMemoryStores creates an in-memory document repository and vector index
// for testing. Returns documents, index, backend, and error.
// Caller must close the repository, the index and the backend when done.
func NewMemoryStores(dimension int) (storage.DocumentRepository, storage.VectorIndex, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	documents, err := NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	index, err := NewVectorIndex(backend, dimension)
	if err != nil {
		documents.Close()
		backend.Close()
		return nil, nil, nil, err
	}

	return documents, index, backend, nil
}
