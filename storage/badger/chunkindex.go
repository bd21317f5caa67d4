package badger

import (
	"context"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/fixit/core"
	"github.com/poiesic/fixit/storage"
)

// ChunkIndex implements storage.VectorIndex for BadgerDB.
// Chunks are stored under their content-derived IDs with a secondary
// per-document index used for atomic deletes.
type ChunkIndex struct {
	backend   *Backend
	dimension int
}

var _ storage.VectorIndex = (*ChunkIndex)(nil)

// NewVectorIndex creates a vector index over the given backend.
// All stored vectors must have the given dimension.
//
// Returns storage.VectorIndex interface to enforce abstraction.
func NewVectorIndex(backend *Backend, dimension int) (storage.VectorIndex, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: backend is nil", storage.ErrInvalidQuery)
	}
	if dimension < 1 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", storage.ErrInvalidQuery, dimension)
	}
	return &ChunkIndex{backend: backend, dimension: dimension}, nil
}

// Upsert inserts or replaces chunk records by ID.
func (x *ChunkIndex) Upsert(ctx context.Context, records ...*core.ChunkRecord) error {
	for _, record := range records {
		if err := core.ValidateChunkRecord(record); err != nil {
			return err
		}
		if len(record.Vector) != x.dimension {
			return fmt.Errorf("%w: got %d, want %d", storage.ErrDimensionMismatch,
				len(record.Vector), x.dimension)
		}
	}

	err := x.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			key := makeChunkKey(record.Id)
			if err := tx.Set(key, storage.MarshalChunkRecord(record)); err != nil {
				return err
			}

			docKey := makeChunkDocKey(record.DocumentId, record.Id)
			if err := tx.Set(docKey, storage.MarshalID(record.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrIndexUnavailable, err)
	}
	return nil
}

// Query scans all chunks, computes cosine distance against the query
// vector, applies the metadata filter, and returns the closest matches.
// A full scan is fine at manual-library scale; swap in an ANN index
// behind the same interface if collections outgrow it.
func (x *ChunkIndex) Query(ctx context.Context, vector []float32, filter storage.Filter, limit int) ([]storage.ChunkMatch, error) {
	if len(vector) != x.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", storage.ErrDimensionMismatch,
			len(vector), x.dimension)
	}
	if limit < 1 {
		return nil, nil
	}

	var matches []storage.ChunkMatch
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.ChunkRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalChunkRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record == nil || len(record.Vector) == 0 {
				continue
			}

			if !filter.Matches(record) {
				continue
			}

			matches = append(matches, storage.ChunkMatch{
				Record:   record,
				Distance: cosineDistance(vector, record.Vector),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrIndexUnavailable, err)
	}

	// Ascending distance; ties broken by chunk index for a stable order.
	slices.SortFunc(matches, func(a, b storage.ChunkMatch) int {
		if a.Distance < b.Distance {
			return -1
		}
		if a.Distance > b.Distance {
			return 1
		}
		return a.Record.ChunkIndex - b.Record.ChunkIndex
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// DeleteDocument removes every chunk belonging to a document in a single
// transaction, so concurrent queries see all of them or none.
func (x *ChunkIndex) DeleteDocument(ctx context.Context, documentID core.ID) (int, error) {
	deleted := 0
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialChunkDocKey(documentID)

		var chunkIDs []core.ID
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(startKey) || slices.Compare(key[:len(startKey)], startKey) != 0 {
				break
			}

			var chunkID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				chunkID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				iter.Close()
				return err
			}
			chunkIDs = append(chunkIDs, chunkID)
		}
		iter.Close()

		for _, chunkID := range chunkIDs {
			if err := tx.Delete(makeChunkKey(chunkID)); err != nil {
				return err
			}
			if err := tx.Delete(makeChunkDocKey(documentID, chunkID)); err != nil {
				return err
			}
		}
		deleted = len(chunkIDs)
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// Count reports the number of chunks currently indexed.
func (x *ChunkIndex) Count(ctx context.Context) (int, error) {
	count := 0
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Close is a no-op; the shared backend owns the database handle.
func (x *ChunkIndex) Close() error {
	return nil
}

// cosineDistance computes 1 - dot(a, b). Vectors are unit length, so the
// dot product is the cosine similarity. Floating point noise can push the
// result a hair below zero; it is clamped because retrieval scoring
// requires non-negative distances.
func cosineDistance(a, b []float32) float32 {
	var dot float32
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	d := 1 - dot
	if d < 0 {
		return 0
	}
	return d
}
