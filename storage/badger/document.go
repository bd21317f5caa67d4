package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/fixit/core"
	"github.com/poiesic/fixit/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
//
// Returns storage.DocumentRepository interface to enforce abstraction.
func NewDocumentRepository(backend *Backend) (storage.DocumentRepository, error) {
	idSeq, err := backend.GetSequence(documentIDSeq)
	if err != nil {
		return nil, err
	}

	return &DocumentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *DocumentRepository) Close() error {
	return r.idSeq.Release()
}

// AddDocument stores a new document record in pending state.
func (r *DocumentRepository) AddDocument(ctx context.Context, document *core.Document) (*core.Document, error) {
	if err := core.ValidateDocument(document); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if document.Id == 0 {
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			document.Id = core.ID(nextID)
		}

		if document.UploadedAt.IsZero() {
			document.UploadedAt = time.Now().UTC()
		}
		document.Status = core.StatusPending

		if err := tx.Set(makeDocumentKey(document.Id), storage.MarshalDocument(document)); err != nil {
			return err
		}

		dateKey := makeDocumentDateKey(document.UploadedAt, document.Id)
		if err := tx.Set(dateKey, storage.MarshalID(document.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return document, nil
}

// GetDocument retrieves a single document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListDocuments retrieves all documents, most recently uploaded first.
func (r *DocumentRepository) ListDocuments(ctx context.Context) ([]*core.Document, error) {
	var results []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Walk the upload date index backwards from the far future.
		startKey := makePartialDocumentDateKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))
		prefix := []byte(documentDatePrefix + ":")

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			document, err := readDocument(tx, makeDocumentKey(id))
			if err != nil {
				return err
			}
			if document != nil {
				results = append(results, document)
			}
		}
		return nil
	}, false)
	return results, err
}

// MarkProcessing transitions a document into processing state.
func (r *DocumentRepository) MarkProcessing(ctx context.Context, id core.ID) (*core.Document, error) {
	return r.transition(id, core.StatusProcessing, func(doc *core.Document) {
		doc.ErrorMessage = ""
	})
}

// MarkIndexed records successful processing: indexed state, chunk count
// and processing timestamp are set in one transaction.
func (r *DocumentRepository) MarkIndexed(ctx context.Context, id core.ID, chunksCount int) (*core.Document, error) {
	return r.transition(id, core.StatusIndexed, func(doc *core.Document) {
		doc.ChunksCount = chunksCount
		doc.ProcessedAt = time.Now().UTC()
	})
}

// MarkFailed records a processing failure and its reason.
func (r *DocumentRepository) MarkFailed(ctx context.Context, id core.ID, reason string) (*core.Document, error) {
	return r.transition(id, core.StatusFailed, func(doc *core.Document) {
		doc.ErrorMessage = reason
		doc.ChunksCount = 0
		doc.ProcessedAt = time.Now().UTC()
	})
}

// DeleteDocument removes a document record and its date index entry.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		document, err := readDocument(tx, key)
		if err != nil {
			return err
		}
		if document == nil {
			return storage.ErrNotFound
		}

		if err := tx.Delete(makeDocumentDateKey(document.UploadedAt, id)); err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// transition loads a document, checks the lifecycle rule, applies the
// mutation and stores the result, all in one transaction.
func (r *DocumentRepository) transition(id core.ID, to core.DocumentStatus, mutate func(*core.Document)) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		document, err := readDocument(tx, key)
		if err != nil {
			return err
		}
		if document == nil {
			return storage.ErrNotFound
		}

		if err := core.ValidateStatusTransition(document.Status, to); err != nil {
			return err
		}

		document.Status = to
		mutate(document)

		if err := tx.Set(key, storage.MarshalDocument(document)); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		result = document
		return nil
	}, true)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// readDocument reads a document from the transaction.
// Returns nil without error when the key does not exist.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var document *core.Document
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		document, unmarshalErr = storage.UnmarshalDocument(val)
		return unmarshalErr
	})
	return document, err
}
