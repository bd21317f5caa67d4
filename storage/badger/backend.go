package badger

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/fixit/storage"
)

// sequenceBandwidth is how many IDs a badger sequence leases at a time.
const sequenceBandwidth = 100

// Backend owns the BadgerDB handle shared by the vector index and the
// document repository.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenBackend opens the database at filePath, creating the directory if
// needed. With inMemory set the path is ignored and nothing touches disk.
func OpenBackend(filePath string, inMemory bool) (*Backend, error) {
	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := ensureDir(filePath); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(filePath)
	}

	logger := slog.Default()
	opts.Logger = &slogAdapter{logger: logger}
	// Manual text compresses poorly once chunked; skip the CPU cost.
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Backend{db: db, logger: logger}, nil
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return os.MkdirAll(path, 0755)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// Close closes the underlying database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed reports whether Close has been called.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx runs fn inside a transaction, read-write when isWrite is set.
// fn is responsible for committing; the transaction is discarded on
// return, which is a no-op after a commit.
// Returns storage.ErrStorageClosed once Close has been called.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	if b.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// GetSequence returns a monotonic ID sequence stored under name.
func (b *Backend) GetSequence(name string) (*badger.Sequence, error) {
	return b.db.GetSequence([]byte(name), sequenceBandwidth)
}

// slogAdapter bridges badger's logger interface onto slog.
type slogAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*slogAdapter)(nil)

func (a *slogAdapter) Errorf(msg string, args ...any) {
	a.logger.Error(fmt.Sprintf(msg, args...))
}

func (a *slogAdapter) Warningf(msg string, args ...any) {
	a.logger.Warn(fmt.Sprintf(msg, args...))
}

func (a *slogAdapter) Infof(msg string, args ...any) {
	a.logger.Info(fmt.Sprintf(msg, args...))
}

func (a *slogAdapter) Debugf(msg string, args ...any) {
	a.logger.Debug(fmt.Sprintf(msg, args...))
}
