// Package badger implements a backend that keeps the tree and file content
// in an in-memory BadgerDB instance.
//
// Nodes are identified by random UUIDs. Handles carry the UUID only, so a
// handle to a removed node fails with ErrNotFound on its next use.
package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/google/uuid"
	"github.com/marmos91/dittovfs/internal/logger"
	"github.com/marmos91/dittovfs/pkg/metrics"
	"github.com/marmos91/dittovfs/pkg/vfs"
)

// BackendName is the backend type reported by drives of this package.
const BackendName = "badger"

// maxConflictRetries bounds retries of a transaction that lost a
// serializable conflict against a concurrent writer.
const maxConflictRetries = 8

// Config contains configuration for the Badger backend.
type Config struct {
	// BlockCacheSizeMB is BadgerDB's block cache size in MB (default: 16)
	BlockCacheSizeMB int64 `mapstructure:"block_cache_mb"`

	// IndexCacheSizeMB is BadgerDB's index cache size in MB (default: 16)
	IndexCacheSizeMB int64 `mapstructure:"index_cache_mb"`
}

// Store is one Badger-backed filesystem.
//
// Thread Safety:
// All state lives in the database; every operation runs in its own
// transaction, so the store is safe for concurrent use.
type Store struct {
	db      *badger.DB
	rootID  uuid.UUID
	metrics metrics.BackendMetrics
}

// New opens an in-memory database and creates the root directory.
//
// Parameters:
//   - ctx: Context for cancellation
//   - config: Cache sizing
//   - m: Optional storage metrics; nil disables collection
func New(ctx context.Context, config Config, m metrics.BackendMetrics) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blockCacheMB := config.BlockCacheSizeMB
	if blockCacheMB == 0 {
		blockCacheMB = 16
	}
	indexCacheMB := config.IndexCacheSizeMB
	if indexCacheMB == 0 {
		indexCacheMB = 16
	}

	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.WARNING).
		WithCompression(options.None).
		WithBlockCacheSize(blockCacheMB << 20).
		WithIndexCacheSize(indexCacheMB << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory BadgerDB: %w", err)
	}

	s := &Store{
		db:      db,
		rootID:  uuid.New(),
		metrics: metrics.OrNoop(m),
	}

	err = s.update("init", func(txn *badger.Txn) error {
		return putRecord(txn, s.rootID, record{Kind: kindDir, Name: "/"})
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}

	logger.Debug("Badger store opened (block cache %dMB, index cache %dMB)", blockCacheMB, indexCacheMB)
	return s, nil
}

// NewDrive creates a drive backed by a fresh in-memory database.
func NewDrive(ctx context.Context, config Config, m metrics.BackendMetrics) (*vfs.Drive, error) {
	s, err := New(ctx, config, m)
	if err != nil {
		return nil, err
	}
	return s.Drive(), nil
}

// Drive wraps the store in a vfs.Drive. Unmounting the drive closes the
// database.
func (s *Store) Drive() *vfs.Drive {
	return vfs.NewDrive(BackendName, &entry{s: s, id: s.rootID}, s)
}

// Unmount closes the database.
func (s *Store) Unmount(ctx context.Context) error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close BadgerDB: %w", err)
	}
	return nil
}

// ============================================================================
// Transactions
// ============================================================================

func (s *Store) view(op string, fn func(txn *badger.Txn) error) error {
	if s.db.IsClosed() {
		return vfs.NewError(vfs.ErrClosed, "badger drive unmounted")
	}
	start := time.Now()
	err := s.db.View(fn)
	s.metrics.RecordStorageOperation(op, time.Since(start), err)
	return err
}

// update runs fn in a read-write transaction, retrying on conflicts.
func (s *Store) update(op string, fn func(txn *badger.Txn) error) error {
	if s.db.IsClosed() {
		return vfs.NewError(vfs.ErrClosed, "badger drive unmounted")
	}
	start := time.Now()
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
		logger.Debug("Badger %s conflict, retrying (attempt %d)", op, attempt+1)
	}
	s.metrics.RecordStorageOperation(op, time.Since(start), err)
	return err
}

func getRecord(txn *badger.Txn, id uuid.UUID) (record, error) {
	item, err := txn.Get(keyNode(id))
	if err == badger.ErrKeyNotFound {
		return record{}, vfs.NewError(vfs.ErrNotFound, "stale handle")
	}
	if err != nil {
		return record{}, fmt.Errorf("failed to get node %s: %w", id, err)
	}

	var r record
	err = item.Value(func(val []byte) error {
		r, err = decodeRecord(val)
		return err
	})
	return r, err
}

func putRecord(txn *badger.Txn, id uuid.UUID, r record) error {
	data, err := encodeRecord(r)
	if err != nil {
		return err
	}
	return txn.Set(keyNode(id), data)
}

// getDir loads the directory record at id, failing on stale ids and files.
func getDir(txn *badger.Txn, id uuid.UUID) (record, error) {
	r, err := getRecord(txn, id)
	if err != nil {
		return record{}, err
	}
	if r.Kind != kindDir {
		return record{}, vfs.NewError(vfs.ErrIsNotDirectory, r.Name)
	}
	return r, nil
}

// lookupChild returns the id of name in parentID, or uuid.Nil when absent.
func lookupChild(txn *badger.Txn, parentID uuid.UUID, name string) (uuid.UUID, error) {
	item, err := txn.Get(keyChild(parentID, name))
	if err == badger.ErrKeyNotFound {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get child %q: %w", name, err)
	}

	var id uuid.UUID
	err = item.Value(func(val []byte) error {
		id, err = decodeID(val)
		return err
	})
	return id, err
}

// childIDs returns the children of parentID keyed by name, in lexical order.
func childIDs(txn *badger.Txn, parentID uuid.UUID) ([]string, []uuid.UUID, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = keyChildPrefix(parentID)

	it := txn.NewIterator(opts)
	defer it.Close()

	var (
		names []string
		ids   []uuid.UUID
	)
	prefixLen := len(opts.Prefix)
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		key := item.Key()
		if len(key) <= prefixLen {
			continue
		}

		var id uuid.UUID
		err := item.Value(func(val []byte) error {
			var err error
			id, err = decodeID(val)
			return err
		})
		if err != nil {
			return nil, nil, err
		}
		names = append(names, string(key[prefixLen:]))
		ids = append(ids, id)
	}
	return names, ids, nil
}

// deleteTree removes id with its content and, for directories, its subtree.
func deleteTree(txn *badger.Txn, id uuid.UUID) error {
	r, err := getRecord(txn, id)
	if err != nil {
		return err
	}

	if r.Kind == kindDir {
		names, ids, err := childIDs(txn, id)
		if err != nil {
			return err
		}
		for i, childID := range ids {
			if err := deleteTree(txn, childID); err != nil {
				return err
			}
			if err := txn.Delete(keyChild(id, names[i])); err != nil {
				return err
			}
		}
	} else if err := txn.Delete(keyData(id)); err != nil {
		return err
	}

	return txn.Delete(keyNode(id))
}
