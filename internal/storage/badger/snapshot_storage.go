package badger

import (
	"context"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/interfaces"
)

const (
	snapshotPrefix = "snapshot:"

	// snapshotTTL bounds disk growth; raw states are diagnostics, not a
	// system of record.
	snapshotTTL = 7 * 24 * time.Hour
)

// SnapshotStorage archives raw page-state blobs, keyed by target and
// capture time so multiple scrapes of the same target stay distinct.
type SnapshotStorage struct {
	conn   *Connection
	logger arbor.ILogger
}

// NewSnapshotStorage creates a snapshot storage over an open connection.
func NewSnapshotStorage(conn *Connection, logger arbor.ILogger) *SnapshotStorage {
	return &SnapshotStorage{conn: conn, logger: logger}
}

// SaveSnapshot stores one raw page state under a time-ordered key.
func (s *SnapshotStorage) SaveSnapshot(ctx context.Context, target string, state []byte) error {
	key := fmt.Sprintf("%s%s:%s", snapshotPrefix, target, time.Now().UTC().Format(time.RFC3339Nano))

	err := s.conn.DB().Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), state).WithTTL(snapshotTTL)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot for %s: %w", target, err)
	}

	s.logger.Debug().
		Str("target", target).
		Int("bytes", len(state)).
		Msg("Page state snapshot saved")
	return nil
}

// ListSnapshotKeys returns every stored key for a target in ascending
// capture order. An empty target lists all snapshots.
func (s *SnapshotStorage) ListSnapshotKeys(ctx context.Context, target string) ([]string, error) {
	prefix := []byte(snapshotPrefix + target)

	keys := make([]string, 0)
	err := s.conn.DB().View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots for %s: %w", target, err)
	}
	return keys, nil
}

// GetSnapshot returns the raw state stored under a key, or
// interfaces.ErrNotFound.
func (s *SnapshotStorage) GetSnapshot(ctx context.Context, key string) ([]byte, error) {
	var state []byte
	err := s.conn.DB().View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		state, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot %s: %w", key, err)
	}
	return state, nil
}
