package badger

import (
	"fmt"
	"os"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
)

// Connection wraps the key-value store used for raw page-state archival.
type Connection struct {
	db     *badger.DB
	logger arbor.ILogger
}

// NewConnection opens (creating if needed) the store directory.
func NewConnection(dir string, logger arbor.ILogger) (*Connection, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory %s: %w", dir, err)
	}

	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store at %s: %w", dir, err)
	}

	logger.Info().Str("dir", dir).Msg("Snapshot store opened")

	return &Connection{db: db, logger: logger}, nil
}

// DB exposes the underlying handle.
func (c *Connection) DB() *badger.DB {
	return c.db
}

// Close closes the store.
func (c *Connection) Close() error {
	return c.db.Close()
}
