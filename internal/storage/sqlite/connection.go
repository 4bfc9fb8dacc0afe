package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
	"github.com/ternarybob/arbor"
)

// Connection wraps the relational store handle shared by the profile and
// video storages.
type Connection struct {
	db     *sql.DB
	logger arbor.ILogger
}

// NewConnection opens (creating if needed) the database file, applies
// pragmas and ensures the schema exists.
func NewConnection(path string, logger arbor.ILogger) (*Connection, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	// The driver serializes access per connection; a single connection
	// avoids table-lock errors under concurrent writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	conn := &Connection{db: db, logger: logger}
	if err := conn.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	logger.Info().Str("path", path).Msg("Database opened")

	return conn, nil
}

// migrate adds columns introduced after a table first shipped. CREATE TABLE
// IF NOT EXISTS covers fresh databases only, so existing files are checked
// column by column.
func (c *Connection) migrate() error {
	migrations := []struct {
		table, column, ddl string
	}{
		{"profiles", "raw", "ALTER TABLE profiles ADD COLUMN raw TEXT NOT NULL DEFAULT '{}'"},
		{"profiles", "private", "ALTER TABLE profiles ADD COLUMN private INTEGER NOT NULL DEFAULT 0"},
		{"videos", "raw", "ALTER TABLE videos ADD COLUMN raw TEXT NOT NULL DEFAULT '{}'"},
		{"videos", "mentions", "ALTER TABLE videos ADD COLUMN mentions TEXT NOT NULL DEFAULT '[]'"},
	}

	for _, m := range migrations {
		exists, err := c.columnExists(m.table, m.column)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if _, err := c.db.Exec(m.ddl); err != nil {
			return fmt.Errorf("failed to add %s.%s: %w", m.table, m.column, err)
		}
		c.logger.Info().
			Str("table", m.table).
			Str("column", m.column).
			Msg("Schema migration applied")
	}
	return nil
}

func (c *Connection) columnExists(table, column string) (bool, error) {
	rows, err := c.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid          int
			name, ctype  string
			notNull, pk  int
			defaultValue sql.NullString
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &defaultValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// DB exposes the underlying handle for the storages built on this
// connection.
func (c *Connection) DB() *sql.DB {
	return c.db
}

// Close closes the database handle.
func (c *Connection) Close() error {
	return c.db.Close()
}
