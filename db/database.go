package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Database manages the SQLite connection lifecycle: open with WAL mode,
// apply embedded migrations, hand out the connection, close.
type Database struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// NewDatabase opens (creating parent directories as needed) and migrates
// the history database.
func NewDatabase(path string) (*Database, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := NewSQLiteConnectionWithDefaults(path)
	if err != nil {
		return nil, err
	}

	if err := MigrateUp(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return &Database{conn: conn, path: path}, nil
}

// DB returns the underlying connection for repositories.
func (d *Database) DB() *sql.DB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.conn
}

// Path returns the database file path.
func (d *Database) Path() string {
	return d.path
}

// Close closes the database connection.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	return err
}
