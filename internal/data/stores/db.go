// Package stores provides the SQLite-backed persistence implementation.
package stores

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	busyTimeout  = 5000 // milliseconds
	maxOpenConns = 1    // single writer; the app is a short-lived CLI process
	maxRetries   = 5
	initialWait  = 100 * time.Millisecond
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// DB wraps a SQLite connection with schema initialization and retry logic.
type DB struct {
	conn *sql.DB
}

// Open creates the database file in the data directory and initializes the
// schema. WAL mode and a busy timeout are set via DSN pragmas.
func Open(dataDir string) (*DB, error) {
	dbPath := filepath.Join(dataDir, "taskly.db")

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", dbPath, busyTimeout)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	conn.SetMaxOpenConns(maxOpenConns)

	db := &DB{conn: conn}

	if err := db.pingWithRetry(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if _, err := conn.ExecContext(context.Background(), schemaSQL); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// pingWithRetry verifies connectivity, backing off while another process
// holds the database lock.
func (db *DB) pingWithRetry(ctx context.Context) error {
	wait := initialWait
	var err error
	for range maxRetries {
		if err = db.conn.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
			wait *= 2
		}
	}
	return err
}
