// Package storage persists accumulated probe snapshots and bundle results in
// a SQLite database under the project state directory.
package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	cverrors "probecov/internal/errors"
	"probecov/internal/paths"
	"probecov/internal/slogutil"
)

// connPragmas are applied to every new connection.
var connPragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA temp_store=MEMORY",
}

// DB is the probecov database handle
type DB struct {
	conn   *sql.DB
	logger *slog.Logger
	dbPath string
}

// Open opens or creates the database at .probecov/probecov.db
func Open(root string, logger *slog.Logger) (*DB, error) {
	return OpenPath(paths.DatabasePath(root, ""), logger)
}

// OpenPath opens the database at dbPath and brings its schema up to date.
// The file and its directory are created when missing.
func OpenPath(dbPath string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, cverrors.New(cverrors.StorageFailure, "failed to create database directory", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, cverrors.New(cverrors.StorageFailure, "failed to open database "+dbPath, err)
	}
	// WAL with a single writer; concurrent CLI runs wait on busy_timeout.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, logger: logger.With("db", dbPath), dbPath: dbPath}
	if err := db.setup(); err != nil {
		_ = conn.Close()
		return nil, cverrors.New(cverrors.StorageFailure, "failed to prepare database "+dbPath, err)
	}
	return db, nil
}

func (db *DB) setup() error {
	for _, pragma := range connPragmas {
		if _, err := db.conn.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return db.migrate()
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	err := db.conn.Close()
	db.conn = nil
	return err
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.dbPath
}

// WithTx runs fn in a transaction, committing when it returns nil and rolling
// back otherwise. A panic in fn rolls back and is re-raised.
func (db *DB) WithTx(fn func(*sql.Tx) error) (err error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			db.logger.Error("Rollback failed", "error", rbErr)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

// Query executes a query that returns rows
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.conn.Query(query, args...)
}

// QueryRow executes a query that returns at most one row
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.conn.QueryRow(query, args...)
}
