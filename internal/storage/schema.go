package storage

import (
	"database/sql"
	"fmt"
)

// migration moves the schema from version-1 to version.
type migration struct {
	version    int
	name       string
	statements []string
}

// migrations are applied in order, each in its own transaction.
var migrations = []migration{
	{
		version: 1,
		name:    "snapshots and bundles",
		statements: []string{
			// payload: zstd-compressed protowire records
			`CREATE TABLE snapshots (
				id TEXT PRIMARY KEY,
				group_key TEXT NOT NULL,
				version INTEGER NOT NULL,
				record_count INTEGER NOT NULL,
				covered INTEGER NOT NULL,
				total INTEGER NOT NULL,
				payload BLOB NOT NULL,
				created_at TEXT NOT NULL,
				seq INTEGER NOT NULL
			)`,
			`CREATE INDEX idx_snapshots_group ON snapshots(group_key, seq)`,
			// payload: JSON counter tree
			`CREATE TABLE bundles (
				id TEXT PRIMARY KEY,
				group_key TEXT NOT NULL,
				build_id TEXT NOT NULL,
				name TEXT NOT NULL,
				covered INTEGER NOT NULL,
				total INTEGER NOT NULL,
				payload TEXT NOT NULL,
				created_at TEXT NOT NULL,
				seq INTEGER NOT NULL
			)`,
			`CREATE INDEX idx_bundles_build ON bundles(group_key, build_id, seq)`,
		},
	},
}

// currentSchemaVersion is the version after every migration has run.
var currentSchemaVersion = migrations[len(migrations)-1].version

// migrate applies every migration newer than the stored schema version.
func (db *DB) migrate() error {
	if _, err := db.conn.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return err
	}

	from, err := db.getSchemaVersion()
	if err != nil {
		return err
	}
	if from > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", from, currentSchemaVersion)
	}
	if from == currentSchemaVersion {
		db.logger.Debug("Database schema is up to date", "version", from)
		return nil
	}

	for _, m := range migrations {
		if m.version <= from {
			continue
		}
		err := db.WithTx(func(tx *sql.Tx) error {
			for _, stmt := range m.statements {
				if _, err := tx.Exec(stmt); err != nil {
					return err
				}
			}
			return setSchemaVersion(tx, m.version)
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		db.logger.Info("Applied database migration", "version", m.version, "name", m.name)
	}
	return nil
}

// getSchemaVersion returns the stored schema version, 0 for a new database
func (db *DB) getSchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return version, err
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}
