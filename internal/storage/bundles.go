package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"probecov/internal/bundle"
	cverrors "probecov/internal/errors"
)

// BundleRecord is a stored bundle counter tree
type BundleRecord struct {
	ID        string                `json:"id"`
	Group     string                `json:"group"`
	BuildID   string                `json:"buildId"`
	Bundle    *bundle.BundleCounter `json:"bundle"`
	CreatedAt time.Time             `json:"createdAt"`
}

// BundleRepository stores computed bundles keyed by group and build
type BundleRepository struct {
	db *DB
}

// NewBundleRepository creates a new bundle repository
func NewBundleRepository(db *DB) *BundleRepository {
	return &BundleRepository{db: db}
}

// Save stores b for the build and returns the new row id
func (r *BundleRepository) Save(group, buildID string, b *bundle.BundleCounter) (string, error) {
	payload, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("failed to encode bundle: %w", err)
	}

	id := uuid.New().String()
	createdAt := time.Now().UTC().Format(time.RFC3339)
	err = r.db.WithTx(func(tx *sql.Tx) error {
		seq, err := nextSeq(tx, "bundles")
		if err != nil {
			return err
		}
		_, err = tx.Exec(`
			INSERT INTO bundles (id, group_key, build_id, name, covered, total, payload, created_at, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, id, group, buildID, b.Name, b.Count.Covered, b.Count.Total, string(payload), createdAt, seq)
		return err
	})
	if err != nil {
		return "", cverrors.New(cverrors.StorageFailure, "failed to save bundle", err)
	}

	r.db.logger.Debug("Saved bundle", "id", id, "group", group, "build", buildID, "count", b.Count.String())
	return id, nil
}

// Get returns the bundle with the given id, or nil when absent
func (r *BundleRepository) Get(id string) (*BundleRecord, error) {
	return r.scanOne(r.db.QueryRow(`
		SELECT id, group_key, build_id, payload, created_at
		FROM bundles
		WHERE id = ?
	`, id))
}

// LatestForBuild returns the newest bundle stored for the build, or nil
func (r *BundleRepository) LatestForBuild(group, buildID string) (*BundleRecord, error) {
	return r.scanOne(r.db.QueryRow(`
		SELECT id, group_key, build_id, payload, created_at
		FROM bundles
		WHERE group_key = ? AND build_id = ?
		ORDER BY seq DESC
		LIMIT 1
	`, group, buildID))
}

func (r *BundleRepository) scanOne(row *sql.Row) (*BundleRecord, error) {
	var (
		rec       BundleRecord
		payload   string
		createdAt string
	)
	err := row.Scan(&rec.ID, &rec.Group, &rec.BuildID, &payload, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, cverrors.New(cverrors.StorageFailure, "failed to load bundle", err)
	}

	if err := json.Unmarshal([]byte(payload), &rec.Bundle); err != nil {
		return nil, cverrors.New(cverrors.StorageFailure, "failed to decode bundle "+rec.ID, err)
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at format: %w", err)
	}
	return &rec, nil
}
