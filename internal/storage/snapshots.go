package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"probecov/internal/calc"
	cverrors "probecov/internal/errors"
	"probecov/internal/probes"
)

// SnapshotInfo describes a stored snapshot without its records
type SnapshotInfo struct {
	ID          string     `json:"id"`
	Group       string     `json:"group"`
	Version     uint64     `json:"version"`
	RecordCount int        `json:"recordCount"`
	Count       calc.Count `json:"count"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Snapshot is a stored snapshot with its records
type Snapshot struct {
	SnapshotInfo
	Records []probes.ExecClassData `json:"records"`
}

// SnapshotRepository stores accumulated probe snapshots per group
type SnapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save stores records as a new snapshot of group. version is the accumulator
// version the records were read at.
func (r *SnapshotRepository) Save(group string, version uint64, records []probes.ExecClassData) (*SnapshotInfo, error) {
	var count calc.Count
	for _, rec := range records {
		count = count.Add(rec.Probes.Count())
	}

	info := &SnapshotInfo{
		ID:          uuid.New().String(),
		Group:       group,
		Version:     version,
		RecordCount: len(records),
		Count:       count,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	payload := EncodeRecords(records)

	err := r.db.WithTx(func(tx *sql.Tx) error {
		seq, err := nextSeq(tx, "snapshots")
		if err != nil {
			return err
		}
		_, err = tx.Exec(`
			INSERT INTO snapshots (id, group_key, version, record_count, covered, total, payload, created_at, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, info.ID, group, int64(version), info.RecordCount, count.Covered, count.Total, payload,
			info.CreatedAt.Format(time.RFC3339), seq)
		return err
	})
	if err != nil {
		return nil, cverrors.New(cverrors.StorageFailure, "failed to save snapshot", err)
	}

	r.db.logger.Info("Saved snapshot",
		"id", info.ID,
		"group", group,
		"records", info.RecordCount,
		"payload_bytes", len(payload),
	)
	return info, nil
}

// Latest returns the most recent snapshot of group, or nil when there is none
func (r *SnapshotRepository) Latest(group string) (*Snapshot, error) {
	row := r.db.QueryRow(`
		SELECT id, group_key, version, record_count, covered, total, created_at, payload
		FROM snapshots
		WHERE group_key = ?
		ORDER BY seq DESC
		LIMIT 1
	`, group)

	var (
		s         Snapshot
		version   int64
		createdAt string
		payload   []byte
	)
	err := row.Scan(&s.ID, &s.Group, &version, &s.RecordCount, &s.Count.Covered, &s.Count.Total, &createdAt, &payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, cverrors.New(cverrors.StorageFailure, "failed to load snapshot", err)
	}

	s.Version = uint64(version)
	if s.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at format: %w", err)
	}
	if s.Records, err = DecodeRecords(payload); err != nil {
		return nil, cverrors.New(cverrors.StorageFailure, "failed to decode snapshot "+s.ID, err)
	}
	return &s, nil
}

// List returns the snapshots of group, newest first
func (r *SnapshotRepository) List(group string) ([]SnapshotInfo, error) {
	rows, err := r.db.Query(`
		SELECT id, group_key, version, record_count, covered, total, created_at
		FROM snapshots
		WHERE group_key = ?
		ORDER BY seq DESC
	`, group)
	if err != nil {
		return nil, cverrors.New(cverrors.StorageFailure, "failed to list snapshots", err)
	}
	defer rows.Close()

	var infos []SnapshotInfo
	for rows.Next() {
		var (
			info      SnapshotInfo
			version   int64
			createdAt string
		)
		if err := rows.Scan(&info.ID, &info.Group, &version, &info.RecordCount, &info.Count.Covered, &info.Count.Total, &createdAt); err != nil {
			return nil, cverrors.New(cverrors.StorageFailure, "failed to scan snapshot", err)
		}
		info.Version = uint64(version)
		if info.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("invalid created_at format: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// nextSeq returns the next insertion sequence for table
func nextSeq(tx *sql.Tx, table string) (int64, error) {
	var seq int64
	err := tx.QueryRow(`SELECT COALESCE(MAX(seq), 0) + 1 FROM ` + table).Scan(&seq)
	return seq, err
}
