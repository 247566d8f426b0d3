package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/photon/internal/shared"
)

// SnapshotRecord is a stored snapshot row.
type SnapshotRecord struct {
	Key       string
	Revision  int
	Data      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SnapshotRepository persists snapshot JSON keyed by storage key.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new [SnapshotRepository] with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Read returns the data stored under key. A missing key reports ok == false with no error.
func (r *SnapshotRepository) Read(ctx context.Context, key string) ([]byte, bool, error) {
	rec, err := r.Get(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rec.Data, true, nil
}

// Write upserts data under key with a fresh revision. The revision and the row commit together.
func (r *SnapshotRepository) Write(ctx context.Context, key string, data []byte) error {
	query := `
		INSERT INTO snapshots (key, revision, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET revision = excluded.revision, data = excluded.data, updated_at = excluded.updated_at
	`

	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		revision, err := NextSequence(ctx, tx, "snapshots")
		if err != nil {
			return fmt.Errorf("failed to generate revision: %w", err)
		}

		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx, query, key, revision, string(data), now, now); err != nil {
			return fmt.Errorf("failed to upsert snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorageWrite, err)
	}
	return nil
}

// Get retrieves the full record for key. A missing key returns an error wrapping [sql.ErrNoRows].
func (r *SnapshotRepository) Get(ctx context.Context, key string) (*SnapshotRecord, error) {
	query := `
		SELECT key, revision, data, created_at, updated_at
		FROM snapshots
		WHERE key = ?
	`

	var (
		rec  SnapshotRecord
		data string
	)
	err := r.db.QueryRowContext(ctx, query, key).Scan(&rec.Key, &rec.Revision, &data, &rec.CreatedAt, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("snapshot not found: %s: %w", key, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query snapshot: %v", shared.ErrStorageRead, err)
	}
	rec.Data = []byte(data)
	return &rec, nil
}

// Keys lists stored keys, most recently written first.
func (r *SnapshotRepository) Keys(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT key FROM snapshots ORDER BY revision DESC")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list snapshots: %v", shared.ErrStorageRead, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("%w: failed to scan snapshot key: %v", shared.ErrStorageRead, err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Delete removes key. Deleting a missing key is not an error.
func (r *SnapshotRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM snapshots WHERE key = ?", key); err != nil {
		return fmt.Errorf("%w: failed to delete snapshot: %v", shared.ErrStorageWrite, err)
	}
	return nil
}
