// package repositories provides SQLite persistence for dashboard state.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// Querier is the part of [sql.DB] and [sql.Tx] that sequence counters need.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NextSequence bumps the "<table>_sequence" counter (single row, id = 1) and returns the new value.
//
// Pass a [sql.Tx] to commit the bump together with the write it orders.
func NextSequence(ctx context.Context, q Querier, table string) (int, error) {
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)

	var sequence int
	if err := q.QueryRowContext(ctx, query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}
	return sequence, nil
}

// inTx runs fn inside a transaction, committing only when fn succeeds.
func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
