// Package repositories implements SQLite persistence for dashboard snapshots.
//
// [SnapshotRepository] stores one JSON record per storage key in the snapshots table.
// It satisfies the store's storage adapter contract, so the sqlite driver is a drop-in
// replacement for the file and memory adapters.
//
// Every write takes a new revision from the snapshots_sequence counter through
// [NextSequence], in the same transaction as the row. Revisions increase across all
// keys and only order writes; they are never part of the snapshot JSON.
package repositories
