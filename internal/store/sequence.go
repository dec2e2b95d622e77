package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Result ids are random UUIDs; history is ordered by a per-table counter
// kept in the counters table. The counter advances inside the caller's
// transaction so a failed insert does not burn a number.

const countersSchema = `CREATE TABLE IF NOT EXISTS counters (
	name     TEXT PRIMARY KEY,
	next_val INTEGER NOT NULL
)`

const resultsCounter = "results"

// seedCounter makes sure name exists, continuing after any rows already in
// table so an existing database keeps its order.
func seedCounter(db *sql.DB, name, table string) error {
	_, err := db.Exec(
		`INSERT OR IGNORE INTO counters (name, next_val)
		 SELECT ?, COALESCE(MAX(sequence), 0) + 1 FROM `+table, name)
	if err != nil {
		return fmt.Errorf("seed counter %s: %w", name, err)
	}
	return nil
}

// nextSequence claims the next value of counter name within tx.
func nextSequence(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var seq int64
	err := tx.QueryRowContext(ctx,
		`UPDATE counters SET next_val = next_val + 1 WHERE name = ? RETURNING next_val - 1`,
		name,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", name, err)
	}
	return seq, nil
}
