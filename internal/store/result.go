package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type resultRepo struct {
	db *sql.DB
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const resultColumns = `id, sequence, student_id, analyst_name, policy, value,
	average_score, category, reasons, observations, created_at`

func (r *resultRepo) Save(ctx context.Context, rec *ResultRecord) error {
	if rec.ID == "" {
		return errors.New("save result: empty id")
	}
	reasons, err := json.Marshal(nonNil(rec.Reasons))
	if err != nil {
		return fmt.Errorf("marshal reasons: %w", err)
	}
	obs, err := json.Marshal(rec.Observations)
	if err != nil {
		return fmt.Errorf("marshal observations: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	seq, err := nextSequence(ctx, tx, resultsCounter)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO results (`+resultColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, seq, rec.StudentID, rec.Name, rec.Policy, rec.Value,
		rec.AverageScore, rec.Category, string(reasons), string(obs),
		rec.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	rec.Sequence = seq
	return nil
}

func (r *resultRepo) Get(ctx context.Context, id string) (*ResultRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+resultColumns+` FROM results WHERE id = ?`, id)
	rec, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("result %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *resultRepo) List(ctx context.Context, opts QueryOpts) ([]*ResultRecord, error) {
	var (
		where []string
		args  []any
	)
	if opts.After > 0 {
		where = append(where, "sequence > ?")
		args = append(args, opts.After)
	}
	if opts.StudentID != "" {
		where = append(where, "student_id = ?")
		args = append(args, opts.StudentID)
	}
	if opts.Category != "" {
		where = append(where, "category = ?")
		args = append(args, opts.Category)
	}
	if !opts.From.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, opts.From.UTC().Format(timeLayout))
	}
	if !opts.To.IsZero() {
		where = append(where, "created_at <= ?")
		args = append(args, opts.To.UTC().Format(timeLayout))
	}

	q := `SELECT ` + resultColumns + ` FROM results`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY sequence DESC"
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []*ResultRecord
	for rows.Next() {
		rec, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(s scanner) (*ResultRecord, error) {
	var (
		rec              ResultRecord
		reasons, obs, ts string
	)
	err := s.Scan(&rec.ID, &rec.Sequence, &rec.StudentID, &rec.Name, &rec.Policy,
		&rec.Value, &rec.AverageScore, &rec.Category, &reasons, &obs, &ts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan result: %w", err)
	}
	if err := json.Unmarshal([]byte(reasons), &rec.Reasons); err != nil {
		return nil, fmt.Errorf("unmarshal reasons: %w", err)
	}
	if err := json.Unmarshal([]byte(obs), &rec.Observations); err != nil {
		return nil, fmt.Errorf("unmarshal observations: %w", err)
	}
	if rec.CreatedAt, err = time.Parse(timeLayout, ts); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &rec, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
