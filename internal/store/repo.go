package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no result has the given id.
var ErrNotFound = errors.New("result not found")

// QueryOpts configures result queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	After     int64     // sequence > After
	StudentID string    // exact match when set
	Category  string    // exact match when set
	From      time.Time // created_at >= From
	To        time.Time // created_at <= To
}

// ObservationData is one stored (week, score) pair.
type ObservationData struct {
	Week  int     `json:"week"`
	Score float64 `json:"score"`
}

// ResultRecord is one persisted analysis outcome.
type ResultRecord struct {
	ID           string
	Sequence     int64
	StudentID    string
	Name         string
	Policy       string
	Value        float64
	AverageScore float64
	Category     string
	Reasons      []string
	Observations []ObservationData
	CreatedAt    time.Time
}

// ResultRepo stores analysis results.
type ResultRepo interface {
	// Save assigns the next sequence number and stores rec.
	Save(ctx context.Context, rec *ResultRecord) error

	// Get returns the result with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (*ResultRecord, error)

	// List returns results newest first.
	List(ctx context.Context, opts QueryOpts) ([]*ResultRecord, error)
}
