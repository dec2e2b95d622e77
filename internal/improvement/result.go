package improvement

import (
	"strings"
	"time"

	"github.com/abhisek/gradetrend/internal/trend"
)

// ReasonSeparator joins reasons into the single CSV reason column.
const ReasonSeparator = ", "

// Result is the outcome of analyzing one student. It is built once per
// run and never modified afterwards.
type Result struct {
	ID           string
	StudentID    string
	Name         string
	Policy       string
	Value        float64 // improvement rate (slope) or score growth
	AverageScore float64
	Category     Category
	Reasons      []string
	Curve        trend.Curve
	Observations []trend.Observation
	Metrics      Metrics
	CreatedAt    time.Time
}

// Reason returns the reasons joined for single-column output.
func (r *Result) Reason() string {
	return strings.Join(r.Reasons, ReasonSeparator)
}

// SplitReason is the inverse of Reason.
func SplitReason(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ReasonSeparator)
}
