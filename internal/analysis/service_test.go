package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"

	"github.com/abhisek/gradetrend/internal/dataset"
	"github.com/abhisek/gradetrend/internal/improvement"
	"github.com/abhisek/gradetrend/internal/metrics"
	"github.com/abhisek/gradetrend/internal/store"
	"github.com/abhisek/gradetrend/internal/trend"
)

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) (*Service, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	base := []Option{WithTracer(tp.Tracer("test")), WithClock(func() time.Time { return fixedNow })}
	return New(zap.NewNop(), append(base, opts...)...), rec
}

func studentRecord() *dataset.StudentRecord {
	return &dataset.StudentRecord{
		StudentID: 101,
		Observations: []trend.Observation{
			{Week: 1, Score: 50},
			{Week: 2, Score: 55},
			{Week: 3, Score: 65},
			{Week: 4, Score: 80},
			{Week: 5, Score: 95},
		},
		Metrics: improvement.Metrics{HomeworkPct: 80, AttendancePct: 90, ExtraClassHours: 2},
		Rows:    5,
	}
}

func submission() improvement.Submission {
	return improvement.Submission{
		Name:          "  Ravi ",
		RollNo:        "42",
		SemesterPct:   80,
		AttendancePct: 90,
		HomeworkPct:   70,
		StudyHours:    2,
		Scores:        [improvement.FormWeeks]float64{60, 62, 66, 70, 78},
	}
}

func TestAnalyzeStudent(t *testing.T) {
	svc, spans := newTestService(t)

	res, err := svc.AnalyzeStudent(context.Background(), studentRecord(), "Meera", "0101")
	require.NoError(t, err)

	assert.Equal(t, "0101", res.StudentID)
	assert.Equal(t, "Meera", res.Name)
	assert.Equal(t, improvement.SlopePolicyName, res.Policy)
	assert.InDelta(t, 11.5+4*25.0/14, res.Value, 1e-9)
	assert.Equal(t, improvement.CategoryHigh, res.Category)
	assert.Equal(t, []string{
		"Consistently completes homework",
		"Excellent attendance",
		"Participates in extra classes",
	}, res.Reasons)
	assert.InDelta(t, 69, res.AverageScore, 1e-9)
	assert.Equal(t, fixedNow, res.CreatedAt)
	assert.NotEmpty(t, res.ID)
	// The drawn curve is the one that produced the rate.
	assert.Equal(t, improvement.Rate(res.Curve, res.Observations), res.Value)

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "analysis.slope", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("analysis.category", "High Improvement"))
	assert.Contains(t, ended[0].Attributes(), attribute.String("student.id", "0101"))
}

func TestAnalyzeStudent_SinglePoint(t *testing.T) {
	svc, _ := newTestService(t)
	rec := studentRecord()
	rec.Observations = rec.Observations[:1]

	res, err := svc.AnalyzeStudent(context.Background(), rec, "Meera", "101")
	require.NoError(t, err)
	// A lone week has no trend: flat curve, zero rate.
	assert.Equal(t, 0.0, res.Value)
	assert.Equal(t, improvement.CategoryLow, res.Category)
	assert.NotEmpty(t, res.Reasons)
}

func TestAnalyzeStudent_NoObservations(t *testing.T) {
	svc, spans := newTestService(t)
	rec := studentRecord()
	rec.Observations = nil

	_, err := svc.AnalyzeStudent(context.Background(), rec, "Meera", "101")
	require.ErrorIs(t, err, trend.ErrNoObservations)

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
}

func TestAnalyzeSubmission(t *testing.T) {
	svc, spans := newTestService(t)

	res, err := svc.AnalyzeSubmission(context.Background(), submission())
	require.NoError(t, err)

	assert.Equal(t, "Ravi", res.Name)
	assert.Equal(t, "42", res.StudentID)
	assert.Equal(t, improvement.GrowthPolicyName, res.Policy)
	assert.Equal(t, 18.0, res.Value)
	assert.Equal(t, improvement.CategoryHigh, res.Category)
	assert.InDelta(t, 67.2, res.AverageScore, 1e-9)
	assert.Equal(t, []string{
		"Strong upward trend in weekly test scores",
		"Strong semester performance",
		"Regular attendance supported learning",
		"Homework practice needs improvement",
		"Insufficient daily study time",
	}, res.Reasons)
	require.Len(t, spans.Ended(), 1)
	assert.Equal(t, "analysis.growth", spans.Ended()[0].Name())
}

func TestAnalyzeSubmission_HighConsistent(t *testing.T) {
	svc, _ := newTestService(t)
	sub := submission()
	sub.Scores = [improvement.FormWeeks]float64{95, 90, 92, 94, 95}

	res, err := svc.AnalyzeSubmission(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, improvement.CategoryHighConsistent, res.Category)
}

func TestAnalyzeSubmission_MissingField(t *testing.T) {
	svc, spans := newTestService(t)
	sub := submission()
	sub.RollNo = "   "

	_, err := svc.AnalyzeSubmission(context.Background(), sub)
	var missing *improvement.ErrMissingField
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "Roll number", missing.Field)
	assert.Empty(t, spans.Ended())
}

func TestAnalyze_RecordsMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	svc, _ := newTestService(t, WithMetrics(m))

	_, err := svc.AnalyzeStudent(context.Background(), studentRecord(), "Meera", "101")
	require.NoError(t, err)
	_, err = svc.AnalyzeSubmission(context.Background(), submission())
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Results.WithLabelValues("slope", "High Improvement")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Results.WithLabelValues("growth", "High Improvement")))
}

func TestAnalyze_SavesHistory(t *testing.T) {
	st, err := store.Open("file:analysis_history?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc, _ := newTestService(t, WithHistory(st.ResultRepo()))
	res, err := svc.AnalyzeStudent(context.Background(), studentRecord(), "Meera", "101")
	require.NoError(t, err)

	got, err := st.ResultRepo().Get(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, "High Improvement", got.Category)
	assert.Equal(t, res.Reasons, got.Reasons)
	assert.Len(t, got.Observations, 5)
	assert.True(t, got.CreatedAt.Equal(fixedNow))
}

type failingRepo struct{}

func (failingRepo) Save(context.Context, *store.ResultRecord) error {
	return errors.New("disk full")
}

func (failingRepo) Get(context.Context, string) (*store.ResultRecord, error) {
	return nil, store.ErrNotFound
}

func (failingRepo) List(context.Context, store.QueryOpts) ([]*store.ResultRecord, error) {
	return nil, nil
}

func TestAnalyze_HistoryFailureDoesNotFail(t *testing.T) {
	svc, _ := newTestService(t, WithHistory(failingRepo{}))
	res, err := svc.AnalyzeStudent(context.Background(), studentRecord(), "Meera", "101")
	require.NoError(t, err)
	assert.Equal(t, improvement.CategoryHigh, res.Category)
}

func TestToRecord(t *testing.T) {
	res := &improvement.Result{
		ID:           "id-1",
		StudentID:    "7",
		Category:     improvement.CategoryLow,
		Observations: []trend.Observation{{Week: 2, Score: 40}},
	}
	rec := ToRecord(res)
	assert.Equal(t, "Low Improvement", rec.Category)
	assert.Equal(t, []store.ObservationData{{Week: 2, Score: 40}}, rec.Observations)
}
