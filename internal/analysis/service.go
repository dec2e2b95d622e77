package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/abhisek/gradetrend/internal/dataset"
	"github.com/abhisek/gradetrend/internal/improvement"
	"github.com/abhisek/gradetrend/internal/metrics"
	"github.com/abhisek/gradetrend/internal/store"
	"github.com/abhisek/gradetrend/internal/telemetry"
	"github.com/abhisek/gradetrend/internal/trend"
)

// Service runs a policy over a student's observations and produces a
// Result. Batch runs use SlopePolicy, form submissions GrowthPolicy.
type Service struct {
	log     *zap.Logger
	tracer  trace.Tracer
	metrics *metrics.Metrics
	history store.ResultRepo

	now   func() time.Time
	newID func() string
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records every result on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithHistory stores every result in repo.
func WithHistory(repo store.ResultRepo) Option {
	return func(s *Service) { s.history = repo }
}

// WithTracer overrides the global module tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service. A nil logger is replaced with a no-op one.
func New(log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		log:    log,
		tracer: telemetry.Tracer(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// AnalyzeStudent rates a student loaded from the score table. rollNo is
// kept as typed by the analyst and becomes the result's StudentID.
func (s *Service) AnalyzeStudent(ctx context.Context, rec *dataset.StudentRecord, name, rollNo string) (*improvement.Result, error) {
	return s.run(ctx, improvement.SlopePolicy{}, subject{
		studentID:    rollNo,
		name:         name,
		observations: rec.Observations,
		metrics:      rec.Metrics,
	})
}

// AnalyzeSubmission validates and rates a form submission. A missing
// name or roll number returns *improvement.ErrMissingField.
func (s *Service) AnalyzeSubmission(ctx context.Context, sub improvement.Submission) (*improvement.Result, error) {
	sub = sub.Normalize()
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	return s.run(ctx, improvement.GrowthPolicy{}, subject{
		studentID:    sub.RollNo,
		name:         sub.Name,
		observations: sub.Observations(),
		metrics:      sub.Metrics(),
	})
}

type subject struct {
	studentID    string
	name         string
	observations []trend.Observation
	metrics      improvement.Metrics
}

func (s *Service) run(ctx context.Context, p improvement.Policy, sub subject) (res *improvement.Result, err error) {
	ctx, span := s.tracer.Start(ctx, "analysis."+p.Name(),
		trace.WithAttributes(
			attribute.String("student.id", sub.studentID),
			attribute.String("analysis.policy", p.Name()),
			attribute.Int("analysis.observations", len(sub.observations)),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	start := time.Now()
	log := s.log.With(zap.String("student_id", sub.studentID), zap.String("policy", p.Name()))

	curve, err := trend.Fit(sub.observations)
	if err != nil {
		var ill *trend.ErrIllConditioned
		if !errors.As(err, &ill) {
			return nil, err
		}
		log.Warn("ill-conditioned fit", zap.Error(err))
	}

	var value float64
	if cr, ok := p.(improvement.CurveRater); ok {
		value = cr.RateCurve(curve, sub.observations)
	} else if value, err = p.Estimate(sub.observations); err != nil {
		return nil, err
	}

	avg := improvement.Average(sub.observations)
	cat := p.Classify(value, improvement.Context{AverageScore: avg})
	res = &improvement.Result{
		ID:           s.newID(),
		StudentID:    sub.studentID,
		Name:         sub.name,
		Policy:       p.Name(),
		Value:        value,
		AverageScore: avg,
		Category:     cat,
		Reasons:      p.Explain(cat, sub.metrics),
		Curve:        curve,
		Observations: sub.observations,
		Metrics:      sub.metrics,
		CreatedAt:    s.now(),
	}

	span.SetAttributes(
		attribute.Float64("analysis.value", value),
		attribute.String("analysis.category", string(cat)),
	)
	s.metrics.ObserveResult(p.Name(), string(cat), time.Since(start))
	log.Info("analysis complete",
		zap.Float64("value", value),
		zap.String("category", string(cat)),
		zap.Int("reasons", len(res.Reasons)))

	if s.history != nil {
		if herr := s.history.Save(ctx, ToRecord(res)); herr != nil {
			log.Warn("save history", zap.Error(herr))
		}
	}
	return res, nil
}

// ToRecord converts a result to its stored form.
func ToRecord(r *improvement.Result) *store.ResultRecord {
	obs := make([]store.ObservationData, len(r.Observations))
	for i, o := range r.Observations {
		obs[i] = store.ObservationData{Week: o.Week, Score: o.Score}
	}
	return &store.ResultRecord{
		ID:           r.ID,
		StudentID:    r.StudentID,
		Name:         r.Name,
		Policy:       r.Policy,
		Value:        r.Value,
		AverageScore: r.AverageScore,
		Category:     string(r.Category),
		Reasons:      r.Reasons,
		Observations: obs,
		CreatedAt:    r.CreatedAt,
	}
}
