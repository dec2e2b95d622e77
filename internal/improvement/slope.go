package improvement

import (
	"errors"

	"github.com/abhisek/gradetrend/internal/trend"
)

// SlopePolicyName identifies SlopePolicy in stored results.
const SlopePolicyName = "slope"

// NoReasonDetected is the fallback reason when no metric check fired.
const NoReasonDetected = "No specific reason detected"

// SlopePolicy rates a student by the slope of the fitted quadratic at the
// last observed week. It backs the batch CSV front end.
type SlopePolicy struct{}

var (
	_ Policy     = SlopePolicy{}
	_ CurveRater = SlopePolicy{}
)

func (SlopePolicy) Name() string { return SlopePolicyName }

// Estimate fits the curve and returns its slope at the maximum week.
// An ill-conditioned fit still yields a rate; only other fit errors abort.
func (SlopePolicy) Estimate(obs []trend.Observation) (float64, error) {
	c, err := trend.Fit(obs)
	if err != nil {
		var ill *trend.ErrIllConditioned
		if !errors.As(err, &ill) {
			return 0, err
		}
	}
	return Rate(c, obs), err
}

// RateCurve is Rate on an already fitted curve.
func (SlopePolicy) RateCurve(c trend.Curve, obs []trend.Observation) float64 {
	return Rate(c, obs)
}

// Rate is the instantaneous slope of c at the last observed week.
func Rate(c trend.Curve, obs []trend.Observation) float64 {
	return c.Slope(float64(trend.MaxWeek(obs)))
}

// Classify applies the rate ladder. Both ends of the moderate band are
// inclusive: 1.0 and 2.0 are Moderate.
func (SlopePolicy) Classify(rate float64, _ Context) Category {
	switch {
	case rate > 2:
		return CategoryHigh
	case rate >= 1:
		return CategoryModerate
	default:
		return CategoryLow
	}
}

var (
	highImprovementRules = []rule{
		{func(m Metrics) bool { return m.HomeworkPct >= 75 }, "Consistently completes homework"},
		{func(m Metrics) bool { return m.AttendancePct >= 85 }, "Excellent attendance"},
		{func(m Metrics) bool { return m.ExtraClassHours >= 1.5 }, "Participates in extra classes"},
	}

	lowImprovementRules = []rule{
		{func(m Metrics) bool { return m.HomeworkPct < 65 }, "Low homework completion"},
		{func(m Metrics) bool { return m.AttendancePct < 80 }, "Poor attendance"},
		{func(m Metrics) bool { return m.ExtraClassHours < 1 }, "Rarely attends extra classes"},
	}
)

// Explain lists the metric checks that fired for cat, in check order.
// Categories outside the rate ladder get the fallback reason.
func (SlopePolicy) Explain(cat Category, m Metrics) []string {
	var reasons []string
	switch cat {
	case CategoryHigh:
		reasons = collect(highImprovementRules, m)
	case CategoryModerate:
		reasons = []string{"Moderate study habits or attendance"}
	case CategoryLow:
		reasons = collect(lowImprovementRules, m)
	case CategoryHighConsistent:
	}
	if len(reasons) == 0 {
		reasons = []string{NoReasonDetected}
	}
	return reasons
}
