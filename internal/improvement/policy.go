package improvement

import "github.com/abhisek/gradetrend/internal/trend"

// Metrics are the behavioral inputs used to explain a category. The batch
// front end fills the averaged homework, attendance and extra-class values;
// the form fills semester, attendance, homework and study hours.
type Metrics struct {
	HomeworkPct     float64
	AttendancePct   float64
	ExtraClassHours float64
	SemesterPct     float64
	StudyHours      float64
}

// Context carries inputs a policy may need besides the estimated value.
type Context struct {
	AverageScore float64
}

// Policy turns observations into an improvement value, a category and a
// list of reasons. Implementations are pure: the same inputs always give
// the same outputs.
type Policy interface {
	// Name identifies the policy in logs, metrics and stored history.
	Name() string

	// Estimate derives the improvement scalar from the observations.
	Estimate(obs []trend.Observation) (float64, error)

	// Classify maps the scalar to a category. The first matching
	// threshold wins.
	Classify(value float64, ctx Context) Category

	// Explain returns the ordered reasons for a category.
	Explain(cat Category, m Metrics) []string
}

// CurveRater is implemented by policies whose value comes from the fitted
// curve. Callers that already hold the curve rate it directly instead of
// fitting again in Estimate.
type CurveRater interface {
	RateCurve(c trend.Curve, obs []trend.Observation) float64
}

// rule pairs a metric predicate with the sentence it contributes.
type rule struct {
	holds    func(Metrics) bool
	sentence string
}

// collect evaluates rules in order and keeps the sentences that hold.
func collect(rules []rule, m Metrics) []string {
	var out []string
	for _, r := range rules {
		if r.holds(m) {
			out = append(out, r.sentence)
		}
	}
	return out
}

// Average returns the arithmetic mean of the scores, or 0 for none.
func Average(obs []trend.Observation) float64 {
	if len(obs) == 0 {
		return 0
	}
	var sum float64
	for _, o := range obs {
		sum += o.Score
	}
	return sum / float64(len(obs))
}
