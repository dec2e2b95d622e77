package improvement

import "github.com/abhisek/gradetrend/internal/trend"

// GrowthPolicyName identifies GrowthPolicy in stored results.
const GrowthPolicyName = "growth"

// GrowthPolicy rates a student by the raw change between the first and
// last weekly score. It backs the interactive form front ends; the fitted
// curve is only drawn, never used for the category.
type GrowthPolicy struct{}

var _ Policy = GrowthPolicy{}

func (GrowthPolicy) Name() string { return GrowthPolicyName }

// Estimate returns the last score minus the first. obs must be ordered by
// week. No observations means no growth.
func (GrowthPolicy) Estimate(obs []trend.Observation) (float64, error) {
	return Growth(obs), nil
}

// Growth is score[last] - score[first].
func Growth(obs []trend.Observation) float64 {
	if len(obs) == 0 {
		return 0
	}
	return obs[len(obs)-1].Score - obs[0].Score
}

// Classify applies the growth ladder. A flat top performer is checked
// before any growth threshold.
func (GrowthPolicy) Classify(growth float64, ctx Context) Category {
	switch {
	case ctx.AverageScore >= 90 && growth == 0:
		return CategoryHighConsistent
	case growth >= 15:
		return CategoryHigh
	case growth >= 5:
		return CategoryModerate
	default:
		return CategoryLow
	}
}

// categorySentence is the opening reason line for each category.
var categorySentence = map[Category]string{
	CategoryHighConsistent: "Sustained top scores across every week",
	CategoryHigh:           "Strong upward trend in weekly test scores",
	CategoryModerate:       "Gradual improvement with minor fluctuations",
	CategoryLow:            "Scores show little or no improvement",
}

// metricLine picks one of two sentences for a metric.
type metricLine struct {
	good     func(Metrics) bool
	goodText string
	badText  string
}

var formMetricLines = []metricLine{
	{func(m Metrics) bool { return m.SemesterPct >= 75 },
		"Strong semester performance", "Semester performance needs improvement"},
	{func(m Metrics) bool { return m.AttendancePct >= 85 },
		"Regular attendance supported learning", "Attendance inconsistency affected learning"},
	{func(m Metrics) bool { return m.HomeworkPct >= 80 },
		"Consistent homework practice", "Homework practice needs improvement"},
	{func(m Metrics) bool { return m.StudyHours >= 3 },
		"Adequate daily study time", "Insufficient daily study time"},
}

// Explain always returns five lines: the category sentence followed by
// one line each for semester, attendance, homework and study hours.
func (GrowthPolicy) Explain(cat Category, m Metrics) []string {
	head, ok := categorySentence[cat]
	if !ok {
		head = categorySentence[CategoryLow]
	}
	reasons := make([]string, 0, 1+len(formMetricLines))
	reasons = append(reasons, head)
	for _, l := range formMetricLines {
		if l.good(m) {
			reasons = append(reasons, l.goodText)
		} else {
			reasons = append(reasons, l.badText)
		}
	}
	return reasons
}
