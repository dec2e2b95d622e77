package improvement

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/gradetrend/internal/trend"
)

// FormWeeks is the number of weekly scores a form submission carries.
const FormWeeks = 5

// ErrMissingField reports a required form field left empty.
type ErrMissingField struct {
	Field string
}

func (e *ErrMissingField) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// Submission is the set of values captured by an interactive form.
// Numeric bounds are enforced by the form widgets, not here.
type Submission struct {
	Name          string             `validate:"required"`
	RollNo        string             `validate:"required"`
	SemesterPct   float64
	AttendancePct float64
	HomeworkPct   float64
	StudyHours    float64
	Scores        [FormWeeks]float64 // weeks 1..5
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// fieldLabels maps struct fields to the labels users see.
var fieldLabels = map[string]string{
	"Name":   "Name",
	"RollNo": "Roll number",
}

// Normalize trims surrounding whitespace from the text fields.
func (s Submission) Normalize() Submission {
	s.Name = strings.TrimSpace(s.Name)
	s.RollNo = strings.TrimSpace(s.RollNo)
	return s
}

// Validate checks the required text fields and returns *ErrMissingField
// for the first one left empty.
func (s Submission) Validate() error {
	err := validate.Struct(s.Normalize())
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		label, ok := fieldLabels[verrs[0].Field()]
		if !ok {
			label = verrs[0].Field()
		}
		return &ErrMissingField{Field: label}
	}
	return fmt.Errorf("validate submission: %w", err)
}

// Observations returns the weekly scores as week 1..5 observations.
func (s Submission) Observations() []trend.Observation {
	obs := make([]trend.Observation, FormWeeks)
	for i, score := range s.Scores {
		obs[i] = trend.Observation{Week: i + 1, Score: score}
	}
	return obs
}

// Metrics returns the behavioral values of the submission.
func (s Submission) Metrics() Metrics {
	return Metrics{
		SemesterPct:   s.SemesterPct,
		AttendancePct: s.AttendancePct,
		HomeworkPct:   s.HomeworkPct,
		StudyHours:    s.StudyHours,
	}
}
