package web

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/abhisek/gradetrend/internal/improvement"
	"github.com/abhisek/gradetrend/internal/plot"
	"github.com/abhisek/gradetrend/internal/store"
)

// FormInput is the analysis form as posted by the browser or the API.
// Name and roll number are checked by the analysis itself so the error
// text matches the terminal form.
type FormInput struct {
	Name          string  `form:"name" json:"name"`
	RollNo        string  `form:"roll_no" json:"roll_no"`
	SemesterPct   float64 `form:"semester_pct" json:"semester_pct" binding:"min=0,max=100"`
	AttendancePct float64 `form:"attendance_pct" json:"attendance_pct" binding:"min=0,max=100"`
	HomeworkPct   float64 `form:"homework_pct" json:"homework_pct" binding:"min=0,max=100"`
	StudyHours    float64 `form:"study_hours" json:"study_hours" binding:"min=0,max=12"`
	Week1         int     `form:"week1" json:"week1" binding:"min=0,max=100"`
	Week2         int     `form:"week2" json:"week2" binding:"min=0,max=100"`
	Week3         int     `form:"week3" json:"week3" binding:"min=0,max=100"`
	Week4         int     `form:"week4" json:"week4" binding:"min=0,max=100"`
	Week5         int     `form:"week5" json:"week5" binding:"min=0,max=100"`
}

// Weeks returns the five weekly scores in order.
func (f FormInput) Weeks() []int {
	return []int{f.Week1, f.Week2, f.Week3, f.Week4, f.Week5}
}

// Submission converts the input for analysis.
func (f FormInput) Submission() improvement.Submission {
	sub := improvement.Submission{
		Name:          f.Name,
		RollNo:        f.RollNo,
		SemesterPct:   f.SemesterPct,
		AttendancePct: f.AttendancePct,
		HomeworkPct:   f.HomeworkPct,
		StudyHours:    f.StudyHours,
	}
	for i, w := range f.Weeks() {
		sub.Scores[i] = float64(w)
	}
	return sub
}

var fieldRanges = map[string]struct {
	label  string
	lo, hi int
}{
	"SemesterPct":   {"Semester percentage", 0, 100},
	"AttendancePct": {"Attendance percentage", 0, 100},
	"HomeworkPct":   {"Homework completion", 0, 100},
	"StudyHours":    {"Daily study hours", 0, 12},
	"Week1":         {"Week 1 score", 0, 100},
	"Week2":         {"Week 2 score", 0, 100},
	"Week3":         {"Week 3 score", 0, 100},
	"Week4":         {"Week 4 score", 0, 100},
	"Week5":         {"Week 5 score", 0, 100},
}

// bindMessage turns a binding error into one line for the user.
func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if r, ok := fieldRanges[fe.Field()]; ok {
			return fmt.Sprintf("%s must be between %d and %d", r.label, r.lo, r.hi)
		}
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
	return "Invalid form values: " + err.Error()
}

// ResultView is an analysis result shaped for both the HTML panel and the
// JSON API.
type ResultView struct {
	ID           string       `json:"id"`
	StudentID    string       `json:"student_id"`
	Name         string       `json:"name"`
	Policy       string       `json:"policy"`
	Value        float64      `json:"value"`
	AverageScore float64      `json:"average_score"`
	Category     string       `json:"category"`
	CategorySlug string       `json:"category_slug"`
	Reasons      []string     `json:"reasons"`
	CreatedAt    time.Time    `json:"created_at"`
	Chart        template.URL `json:"-"`
}

// AverageText is the average score with two decimals.
func (v ResultView) AverageText() string {
	return strconv.FormatFloat(v.AverageScore, 'f', 2, 64)
}

// GrowthText is the growth with a sign.
func (v ResultView) GrowthText() string {
	return fmt.Sprintf("%+g", v.Value)
}

// Timestamp is the analysis time for display.
func (v ResultView) Timestamp() string {
	return v.CreatedAt.Format("2006-01-02 15:04:05")
}

func viewOf(res *improvement.Result) *ResultView {
	return &ResultView{
		ID:           res.ID,
		StudentID:    res.StudentID,
		Name:         res.Name,
		Policy:       res.Policy,
		Value:        res.Value,
		AverageScore: res.AverageScore,
		Category:     res.Category.DisplayName(),
		CategorySlug: res.Category.Slug(),
		Reasons:      res.Reasons,
		CreatedAt:    res.CreatedAt,
	}
}

type page struct {
	Form   FormInput
	Error  string
	Result *ResultView
}

// HandleForm handles GET /.
func (s *Server) HandleForm(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", page{})
}

// HandleSubmit handles POST /. Invalid input re-renders the form with the
// error and status 400; a valid submission renders the result panel.
func (s *Server) HandleSubmit(c *gin.Context) {
	var in FormInput
	if err := c.ShouldBind(&in); err != nil {
		c.HTML(http.StatusBadRequest, "index.html", page{Form: in, Error: bindMessage(err)})
		return
	}

	res, err := s.svc.AnalyzeSubmission(c.Request.Context(), in.Submission())
	if err != nil {
		var missing *improvement.ErrMissingField
		if errors.As(err, &missing) {
			c.HTML(http.StatusBadRequest, "index.html", page{Form: in, Error: missing.Error()})
			return
		}
		s.log.Error("analysis failed", zap.Error(err))
		c.HTML(http.StatusInternalServerError, "index.html", page{Form: in, Error: "Analysis failed, please try again"})
		return
	}

	view := viewOf(res)
	png, err := plot.PNG(plot.FromResult(res))
	if err != nil {
		s.log.Warn("render chart", zap.Error(err))
	} else {
		view.Chart = template.URL(plot.DataURI(png))
	}
	c.HTML(http.StatusOK, "index.html", page{Form: in, Result: view})
}

// HandleAnalyze handles POST /api/v1/analyze.
func (s *Server) HandleAnalyze(c *gin.Context) {
	var in FormInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", bindMessage(err))
		return
	}

	res, err := s.svc.AnalyzeSubmission(c.Request.Context(), in.Submission())
	if err != nil {
		var missing *improvement.ErrMissingField
		if errors.As(err, &missing) {
			fail(c, http.StatusBadRequest, "MISSING_FIELD", missing.Error())
			return
		}
		s.log.Error("analysis failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "ANALYSIS_FAILED", err.Error())
		return
	}
	success(c, viewOf(res))
}

// HandleHealth handles GET /healthz.
func (s *Server) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleListResults handles GET /api/v1/results.
func (s *Server) HandleListResults(c *gin.Context) {
	opts := store.QueryOpts{
		Limit:     20,
		StudentID: c.Query("student_id"),
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fail(c, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a non-negative integer")
			return
		}
		opts.Limit = n
	}

	recs, err := s.history.List(c.Request.Context(), opts)
	if err != nil {
		s.log.Error("list results", zap.Error(err))
		fail(c, http.StatusInternalServerError, "HISTORY_FAILED", "could not read history")
		return
	}
	views := make([]*ResultView, len(recs))
	for i, r := range recs {
		views[i] = recordView(r)
	}
	success(c, views)
}

// HandleGetResult handles GET /api/v1/results/:id.
func (s *Server) HandleGetResult(c *gin.Context) {
	rec, err := s.history.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, "NOT_FOUND", "result not found")
		return
	}
	if err != nil {
		s.log.Error("get result", zap.Error(err))
		fail(c, http.StatusInternalServerError, "HISTORY_FAILED", "could not read history")
		return
	}
	success(c, recordView(rec))
}

func recordView(r *store.ResultRecord) *ResultView {
	cat, _ := improvement.ParseCategory(r.Category)
	return &ResultView{
		ID:           r.ID,
		StudentID:    r.StudentID,
		Name:         r.Name,
		Policy:       r.Policy,
		Value:        r.Value,
		AverageScore: r.AverageScore,
		Category:     r.Category,
		CategorySlug: cat.Slug(),
		Reasons:      r.Reasons,
		CreatedAt:    r.CreatedAt,
	}
}
