package batch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/gradetrend/internal/analysis"
	"github.com/abhisek/gradetrend/internal/dataset"
	"github.com/abhisek/gradetrend/internal/improvement"
	"github.com/abhisek/gradetrend/internal/plot"
	"github.com/abhisek/gradetrend/internal/report"
	"github.com/abhisek/gradetrend/internal/ui/theme"
)

// ErrInputClosed is returned when stdin ends before both prompts are answered.
var ErrInputClosed = errors.New("input closed")

// ErrInvalidRollNo reports a roll number that is not an integer.
type ErrInvalidRollNo struct {
	Value string
	Err   error
}

func (e *ErrInvalidRollNo) Error() string {
	return fmt.Sprintf("invalid roll number %q: must be an integer", e.Value)
}

func (e *ErrInvalidRollNo) Unwrap() error { return e.Err }

// Options locates the input table and the output files.
type Options struct {
	DataPath  string
	CSVPath   string
	ChartPath string // empty skips the chart
	Append    bool
}

// Runner performs one interactive batch analysis.
type Runner struct {
	svc  *analysis.Service
	opts Options
	log  *zap.Logger
}

func New(svc *analysis.Service, opts Options, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{svc: svc, opts: opts, log: log}
}

// Run prompts for the analyst name and roll number on in, analyzes the
// matching student and writes the report, summary and chart. When the
// roll number has no rows it prints a notice and returns
// dataset.ErrStudentNotFound without writing any file.
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) (*improvement.Result, error) {
	scanner := bufio.NewScanner(in)

	name, err := prompt(scanner, out, "Enter your Name: ")
	if err != nil {
		return nil, err
	}
	rollNo, err := prompt(scanner, out, "Enter your Roll Number: ")
	if err != nil {
		return nil, err
	}

	id, err := strconv.Atoi(rollNo)
	if err != nil {
		return nil, &ErrInvalidRollNo{Value: rollNo, Err: err}
	}

	table, err := dataset.LoadFile(r.opts.DataPath)
	if err != nil {
		return nil, err
	}
	r.log.Debug("dataset loaded", zap.String("path", r.opts.DataPath), zap.Int("rows", len(table.Rows)))

	rec, err := table.Student(id)
	if errors.Is(err, dataset.ErrStudentNotFound) {
		fmt.Fprintf(out, "No data found for Roll No %s\n", rollNo)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	res, err := r.svc.AnalyzeStudent(ctx, rec, name, rollNo)
	if err != nil {
		return nil, fmt.Errorf("analyze student %s: %w", rollNo, err)
	}

	// Render before writing anything so a chart failure leaves no report.
	var png []byte
	if r.opts.ChartPath != "" {
		if png, err = plot.PNG(plot.FromResult(res)); err != nil {
			return nil, err
		}
	}

	if err := report.SaveCSV(r.opts.CSVPath, res, r.opts.Append); err != nil {
		return nil, err
	}
	r.log.Info("report written", zap.String("path", r.opts.CSVPath), zap.Bool("append", r.opts.Append))

	lipgloss.Fprintln(out, Summary(res))

	if png != nil {
		if err := plot.WriteFile(r.opts.ChartPath, png); err != nil {
			return nil, err
		}
		r.log.Info("chart written", zap.String("path", r.opts.ChartPath))
	}
	return res, nil
}

func prompt(scanner *bufio.Scanner, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", ErrInputClosed
	}
	return strings.TrimSpace(scanner.Text()), nil
}

// Summary renders the console box shown after a batch run.
func Summary(res *improvement.Result) string {
	rows := []struct{ label, value string }{
		{"Name", res.Name},
		{"Roll No", res.StudentID},
		{"Improvement Rate", fmt.Sprintf("%.2f", res.Value)},
		{"Category", theme.Badge(res.Category.Slug(), res.Category.DisplayName())},
		{"Reason", res.Reason()},
	}
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = lipgloss.JoinHorizontal(lipgloss.Top,
			theme.Label.Render(row.label+":"),
			theme.Body.Render(row.value))
	}
	return theme.Card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
