package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/abhisek/gradetrend/internal/improvement"
	"github.com/abhisek/gradetrend/internal/trend"
)

// Column names expected in the score table.
const (
	ColStudentID       = "student_id"
	ColWeek            = "week"
	ColTestScore       = "test_score"
	ColHomeworkPct     = "homework_pct"
	ColAttendancePct   = "attendance_pct"
	ColExtraClassHours = "extra_class_hours"
)

var requiredColumns = []string{
	ColStudentID, ColWeek, ColTestScore, ColHomeworkPct, ColAttendancePct, ColExtraClassHours,
}

// ErrStudentNotFound is returned when no rows match a student id.
var ErrStudentNotFound = errors.New("student not found")

// ErrMissingColumn reports a required header absent from the table.
type ErrMissingColumn struct {
	Column string
}

func (e *ErrMissingColumn) Error() string {
	return fmt.Sprintf("missing column %q", e.Column)
}

// ErrBadCell reports a cell that could not be parsed as a number.
type ErrBadCell struct {
	Row    int // 1-based data row, header excluded
	Column string
	Value  string
	Err    error
}

func (e *ErrBadCell) Error() string {
	return fmt.Sprintf("row %d column %s: invalid value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ErrBadCell) Unwrap() error { return e.Err }

// Row is one weekly observation of one student.
type Row struct {
	StudentID       int
	Week            int
	TestScore       float64
	HomeworkPct     float64
	AttendancePct   float64
	ExtraClassHours float64
}

// Table holds every row of a score file in file order.
type Table struct {
	Rows []Row
}

// StudentRecord is the slice of a Table belonging to one student.
type StudentRecord struct {
	StudentID    int
	Observations []trend.Observation // sorted by week, duplicates kept
	Metrics      improvement.Metrics // averaged over the student's rows
	Rows         int
}

// LoadFile reads a score table from a CSV file.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a score table from CSV. Header order is free and extra
// columns are ignored.
func Load(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, &ErrMissingColumn{Column: ColStudentID}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	t := &Table{}
	for line := 1; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		if blank(rec) {
			continue
		}
		row, err := parseRow(rec, idx, line)
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Student collects the rows for id. It returns ErrStudentNotFound when
// no row matches.
func (t *Table) Student(id int) (*StudentRecord, error) {
	var rows []Row
	for _, r := range t.Rows {
		if r.StudentID == id {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("student %d: %w", id, ErrStudentNotFound)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Week < rows[j].Week })

	rec := &StudentRecord{StudentID: id, Rows: len(rows)}
	var hw, att, extra float64
	for _, r := range rows {
		rec.Observations = append(rec.Observations, trend.Observation{Week: r.Week, Score: r.TestScore})
		hw += r.HomeworkPct
		att += r.AttendancePct
		extra += r.ExtraClassHours
	}
	n := float64(len(rows))
	rec.Metrics = improvement.Metrics{
		HomeworkPct:     hw / n,
		AttendancePct:   att / n,
		ExtraClassHours: extra / n,
	}
	return rec, nil
}

// mapColumns locates each required column in the header.
func mapColumns(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			return nil, &ErrMissingColumn{Column: c}
		}
	}
	return idx, nil
}

func parseRow(rec []string, idx map[string]int, line int) (Row, error) {
	cell := func(col string) string {
		i := idx[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	num := func(col string) (float64, error) {
		v := cell(col)
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, &ErrBadCell{Row: line, Column: col, Value: v, Err: err}
		}
		return f, nil
	}
	integer := func(col string) (int, error) {
		v := cell(col)
		n, err := strconv.Atoi(v)
		if err == nil {
			return n, nil
		}
		// Spreadsheets often export integer columns as "3.0".
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, &ErrBadCell{Row: line, Column: col, Value: v, Err: err}
		}
		return int(f), nil
	}

	var (
		row Row
		err error
	)
	if row.StudentID, err = integer(ColStudentID); err != nil {
		return Row{}, err
	}
	if row.Week, err = integer(ColWeek); err != nil {
		return Row{}, err
	}
	if row.TestScore, err = num(ColTestScore); err != nil {
		return Row{}, err
	}
	if row.HomeworkPct, err = num(ColHomeworkPct); err != nil {
		return Row{}, err
	}
	if row.AttendancePct, err = num(ColAttendancePct); err != nil {
		return Row{}, err
	}
	if row.ExtraClassHours, err = num(ColExtraClassHours); err != nil {
		return Row{}, err
	}
	return row, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
