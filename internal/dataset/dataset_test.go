package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/gradetrend/internal/trend"
)

const sampleCSV = `student_id,week,test_score,homework_pct,attendance_pct,extra_class_hours
101,1,50,80,90,2
101,2,55,78,92,2
102,1,70,60,70,0.5
101,5,95,82,88,2
101,3,65,80,90,2
101,4,80,80,90,2
102,2,68,62,72,0.5
`

func TestLoad_AndStudent(t *testing.T) {
	tbl, err := Load(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 7)

	rec, err := tbl.Student(101)
	require.NoError(t, err)
	assert.Equal(t, 5, rec.Rows)
	assert.Equal(t, []trend.Observation{
		{Week: 1, Score: 50},
		{Week: 2, Score: 55},
		{Week: 3, Score: 65},
		{Week: 4, Score: 80},
		{Week: 5, Score: 95},
	}, rec.Observations)
	assert.InDelta(t, 80, rec.Metrics.HomeworkPct, 1e-9)
	assert.InDelta(t, 90, rec.Metrics.AttendancePct, 1e-9)
	assert.InDelta(t, 2, rec.Metrics.ExtraClassHours, 1e-9)
}

func TestStudent_NotFound(t *testing.T) {
	tbl, err := Load(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	_, err = tbl.Student(999)
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestLoad_HeaderOrderAndExtraColumns(t *testing.T) {
	in := "\ufeffweek, Test_Score ,notes,student_id,extra_class_hours,attendance_pct,homework_pct\n" +
		"2,61,late,7,1,80,70\n" +
		"1,60,,7,1,80,70\n" +
		",,,,,,\n"
	tbl, err := Load(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)

	rec, err := tbl.Student(7)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Observations[0].Week)
	assert.Equal(t, 61.0, rec.Observations[1].Score)
}

func TestLoad_DuplicateWeeksKept(t *testing.T) {
	in := "student_id,week,test_score,homework_pct,attendance_pct,extra_class_hours\n" +
		"1,1,50,0,0,0\n1,1,52,0,0,0\n1,2,60,0,0,0\n"
	tbl, err := Load(strings.NewReader(in))
	require.NoError(t, err)
	rec, err := tbl.Student(1)
	require.NoError(t, err)
	assert.Len(t, rec.Observations, 3)
	assert.Equal(t, 50.0, rec.Observations[0].Score, "stable sort keeps file order")
}

func TestLoad_MissingColumn(t *testing.T) {
	in := "student_id,week,test_score,homework_pct,attendance_pct\n1,1,50,80,90\n"
	_, err := Load(strings.NewReader(in))
	var missing *ErrMissingColumn
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, ColExtraClassHours, missing.Column)
}

func TestLoad_BadCell(t *testing.T) {
	in := "student_id,week,test_score,homework_pct,attendance_pct,extra_class_hours\n" +
		"1,1,50,80,90,2\n1,two,55,80,90,2\n"
	_, err := Load(strings.NewReader(in))
	var bad *ErrBadCell
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, 2, bad.Row)
	assert.Equal(t, ColWeek, bad.Column)
	assert.Equal(t, "two", bad.Value)
}

func TestLoad_FloatEncodedIntegers(t *testing.T) {
	in := "student_id,week,test_score,homework_pct,attendance_pct,extra_class_hours\n" +
		"3.0,2.0,50,80,90,2\n"
	tbl, err := Load(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Rows[0].StudentID)
	assert.Equal(t, 2, tbl.Rows[0].Week)
}

func TestLoad_Empty(t *testing.T) {
	_, err := Load(strings.NewReader(""))
	var missing *ErrMissingColumn
	assert.ErrorAs(t, err, &missing)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	tbl, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 7)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
