package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/abhisek/gradetrend/internal/improvement"
)

// Header is the column layout of the improvement output file.
var Header = []string{"student_id", "improvement_rate", "category", "reason", "analyst_name"}

// Row renders a result in Header order.
func Row(r *improvement.Result) []string {
	return []string{
		r.StudentID,
		strconv.FormatFloat(r.Value, 'f', -1, 64),
		string(r.Category),
		r.Reason(),
		r.Name,
	}
}

// WriteCSV writes results to w, preceded by the header when header is true.
func WriteCSV(w io.Writer, results []*improvement.Result, header bool) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write(Header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for _, r := range results {
		if err := cw.Write(Row(r)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes a single result to path. With appendMode the row is added
// to an existing file and the header is only written when the file is new
// or empty; otherwise the file is replaced.
func SaveCSV(path string, r *improvement.Result, appendMode bool) error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendMode {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}

	header := true
	if appendMode {
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return fmt.Errorf("stat output: %w", err)
		}
		header = info.Size() == 0
	}

	if err := WriteCSV(f, []*improvement.Result{r}, header); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
