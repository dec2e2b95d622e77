package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	s, err := Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord(id, student string) *ResultRecord {
	return &ResultRecord{
		ID:           id,
		StudentID:    student,
		Name:         "Meera",
		Policy:       "slope",
		Value:        18.64,
		AverageScore: 69,
		Category:     "High Improvement",
		Reasons:      []string{"Consistently completes homework", "Excellent attendance"},
		Observations: []ObservationData{{Week: 1, Score: 50}, {Week: 2, Score: 55}},
	}
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
	if err := s.DB().Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here. It is tested with file-based DBs.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestFileDatabaseUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestResultSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.ResultRepo()
	ctx := context.Background()

	created := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	rec := sampleRecord("r-1", "101")
	rec.CreatedAt = created
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	if rec.Sequence != 1 {
		t.Errorf("sequence = %d, want 1", rec.Sequence)
	}

	got, err := repo.Get(ctx, "r-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.StudentID != "101" || got.Name != "Meera" || got.Policy != "slope" {
		t.Errorf("identity = %q/%q/%q", got.StudentID, got.Name, got.Policy)
	}
	if got.Value != 18.64 {
		t.Errorf("value = %v, want 18.64", got.Value)
	}
	if got.Category != "High Improvement" {
		t.Errorf("category = %q", got.Category)
	}
	if len(got.Reasons) != 2 || got.Reasons[1] != "Excellent attendance" {
		t.Errorf("reasons = %v", got.Reasons)
	}
	if len(got.Observations) != 2 || got.Observations[1].Score != 55 {
		t.Errorf("observations = %v", got.Observations)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, created)
	}
}

func TestResultSaveStampsCreatedAt(t *testing.T) {
	s := openTestStore(t)
	repo := s.ResultRepo()
	rec := sampleRecord("r-1", "101")
	if err := repo.Save(context.Background(), rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestResultSaveRejectsEmptyID(t *testing.T) {
	s := openTestStore(t)
	if err := s.ResultRepo().Save(context.Background(), sampleRecord("", "101")); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestResultSaveWithoutReasons(t *testing.T) {
	s := openTestStore(t)
	repo := s.ResultRepo()
	ctx := context.Background()

	rec := sampleRecord("r-1", "101")
	rec.Reasons = nil
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.Get(ctx, "r-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Reasons) != 0 {
		t.Errorf("reasons = %v, want empty", got.Reasons)
	}
}

func TestResultGetNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.ResultRepo().Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestResultListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	repo := s.ResultRepo()
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		if err := repo.Save(ctx, sampleRecord(id, "101")); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	got, err := repo.List(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].ID != "c" || got[2].ID != "a" {
		t.Errorf("order = %s,%s,%s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestResultListFilters(t *testing.T) {
	s := openTestStore(t)
	repo := s.ResultRepo()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	records := []*ResultRecord{
		sampleRecord("a", "101"),
		sampleRecord("b", "102"),
		sampleRecord("c", "101"),
		sampleRecord("d", "103"),
	}
	records[3].Category = "Low Improvement"
	for i, rec := range records {
		rec.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if err := repo.Save(ctx, rec); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	tests := []struct {
		name string
		opts QueryOpts
		want []string
	}{
		{"limit", QueryOpts{Limit: 2}, []string{"d", "c"}},
		{"student", QueryOpts{StudentID: "101"}, []string{"c", "a"}},
		{"category", QueryOpts{Category: "Low Improvement"}, []string{"d"}},
		{"after", QueryOpts{After: 2}, []string{"d", "c"}},
		{"from", QueryOpts{From: base.Add(2 * time.Hour)}, []string{"d", "c"}},
		{"to", QueryOpts{To: base.Add(time.Hour)}, []string{"b", "a"}},
		{"no match", QueryOpts{StudentID: "999"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.opts)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			var ids []string
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			if strings.Join(ids, ",") != strings.Join(tt.want, ",") {
				t.Errorf("ids = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestSequenceSkipsFailedInsert(t *testing.T) {
	s := openTestStore(t)
	repo := s.ResultRepo()
	ctx := context.Background()

	first := sampleRecord("a", "101")
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("save a: %v", err)
	}
	// Duplicate id fails the insert and must not consume a number.
	if err := repo.Save(ctx, sampleRecord("a", "101")); err == nil {
		t.Fatal("expected duplicate id to fail")
	}
	second := sampleRecord("b", "101")
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("save b: %v", err)
	}

	if first.Sequence != 1 || second.Sequence != 2 {
		t.Errorf("sequences = %d, %d, want 1, 2", first.Sequence, second.Sequence)
	}
}

func TestSeedCounterContinuesExistingRows(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()
	ctx := context.Background()

	if err := s.ResultRepo().Save(ctx, sampleRecord("a", "101")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := db.Exec(`DELETE FROM counters`); err != nil {
		t.Fatalf("drop counter: %v", err)
	}
	if err := seedCounter(db, resultsCounter, "results"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := sampleRecord("b", "101")
	if err := s.ResultRepo().Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	if rec.Sequence != 2 {
		t.Errorf("sequence = %d, want 2", rec.Sequence)
	}
}

func TestAutoMigrationCreatesTable(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	var name string
	err := db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='results'",
	).Scan(&name)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if name != "results" {
		t.Errorf("table name = %q, want 'results'", name)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.ResultRepo().Save(ctx, sampleRecord("a", "101")); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	rec := sampleRecord("b", "101")
	if err := s.ResultRepo().Save(ctx, rec); err != nil {
		t.Fatalf("save after reopen: %v", err)
	}
	if rec.Sequence != 2 {
		t.Errorf("sequence = %d, want 2", rec.Sequence)
	}
}

func TestDefaultDBPathFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "g.db")
	t.Setenv("GRADETREND_DB", path)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("default path: %v", err)
	}
	if got != path {
		t.Errorf("path = %q, want %q", got, path)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("parent dir not created: %v", err)
	}
}

func TestDefaultDBPathXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GRADETREND_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("default path: %v", err)
	}
	want := filepath.Join(dir, "gradetrend", "gradetrend.db")
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}
