package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ginjaninja78/salesreport/internal/types"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("CC;111\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverTransactionFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "sales_CC_222.csv"))
	touch(t, filepath.Join(dir, "sales_CC_111.csv"))
	touch(t, filepath.Join(dir, "sales_CC_333.txt"))
	touch(t, filepath.Join(dir, "products.csv"))
	if err := os.Mkdir(filepath.Join(dir, "sales_dir.csv"), 0o755); err != nil {
		t.Fatal(err)
	}

	fm := NewFileManager(dir, t.TempDir())
	files, err := fm.DiscoverTransactionFiles()
	if err != nil {
		t.Fatalf("DiscoverTransactionFiles: %v", err)
	}

	want := []string{
		filepath.Join(dir, "sales_CC_111.csv"),
		filepath.Join(dir, "sales_CC_222.csv"),
	}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("files = %v, want %v", files, want)
		}
	}
}

func TestDiscoverTransactionFilesFatal(t *testing.T) {
	dir := t.TempDir()

	fm := NewFileManager(filepath.Join(dir, "missing"), dir)
	if _, err := fm.DiscoverTransactionFiles(); !errors.Is(err, types.ErrTransactionDirMissing) {
		t.Errorf("missing dir: error = %v", err)
	}

	notDir := filepath.Join(dir, "file")
	touch(t, notDir)
	fm = NewFileManager(notDir, dir)
	if _, err := fm.DiscoverTransactionFiles(); !errors.Is(err, types.ErrTransactionDirMissing) {
		t.Errorf("not a dir: error = %v", err)
	}

	empty := filepath.Join(dir, "empty")
	if err := os.Mkdir(empty, 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(empty, "notes.csv"))
	fm = NewFileManager(empty, dir)
	if _, err := fm.DiscoverTransactionFiles(); !errors.Is(err, types.ErrNoTransactionFiles) {
		t.Errorf("no matches: error = %v", err)
	}
}

func TestMatchesTransactionName(t *testing.T) {
	fm := NewFileManager("", "")
	tests := map[string]bool{
		"sales_CC_111.csv": true,
		"sales_.csv":       true,
		"sales.csv":        false,
		"Sales_CC_1.csv":   false,
		"sales_CC_1.CSV":   false,
		"xsales_CC_1.csv":  false,
	}
	for name, want := range tests {
		if got := fm.MatchesTransactionName(name); got != want {
			t.Errorf("MatchesTransactionName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestEnsureOutputDirIdempotent(t *testing.T) {
	out := filepath.Join(t.TempDir(), "data", "output")
	fm := NewFileManager("", out)
	for i := 0; i < 2; i++ {
		if err := fm.EnsureOutputDir(); err != nil {
			t.Fatalf("EnsureOutputDir call %d: %v", i+1, err)
		}
	}
	if !exists(out) {
		t.Fatal("output dir not created")
	}
}

func TestOutputPath(t *testing.T) {
	fm := NewFileManager("", "out")
	if got := fm.OutputPath("sales_report.csv"); got != filepath.Join("out", "sales_report.csv") {
		t.Errorf("relative name = %q", got)
	}
	abs := filepath.Join(t.TempDir(), "r.csv")
	if got := fm.OutputPath(abs); got != abs {
		t.Errorf("absolute path = %q", got)
	}
}

func TestStagedWriterCommit(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")

	var s StagedWriter
	for _, p := range []string{a, b} {
		name := filepath.Base(p)
		if err := s.Stage(p, func(w io.Writer) error {
			_, err := io.WriteString(w, name+"\n")
			return err
		}); err != nil {
			t.Fatalf("Stage: %v", err)
		}
	}

	if exists(a) || exists(b) {
		t.Fatal("files visible before Commit")
	}
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	data, err := os.ReadFile(b)
	if err != nil || string(data) != "b.csv\n" {
		t.Fatalf("b.csv = %q, %v", data, err)
	}
	assertNoTemporaries(t, dir)
}

func TestStagedWriterAbortKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	if err := os.WriteFile(a, []byte("previous\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var s StagedWriter
	if err := s.Stage(a, func(w io.Writer) error {
		_, err := io.WriteString(w, "new\n")
		return err
	}); err != nil {
		t.Fatal(err)
	}
	err := s.Stage(filepath.Join(dir, "b.csv"), func(w io.Writer) error {
		return fmt.Errorf("render failed")
	})
	if err == nil {
		t.Fatal("expected render error")
	}
	s.Abort()

	data, _ := os.ReadFile(a)
	if string(data) != "previous\n" {
		t.Fatalf("a.csv = %q, want previous content", data)
	}
	assertNoTemporaries(t, dir)
}

func TestStagedWriterCommitRenameFailure(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	if err := os.WriteFile(a, []byte("previous\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// A non-empty directory at b's final path makes its rename fail.
	if err := os.MkdirAll(filepath.Join(b, "keep"), 0o755); err != nil {
		t.Fatal(err)
	}

	var s StagedWriter
	for _, p := range []string{a, b} {
		if err := s.Stage(p, func(w io.Writer) error {
			_, err := io.WriteString(w, "new\n")
			return err
		}); err != nil {
			t.Fatalf("Stage: %v", err)
		}
	}

	err := s.Commit()
	if err == nil || !strings.Contains(err.Error(), b) {
		t.Fatalf("Commit error = %v, want failure naming %s", err, b)
	}

	// Reports renamed before the failure are published.
	data, _ := os.ReadFile(a)
	if string(data) != "new\n" {
		t.Fatalf("a.csv = %q, want new content", data)
	}
	if info, err := os.Stat(b); err != nil || !info.IsDir() {
		t.Fatalf("b.csv replaced: %v", err)
	}
	assertNoTemporaries(t, dir)
}

func TestTimestampedName(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	first := NewRunSummary(at)
	second := NewRunSummary(at)

	name := TimestampedName("issues", at, first.RunID)
	want := "issues_20240301_093000_" + first.RunID.String()[:8] + ".txt"
	if name != want {
		t.Fatalf("TimestampedName = %q, want %q", name, want)
	}
	if name == TimestampedName("issues", at, second.RunID) {
		t.Fatal("runs in the same second share a log name")
	}
}

func assertNoTemporaries(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestWriteSummaryLog(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	summary := NewRunSummary(start)
	summary.EndTime = start.Add(2 * time.Second)
	summary.FilesFound = 3
	summary.FilesSkipped = 1
	summary.ReportFiles = []string{"out/sales_report.csv"}

	path, err := WriteSummaryLog(summary, dir)
	if err != nil {
		t.Fatalf("WriteSummaryLog: %v", err)
	}
	if filepath.Base(path) != "run_summary_20261017_090002_"+summary.RunID.String()[:8]+".txt" {
		t.Errorf("summary file name = %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	for _, want := range []string{summary.RunID.String(), "Files Found:        3", "Files Skipped:      1", "out/sales_report.csv", "Duration:       2s"} {
		if !strings.Contains(content, want) {
			t.Errorf("summary missing %q", want)
		}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
