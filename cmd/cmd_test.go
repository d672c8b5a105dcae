package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/salesreport/internal/config"
	"github.com/ginjaninja78/salesreport/internal/types"
)

// execute runs the root command in a fresh working directory.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeInputs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"salespeople.csv":      "CC;111;Ana;Lopez\n",
		"products.csv":         "5;Yoga Mat;2000\n",
		"tx/sales_CC_111.csv":  "CC;111\n5;3\n",
		"tx/sales_NIT_999.csv": "NIT;999\n5;1\n",
		"tx/notes.txt":         "ignored\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestReportCommand(t *testing.T) {
	dir := writeInputs(t)
	t.Chdir(dir)

	stdout, stderr, err := execute(t, "report",
		"--salespeople", "salespeople.csv",
		"--products", "products.csv",
		"--transactions", "tx",
		"--output", "out",
		"--concurrency", "2",
	)
	if err != nil {
		t.Fatalf("report: %v\nstderr:\n%s", err, stderr)
	}

	data, err := os.ReadFile(filepath.Join(dir, "out", "sales_report.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Ana Lopez;6000\n" {
		t.Errorf("vendor report = %q", data)
	}

	if !strings.Contains(stdout, "Ana Lopez: $6,000") {
		t.Errorf("stdout:\n%s", stdout)
	}
	if !strings.Contains(stderr, "skipping file") || !strings.Contains(stderr, "sales_NIT_999.csv") {
		t.Errorf("orphan warning missing from stderr:\n%s", stderr)
	}
}

func TestReportCommandFatal(t *testing.T) {
	dir := writeInputs(t)
	t.Chdir(dir)

	_, _, err := execute(t, "report",
		"--salespeople", "missing.csv",
		"--products", "products.csv",
		"--transactions", "tx",
		"--output", "out",
		"--concurrency", "1",
	)
	if !errors.Is(err, types.ErrReferenceFileMissing) {
		t.Fatalf("error = %v, want ErrReferenceFileMissing", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output dir created on fatal error")
	}
}

func TestCheckCommand(t *testing.T) {
	dir := writeInputs(t)
	t.Chdir(dir)

	stdout, _, err := execute(t, "check",
		"--salespeople", "salespeople.csv",
		"--products", "products.csv",
		"--transactions", "tx",
		"--output", "out",
		"--concurrency", "1",
	)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(stdout, "Files skipped:    1") || !strings.Contains(stdout, "orphan_file") {
		t.Errorf("stdout:\n%s", stdout)
	}
	if _, err := os.Stat(filepath.Join(dir, "out")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("check wrote output")
	}
}

func TestInvalidConcurrency(t *testing.T) {
	t.Chdir(writeInputs(t))

	_, _, err := execute(t, "check", "--concurrency", "0")
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout, "Sales Report Generator\nVersion:    "+Version) {
		t.Errorf("stdout = %q", stdout)
	}
}
