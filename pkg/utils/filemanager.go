// =============================================================================
// Sales Report Generator - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the generator:
//   - Transaction file discovery (prefix/suffix naming convention)
//   - Output directory management
//   - Staged report writes (every report is rendered before any is published)
//   - Run summary log generation
//
// STAGING STRATEGY:
//   Each report is first written to a temporary file next to its final
//   path. Only when every report rendered successfully are the temporaries
//   renamed into place, one at a time. A render failure removes the
//   temporaries and leaves previously existing reports untouched. A rename
//   failure during Commit stops there: reports renamed before it are new,
//   the rest keep their previous content.
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/salesreport/internal/types"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the generator.
type FileManager struct {
	// TransactionsDir is the directory holding per-salesperson sales files.
	TransactionsDir string

	// OutputDir is the directory where reports and logs are written.
	OutputDir string

	// TransactionPrefix and TransactionSuffix select transaction files by name.
	TransactionPrefix string
	TransactionSuffix string
}

// NewFileManager creates a FileManager with the default naming convention
// (sales_*.csv).
func NewFileManager(transactionsDir, outputDir string) *FileManager {
	return &FileManager{
		TransactionsDir:   transactionsDir,
		OutputDir:         outputDir,
		TransactionPrefix: "sales_",
		TransactionSuffix: ".csv",
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureOutputDir creates the output directory if it doesn't exist.
// It is a no-op when the directory is already there.
func (fm *FileManager) EnsureOutputDir() error {
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// OutputPath resolves a report name against the output directory. Absolute
// paths and paths containing a directory component are returned unchanged.
func (fm *FileManager) OutputPath(name string) string {
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	return filepath.Join(fm.OutputDir, name)
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverTransactionFiles lists regular files in the transactions directory
// whose names start with the prefix and end with the suffix. The result is
// sorted by file name.
//
// RETURNS:
//   - types.ErrTransactionDirMissing if the directory does not exist or is
//     not a directory.
//   - types.ErrNoTransactionFiles if nothing matches.
func (fm *FileManager) DiscoverTransactionFiles() ([]string, error) {
	info, err := os.Stat(fm.TransactionsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", types.ErrTransactionDirMissing, fm.TransactionsDir)
		}
		return nil, fmt.Errorf("failed to stat transactions directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", types.ErrTransactionDirMissing, fm.TransactionsDir)
	}

	entries, err := os.ReadDir(fm.TransactionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan transactions directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !fm.MatchesTransactionName(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(fm.TransactionsDir, entry.Name()))
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s (pattern %s*%s)",
			types.ErrNoTransactionFiles, fm.TransactionsDir, fm.TransactionPrefix, fm.TransactionSuffix)
	}

	return files, nil
}

// MatchesTransactionName reports whether a file name follows the
// transaction naming convention.
func (fm *FileManager) MatchesTransactionName(name string) bool {
	if len(name) < len(fm.TransactionPrefix)+len(fm.TransactionSuffix) {
		return false
	}
	return strings.HasPrefix(name, fm.TransactionPrefix) && strings.HasSuffix(name, fm.TransactionSuffix)
}

// =============================================================================
// STAGED WRITES
// =============================================================================

// StagedWriter collects report files written to temporaries and publishes
// them with Commit.
type StagedWriter struct {
	staged []stagedFile
}

type stagedFile struct {
	tmpPath   string
	finalPath string
}

// Stage renders content into a temporary file beside finalPath.
func (s *StagedWriter) Stage(finalPath string, render func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(finalPath), "."+filepath.Base(finalPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", finalPath, err)
	}

	s.staged = append(s.staged, stagedFile{tmpPath: tmp.Name(), finalPath: finalPath})

	writer := bufio.NewWriter(tmp)
	if err := render(writer); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to render %s: %w", finalPath, err)
	}
	if err := writer.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", finalPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", finalPath, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", finalPath, err)
	}

	return nil
}

// Commit renames every staged file into place in staging order. On a rename
// failure the remaining temporaries are removed and the error names the
// first report that was not published.
func (s *StagedWriter) Commit() error {
	for i, f := range s.staged {
		if err := os.Rename(f.tmpPath, f.finalPath); err != nil {
			s.staged = s.staged[i:]
			s.Abort()
			return fmt.Errorf("failed to publish %s: %w", f.finalPath, err)
		}
	}
	s.staged = nil
	return nil
}

// Abort removes any staged temporaries. Safe to call after Commit.
func (s *StagedWriter) Abort() {
	for _, f := range s.staged {
		os.Remove(f.tmpPath)
	}
	s.staged = nil
}

// =============================================================================
// LOG FILE NAMING
// =============================================================================

// TimestampedName builds "<prefix>_<YYYYMMDD_HHMMSS>_<run>.txt", where run is
// the first 8 hex digits of the run id.
func TimestampedName(prefix string, at time.Time, runID uuid.UUID) string {
	return fmt.Sprintf("%s_%s_%s.txt", prefix, at.Format("20060102_150405"), runID.String()[:8])
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary contains summary information about a pipeline run.
type RunSummary struct {
	RunID            uuid.UUID
	StartTime        time.Time
	EndTime          time.Time
	Salespeople      int
	Products         int
	FilesFound       int
	FilesProcessed   int
	FilesSkipped     int
	LinesProcessed   int
	LinesSkipped     int
	Issues           int
	Vendors          int
	ProductsReported int
	ReportFiles      []string
}

// NewRunSummary starts a summary with a fresh run id.
func NewRunSummary(start time.Time) RunSummary {
	return RunSummary{
		RunID:     uuid.New(),
		StartTime: start,
	}
}

// WriteSummaryLog writes a run summary to a text file in outputDir.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary RunSummary, outputDir string) (string, error) {
	summaryPath := filepath.Join(outputDir, TimestampedName("run_summary", summary.EndTime, summary.RunID))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "Sales Report Generator - Run Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Salespeople:        %d\n"+
		"  Products:           %d\n"+
		"  Files Found:        %d\n"+
		"  Files Processed:    %d\n"+
		"  Files Skipped:      %d\n"+
		"  Lines Processed:    %d\n"+
		"  Lines Skipped:      %d\n"+
		"  Issues:             %d\n"+
		"  Vendors Reported:   %d\n"+
		"  Products Reported:  %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.Salespeople,
		summary.Products,
		summary.FilesFound,
		summary.FilesProcessed,
		summary.FilesSkipped,
		summary.LinesProcessed,
		summary.LinesSkipped,
		summary.Issues,
		summary.Vendors,
		summary.ProductsReported)

	if len(summary.ReportFiles) > 0 {
		writer.WriteString("Report Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, path := range summary.ReportFiles {
			fmt.Fprintf(writer, "  %s\n", path)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}
