// =============================================================================
// Sales Report Generator - Recoverable Issues
// =============================================================================
//
// This module models the recoverable conditions found while reading input
// data. A recoverable condition never stops the pipeline: the offending
// line or file is skipped, an Issue is recorded, and processing continues.
//
// ISSUE LEVELS:
//   - line: a single record was skipped (or lost its revenue contribution)
//   - file: a whole transaction file was skipped
//
// Fatal conditions are NOT issues. They are error values that wrap the
// sentinels in the types package.
//
// =============================================================================

package validation

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// =============================================================================
// ISSUE KINDS
// =============================================================================

// Kind identifies the reason a record or file was skipped.
type Kind string

const (
	// KindShortLine: fewer fields than the record format requires.
	KindShortLine Kind = "short_line"

	// KindLongLine: the line exceeded the maximum line length and was
	// discarded unread.
	KindLongLine Kind = "long_line"

	// KindBadNumber: a numeric field failed integer parsing.
	KindBadNumber Kind = "bad_number"

	// KindNegativeQuantity: a transaction line sold a negative quantity.
	KindNegativeQuantity Kind = "negative_quantity"

	// KindQuantityOverflow: adding the line would overflow the product total.
	KindQuantityOverflow Kind = "quantity_overflow"

	// KindUnknownProduct: the product id has no price, so the line adds
	// quantity but no revenue.
	KindUnknownProduct Kind = "unknown_product"

	// KindEmptyFile: the transaction file has no header line.
	KindEmptyFile Kind = "empty_file"

	// KindBadHeader: the header line has fewer than 2 fields.
	KindBadHeader Kind = "bad_header"

	// KindOrphanFile: the header does not resolve to a known salesperson.
	KindOrphanFile Kind = "orphan_file"

	// KindReadError: the file could not be opened or read.
	KindReadError Kind = "read_error"
)

// Level is the scope of data an issue discarded.
type Level string

const (
	LevelLine Level = "line"
	LevelFile Level = "file"
)

// =============================================================================
// ISSUE
// =============================================================================

// Issue is a single recoverable condition.
type Issue struct {
	Level   Level
	Kind    Kind
	File    string
	Line    int
	Message string
}

// Error implements the error interface so an Issue can be logged or wrapped
// like any other error.
func (i Issue) Error() string {
	if i.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", i.File, i.Line, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.File, i.Message)
}

// LineIssue builds a line-level issue.
func LineIssue(kind Kind, file string, line int, format string, args ...any) Issue {
	return Issue{
		Level:   LevelLine,
		Kind:    kind,
		File:    file,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	}
}

// FileIssue builds a file-level issue.
func FileIssue(kind Kind, file string, format string, args ...any) Issue {
	return Issue{
		Level:   LevelFile,
		Kind:    kind,
		File:    file,
		Message: fmt.Sprintf(format, args...),
	}
}

// Log writes the issue as a warning.
func (i Issue) Log(logger *slog.Logger) {
	attrs := []any{
		"file", i.File,
		"kind", string(i.Kind),
	}
	if i.Line > 0 {
		attrs = append(attrs, "line", i.Line)
	}
	switch i.Level {
	case LevelFile:
		logger.Warn("skipping file: "+i.Message, attrs...)
	default:
		logger.Warn(i.Message, attrs...)
	}
}

// =============================================================================
// REPORTING
// =============================================================================

// CountByKind tallies issues per kind.
func CountByKind(issues []Issue) map[Kind]int {
	counts := make(map[Kind]int)
	for _, issue := range issues {
		counts[issue.Kind]++
	}
	return counts
}

// FormatIssues renders issues as a human-readable block.
func FormatIssues(issues []Issue) string {
	if len(issues) == 0 {
		return "No issues found."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d issue(s):\n", len(issues)))

	for i, issue := range issues {
		sb.WriteString(fmt.Sprintf("  %d. [%s/%s] %s\n", i+1, issue.Level, issue.Kind, issue.Error()))
	}

	return sb.String()
}

// WriteIssueLog writes issues to a text file.
func WriteIssueLog(issues []Issue, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create issue log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Sales Report Generator - Issue Log\n")
	fmt.Fprintf(writer, "Generated: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(writer, "Total Issues: %d\n", len(issues))
	fmt.Fprintf(writer, "================================================================================\n\n")

	for i, issue := range issues {
		fmt.Fprintf(writer, "Issue #%d\n", i+1)
		fmt.Fprintf(writer, "  Level:   %s\n", issue.Level)
		fmt.Fprintf(writer, "  Kind:    %s\n", issue.Kind)
		fmt.Fprintf(writer, "  File:    %s\n", issue.File)
		if issue.Line > 0 {
			fmt.Fprintf(writer, "  Line:    %d\n", issue.Line)
		}
		fmt.Fprintf(writer, "  Message: %s\n\n", issue.Message)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush issue log: %w", err)
	}

	return file.Close()
}
