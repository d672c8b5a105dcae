// =============================================================================
// Sales Report Generator - Pipeline Driver
// =============================================================================
//
// This module sequences the stages of a run:
//
//   1. Load reference data (salespeople, products)
//   2. Discover transaction files
//   3. Aggregate every file into run totals
//   4. Build the sorted reports
//   5. Render every report file, then rename each into place
//   6. Write the issue log and run summary log
//   7. Print the console summary
//
// FAILURE BEHAVIOR:
//   Any error from stages 1-3 aborts the run before the output directory is
//   touched. A render failure in stage 5 removes the staged temporaries and
//   leaves existing reports as they were. Stages 6 and 7 run only after the
//   reports are in place.
//
// In check mode the run stops after stage 4 and prints the issues instead.
//
// =============================================================================

package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/ginjaninja78/salesreport/internal/aggregator"
	"github.com/ginjaninja78/salesreport/internal/config"
	"github.com/ginjaninja78/salesreport/internal/logging"
	"github.com/ginjaninja78/salesreport/internal/refdata"
	"github.com/ginjaninja78/salesreport/internal/report"
	"github.com/ginjaninja78/salesreport/internal/validation"
	"github.com/ginjaninja78/salesreport/pkg/utils"
)

// Options configures a single run.
type Options struct {
	Config *config.MainConfig

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger

	// Stdout receives the console summary. Nil discards it.
	Stdout io.Writer

	// CheckOnly loads and aggregates without writing any file.
	CheckOnly bool

	// Now is used for run timings and log file names. Defaults to time.Now.
	Now func() time.Time
}

// Result describes a completed run.
type Result struct {
	Summary   utils.RunSummary
	Report    *report.Report
	Aggregate *aggregator.Result

	// ReportFiles lists the published report paths. Empty in check mode.
	ReportFiles []string

	// IssueLog and SummaryLog are the paths of the log files written, if any.
	IssueLog   string
	SummaryLog string
}

// Run executes the pipeline. The returned error is fatal; recoverable
// problems are reported in Result.Aggregate.Issues.
func Run(ctx context.Context, opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	delimiter := cfg.DelimiterRune()
	summary := utils.NewRunSummary(now())
	logger = logger.With("run_id", summary.RunID.String())

	// =========================================================================
	// STEP 1: LOAD REFERENCE DATA
	// =========================================================================

	loader := refdata.NewLoader(delimiter, logger)
	refs, err := loader.Load(cfg.SalespeopleFile, cfg.ProductsFile)
	if err != nil {
		return nil, err
	}
	summary.Salespeople = len(refs.Salespeople)
	summary.Products = refs.Products.Len()

	// =========================================================================
	// STEP 2: DISCOVER TRANSACTION FILES
	// =========================================================================

	fm := utils.NewFileManager(cfg.TransactionsDir, cfg.OutputDir)
	fm.TransactionPrefix = cfg.TransactionPrefix
	fm.TransactionSuffix = cfg.TransactionSuffix
	files, err := fm.DiscoverTransactionFiles()
	if err != nil {
		return nil, err
	}
	summary.FilesFound = len(files)
	logger.Info("discovered transaction files", "dir", cfg.TransactionsDir, "files", len(files))

	// =========================================================================
	// STEP 3: AGGREGATE
	// =========================================================================

	agg := aggregator.New(refs.Salespeople, refs.Products, delimiter, logger)
	agg.Concurrency = cfg.MaxConcurrency

	aggResult, err := agg.Aggregate(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("aggregation aborted: %w", err)
	}
	summary.FilesProcessed = aggResult.FilesProcessed
	summary.FilesSkipped = aggResult.FilesSkipped
	summary.LinesProcessed = aggResult.LinesProcessed
	summary.LinesSkipped = aggResult.LinesSkipped
	summary.Issues = len(aggResult.Issues)

	// =========================================================================
	// STEP 4: BUILD REPORTS
	// =========================================================================

	rep := report.Build(aggResult.Totals, refs.Products)
	summary.Vendors = len(rep.Vendors)
	summary.ProductsReported = len(rep.Products)

	result := &Result{
		Report:    rep,
		Aggregate: aggResult,
	}

	if opts.CheckOnly {
		summary.EndTime = now()
		result.Summary = summary
		return result, writeCheck(stdout, result)
	}

	// =========================================================================
	// STEP 5: WRITE REPORTS
	// =========================================================================

	if err := fm.EnsureOutputDir(); err != nil {
		return nil, err
	}

	reportFiles, err := writeReports(fm, cfg, rep, delimiter)
	if err != nil {
		return nil, err
	}
	result.ReportFiles = reportFiles
	summary.ReportFiles = reportFiles
	for _, path := range reportFiles {
		logger.Info("report written", "path", path)
	}

	// =========================================================================
	// STEP 6: LOG FILES
	// =========================================================================

	summary.EndTime = now()

	if cfg.WriteIssueLog() && len(aggResult.Issues) > 0 {
		path := fm.OutputPath(utils.TimestampedName("issues", summary.EndTime, summary.RunID))
		if err := validation.WriteIssueLog(aggResult.Issues, path); err != nil {
			logger.Error("failed to write issue log", "error", err)
		} else {
			result.IssueLog = path
			logger.Info("issue log written", "path", path, "issues", len(aggResult.Issues))
		}
	}

	if cfg.SummaryLog {
		path, err := utils.WriteSummaryLog(summary, cfg.OutputDir)
		if err != nil {
			logger.Error("failed to write run summary", "error", err)
		} else {
			result.SummaryLog = path
		}
	}

	result.Summary = summary

	// =========================================================================
	// STEP 7: CONSOLE SUMMARY
	// =========================================================================

	if err := writeConsole(stdout, rep, reportFiles); err != nil {
		return result, fmt.Errorf("failed to print summary: %w", err)
	}

	return result, nil
}

// writeConsole prints both reports followed by the published paths.
func writeConsole(w io.Writer, rep *report.Report, reportFiles []string) error {
	if err := rep.WriteSummary(w); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	for _, path := range reportFiles {
		if _, err := fmt.Fprintf(w, "Report written: %s\n", path); err != nil {
			return err
		}
	}
	return nil
}

// writeReports renders the vendor, product and optional XLSX reports and
// publishes them once all three rendered.
func writeReports(fm *utils.FileManager, cfg *config.MainConfig, rep *report.Report, delimiter rune) ([]string, error) {
	var staged utils.StagedWriter
	defer staged.Abort()

	vendorPath := fm.OutputPath(cfg.VendorReport)
	if err := staged.Stage(vendorPath, func(w io.Writer) error {
		return rep.WriteVendors(w, delimiter)
	}); err != nil {
		return nil, err
	}

	productPath := fm.OutputPath(cfg.ProductReport)
	if err := staged.Stage(productPath, func(w io.Writer) error {
		return rep.WriteProducts(w, delimiter)
	}); err != nil {
		return nil, err
	}

	paths := []string{vendorPath, productPath}

	if cfg.XLSXReport != "" {
		xlsxPath := fm.OutputPath(cfg.XLSXReport)
		if err := staged.Stage(xlsxPath, rep.WriteXLSX); err != nil {
			return nil, err
		}
		paths = append(paths, xlsxPath)
	}

	if err := staged.Commit(); err != nil {
		return nil, err
	}
	return paths, nil
}

// writeCheck prints the check-mode report.
func writeCheck(w io.Writer, result *Result) error {
	s := result.Summary
	agg := result.Aggregate

	_, err := fmt.Fprintf(w, "=== CHECK ===\n"+
		"Salespeople:      %d\n"+
		"Products:         %d\n"+
		"Files found:      %d\n"+
		"Files processed:  %d\n"+
		"Files skipped:    %d\n"+
		"Lines processed:  %d\n"+
		"Lines skipped:    %d\n"+
		"Vendors:          %d\n"+
		"Products sold:    %d\n",
		s.Salespeople, s.Products, s.FilesFound,
		agg.FilesProcessed, agg.FilesSkipped,
		agg.LinesProcessed, agg.LinesSkipped,
		s.Vendors, s.ProductsReported)
	if err != nil {
		return err
	}

	counts := validation.CountByKind(agg.Issues)
	kinds := slices.Sorted(maps.Keys(counts))
	for _, kind := range kinds {
		if _, err := fmt.Fprintf(w, "  %-18s %d\n", kind, counts[kind]); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintf(w, "\n%s\n", validation.FormatIssues(agg.Issues))
	return err
}
