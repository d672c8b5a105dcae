// =============================================================================
// Sales Report Generator - Transaction Aggregator
// =============================================================================
//
// This module joins every transaction file against the reference data and
// accumulates two totals:
//   - revenue per salesperson (unit price x quantity, exact decimal)
//   - units sold per product (regardless of who sold them)
//
// TRANSACTION FILE FORMAT:
//   line 1:   docType;docNumber            (identifies the salesperson)
//   line 2..: productId;quantitySold[;...] (extra fields ignored)
//
// PROCESSING MODEL:
//   1. Each file is reduced on its own into a FileResult (subtotals only)
//   2. Up to Concurrency files are processed at the same time
//   3. FileResults are merged into the shared Totals by a single goroutine,
//      in file-name order, so the result never depends on scheduling
//
// ERROR HANDLING:
//   Nothing in a transaction file is fatal. A bad line is skipped, a file
//   with a bad or unknown header is skipped, and each case is recorded as a
//   validation.Issue.
//
// =============================================================================

package aggregator

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/salesreport/internal/csvparser"
	"github.com/ginjaninja78/salesreport/internal/types"
	"github.com/ginjaninja78/salesreport/internal/validation"
)

const (
	headerFields = 2
	lineFields   = 2
)

// =============================================================================
// RESULT STRUCTURES
// =============================================================================

// FileResult is the contribution of a single transaction file.
type FileResult struct {
	// Path is the transaction file path.
	Path string

	// Vendor is the resolved full name. Empty when the file was skipped.
	Vendor string

	// Skipped is true when the whole file was discarded.
	Skipped bool

	// Revenue is the file's revenue subtotal.
	Revenue decimal.Decimal

	// Quantities holds the file's units sold per product id.
	Quantities map[int]int64

	// LinesProcessed counts lines that contributed a quantity.
	LinesProcessed int

	// LinesSkipped counts non-blank body lines that were discarded.
	LinesSkipped int

	// Issues lists every recoverable condition found in the file.
	Issues []validation.Issue
}

// Result is the outcome of aggregating a set of transaction files.
type Result struct {
	Totals *types.Totals
	Files  []FileResult
	Issues []validation.Issue

	FilesProcessed int
	FilesSkipped   int
	LinesProcessed int
	LinesSkipped   int
}

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator holds the read-only reference lookups shared by all workers.
type Aggregator struct {
	Salespeople types.SalespersonLookup
	Products    *types.ProductLookup
	Delimiter   rune
	Concurrency int
	Logger      *slog.Logger
}

// New creates an Aggregator that processes files sequentially. Set
// Concurrency to process several files at once.
func New(salespeople types.SalespersonLookup, products *types.ProductLookup, delimiter rune, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Aggregator{
		Salespeople: salespeople,
		Products:    products,
		Delimiter:   delimiter,
		Concurrency: 1,
		Logger:      logger,
	}
}

// Aggregate processes every file and merges the results into fresh Totals.
// The only error it returns is context cancellation.
func (a *Aggregator) Aggregate(ctx context.Context, files []string) (*Result, error) {
	a.Logger.Info("processing transaction files", "files", len(files), "concurrency", a.concurrency())

	fileResults := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency())

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fileResults[i] = a.ProcessFile(path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Totals: types.NewTotals(),
		Files:  fileResults,
	}
	for _, fr := range fileResults {
		result.merge(fr, a.Logger)
	}

	a.Logger.Info("processed transaction files",
		"processed", result.FilesProcessed,
		"skipped", result.FilesSkipped,
		"issues", len(result.Issues))

	return result, nil
}

func (a *Aggregator) concurrency() int {
	if a.Concurrency < 1 {
		return 1
	}
	return a.Concurrency
}

// merge folds one file's subtotals into the run totals.
func (r *Result) merge(fr FileResult, logger *slog.Logger) {
	for _, issue := range fr.Issues {
		issue.Log(logger)
	}
	r.Issues = append(r.Issues, fr.Issues...)
	r.LinesSkipped += fr.LinesSkipped

	if fr.Skipped {
		r.FilesSkipped++
		return
	}

	r.FilesProcessed++
	r.LinesProcessed += fr.LinesProcessed
	r.Totals.VendorRevenue.Add(fr.Vendor, fr.Revenue)

	for id, qty := range fr.Quantities {
		sum, ok := addQuantity(r.Totals.ProductQuantity[id], qty)
		if !ok {
			issue := validation.FileIssue(validation.KindQuantityOverflow, fr.Path,
				"units for product %d overflow the run total; file contribution dropped", id)
			issue.Log(logger)
			r.Issues = append(r.Issues, issue)
			continue
		}
		r.Totals.ProductQuantity[id] = sum
	}

	logger.Debug("merged transaction file",
		"file", fr.Path,
		"vendor", fr.Vendor,
		"revenue", fr.Revenue.String(),
		"lines", fr.LinesProcessed)
}

// =============================================================================
// PER-FILE PROCESSING
// =============================================================================

// ProcessFile reduces a single transaction file. It never fails: problems
// are recorded as issues on the returned FileResult.
func (a *Aggregator) ProcessFile(path string) FileResult {
	fr := FileResult{
		Path:       path,
		Quantities: make(map[int]int64),
	}

	parser, err := csvparser.Open(path, a.Delimiter)
	if err != nil {
		return fr.skip(validation.FileIssue(validation.KindReadError, path, "%v", err))
	}
	defer parser.Close()

	// STEP 1: header line identifies the salesperson.
	if !parser.Next() {
		if err := parser.Err(); err != nil {
			return fr.skip(validation.FileIssue(validation.KindReadError, path, "%v", err))
		}
		return fr.skip(validation.FileIssue(validation.KindEmptyFile, path, "file has no header line"))
	}

	header := parser.Fields()
	if len(header) < headerFields {
		return fr.skip(validation.FileIssue(validation.KindBadHeader, path,
			"invalid header %q: expected docType%cdocNumber", parser.Line(), a.Delimiter))
	}

	docType := strings.TrimSpace(header[0])
	docNumber := strings.TrimSpace(header[1])
	vendor, ok := a.Salespeople.Resolve(docType, docNumber)
	if !ok {
		return fr.skip(validation.FileIssue(validation.KindOrphanFile, path,
			"no salesperson for document %s", types.IdentityKey(docType, docNumber)))
	}
	fr.Vendor = vendor

	// STEP 2: every following line is productId;quantitySold.
	for parser.Next() {
		if parser.Oversized() {
			fr.lineIssue(validation.LineIssue(validation.KindLongLine, path, parser.RowNumber(),
				"line longer than %d bytes", csvparser.MaxLineSize))
			continue
		}
		if parser.IsBlank() {
			continue
		}
		a.processLine(&fr, parser.RowNumber(), parser.Fields())
	}

	if err := parser.Err(); err != nil {
		return fr.skip(validation.FileIssue(validation.KindReadError, path, "%v", err))
	}

	return fr
}

// processLine applies one body line to the file subtotals.
func (a *Aggregator) processLine(fr *FileResult, row int, fields []string) {
	if len(fields) < lineFields {
		fr.lineIssue(validation.LineIssue(validation.KindShortLine, fr.Path, row,
			"expected productId%cquantity, got %d field(s)", a.Delimiter, len(fields)))
		return
	}

	productID, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		fr.lineIssue(validation.LineIssue(validation.KindBadNumber, fr.Path, row,
			"invalid product id %q", fields[0]))
		return
	}

	quantity, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
	if err != nil {
		fr.lineIssue(validation.LineIssue(validation.KindBadNumber, fr.Path, row,
			"invalid quantity %q", fields[1]))
		return
	}
	if quantity < 0 {
		fr.lineIssue(validation.LineIssue(validation.KindNegativeQuantity, fr.Path, row,
			"negative quantity %d for product %d", quantity, productID))
		return
	}

	sum, ok := addQuantity(fr.Quantities[productID], quantity)
	if !ok {
		fr.lineIssue(validation.LineIssue(validation.KindQuantityOverflow, fr.Path, row,
			"quantity %d overflows the total for product %d", quantity, productID))
		return
	}
	fr.Quantities[productID] = sum
	fr.LinesProcessed++

	price, ok := a.Products.Price(productID)
	if !ok {
		// Quantity is counted, revenue is not.
		fr.Issues = append(fr.Issues, validation.LineIssue(validation.KindUnknownProduct, fr.Path, row,
			"product %d not found; units counted without revenue", productID))
		return
	}

	fr.Revenue = fr.Revenue.Add(decimal.NewFromInt(price).Mul(decimal.NewFromInt(quantity)))
}

func (fr *FileResult) lineIssue(issue validation.Issue) {
	fr.Issues = append(fr.Issues, issue)
	fr.LinesSkipped++
}

// skip discards every subtotal and marks the file as skipped.
func (fr FileResult) skip(issue validation.Issue) FileResult {
	return FileResult{
		Path:         fr.Path,
		Skipped:      true,
		Quantities:   map[int]int64{},
		LinesSkipped: fr.LinesSkipped,
		Issues:       append(fr.Issues, issue),
	}
}

// addQuantity adds two non-negative quantities, reporting overflow.
func addQuantity(a, b int64) (int64, bool) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}
