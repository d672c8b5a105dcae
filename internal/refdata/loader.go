// =============================================================================
// Sales Report Generator - Reference Data Loader
// =============================================================================
//
// This module loads the two reference files every transaction is joined
// against:
//   1. Salespeople: docType;docNumber;firstName;lastName
//   2. Products:    productId;productName;unitPrice
//
// Reference data is trusted. A short line is skipped, but a numeric field
// that does not parse makes the whole load fail. Transaction data gets the
// opposite treatment in the aggregator package.
//
// =============================================================================

package refdata

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ginjaninja78/salesreport/internal/csvparser"
	"github.com/ginjaninja78/salesreport/internal/types"
)

const (
	salespersonFields = 4
	productFields     = 3
)

// Loader reads reference files with a fixed delimiter.
type Loader struct {
	Delimiter rune
	Logger    *slog.Logger
}

// NewLoader returns a Loader. A nil logger discards output.
func NewLoader(delimiter rune, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{Delimiter: delimiter, Logger: logger}
}

// ReferenceData is the output of Load.
type ReferenceData struct {
	Salespeople types.SalespersonLookup
	Products    *types.ProductLookup
}

// Load reads both reference files. Any error is fatal to the pipeline.
func (l *Loader) Load(salespeoplePath, productsPath string) (*ReferenceData, error) {
	salespeople, err := l.LoadSalespeople(salespeoplePath)
	if err != nil {
		return nil, err
	}

	products, err := l.LoadProducts(productsPath)
	if err != nil {
		return nil, err
	}

	return &ReferenceData{
		Salespeople: salespeople,
		Products:    products,
	}, nil
}

// =============================================================================
// SALESPEOPLE
// =============================================================================

// LoadSalespeople builds the identity key -> full name lookup. Lines with
// fewer than 4 fields are skipped silently. A duplicate key keeps the last
// occurrence.
func (l *Loader) LoadSalespeople(path string) (types.SalespersonLookup, error) {
	l.Logger.Info("loading salespeople", "file", path)

	parser, err := openReference(path, l.Delimiter)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	lookup := types.NewSalespersonLookup()

	for parser.Next() {
		fields := parser.Fields()
		if len(fields) < salespersonFields {
			continue
		}

		lookup.Add(types.SalespersonRecord{
			DocumentType:   strings.TrimSpace(fields[0]),
			DocumentNumber: strings.TrimSpace(fields[1]),
			FirstName:      fields[2],
			LastName:       fields[3],
		})
	}

	if err := parser.Err(); err != nil {
		return nil, fmt.Errorf("failed to read salespeople file %s: %w", path, err)
	}

	l.Logger.Info("loaded salespeople", "records", len(lookup))
	return lookup, nil
}

// =============================================================================
// PRODUCTS
// =============================================================================

// LoadProducts builds the product id -> price/name lookup. Lines with fewer
// than 3 fields are skipped. A product id or unit price that is not a
// non-negative integer is fatal.
func (l *Loader) LoadProducts(path string) (*types.ProductLookup, error) {
	l.Logger.Info("loading products", "file", path)

	parser, err := openReference(path, l.Delimiter)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	lookup := types.NewProductLookup()

	for parser.Next() {
		fields := parser.Fields()
		if len(fields) < productFields {
			if !parser.IsBlank() {
				l.Logger.Debug("skipping short product line", "file", path, "line", parser.RowNumber())
			}
			continue
		}

		record, err := parseProduct(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", types.ErrMalformedReference, path, parser.RowNumber(), err)
		}

		lookup.Add(record)
	}

	if err := parser.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products file %s: %w", path, err)
	}

	l.Logger.Info("loaded products", "records", lookup.Len())
	return lookup, nil
}

func parseProduct(fields []string) (types.ProductRecord, error) {
	id, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return types.ProductRecord{}, fmt.Errorf("invalid product id %q", fields[0])
	}

	price, err := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
	if err != nil {
		return types.ProductRecord{}, fmt.Errorf("invalid unit price %q", fields[2])
	}
	if price < 0 {
		return types.ProductRecord{}, fmt.Errorf("negative unit price %d", price)
	}

	return types.ProductRecord{
		ProductID: id,
		Name:      fields[1],
		UnitPrice: price,
	}, nil
}

// openReference maps a missing file to ErrReferenceFileMissing.
func openReference(path string, delimiter rune) (*csvparser.StreamingParser, error) {
	parser, err := csvparser.Open(path, delimiter)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", types.ErrReferenceFileMissing, path)
		}
		return nil, fmt.Errorf("failed to open reference file %s: %w", path, err)
	}
	return parser, nil
}
