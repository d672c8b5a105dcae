// =============================================================================
// Sales Report Generator - Report Generator
// =============================================================================
//
// This module turns the accumulated totals into two ordered reports:
//
//   | Report  | Row                         | Order                          |
//   |---------|-----------------------------|--------------------------------|
//   | vendor  | fullName;revenue            | revenue desc, then name asc    |
//   | product | productName;totalQuantity   | quantity desc, then name asc,  |
//   |         |                             | then product id asc            |
//
// Revenue is rendered with zero decimal places, rounded half away from zero.
// A product id missing from the product lookup is reported under its
// numeric id.
//
// OUTPUTS:
//   - Delimited text (one record per line)
//   - Console summary for the operator
//   - Optional XLSX workbook (see xlsx.go)
//
// =============================================================================

package report

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/salesreport/internal/csvparser"
	"github.com/ginjaninja78/salesreport/internal/types"
)

// =============================================================================
// REPORT STRUCTURES
// =============================================================================

// VendorRow is one line of the vendor report.
type VendorRow struct {
	Name    string
	Revenue decimal.Decimal
}

// ProductRow is one line of the product report.
type ProductRow struct {
	ProductID int
	Name      string
	Quantity  int64
}

// Report holds both sorted reports.
type Report struct {
	Vendors  []VendorRow
	Products []ProductRow
}

// =============================================================================
// BUILDING
// =============================================================================

// Build sorts the totals into a Report. The totals are only read.
func Build(totals *types.Totals, products *types.ProductLookup) *Report {
	vendors := make([]VendorRow, 0, len(totals.VendorRevenue))
	for name, revenue := range totals.VendorRevenue {
		vendors = append(vendors, VendorRow{Name: name, Revenue: revenue})
	}
	SortVendors(vendors)

	rows := make([]ProductRow, 0, len(totals.ProductQuantity))
	for id, qty := range totals.ProductQuantity {
		rows = append(rows, ProductRow{ProductID: id, Name: products.Name(id), Quantity: qty})
	}
	SortProducts(rows)

	return &Report{Vendors: vendors, Products: rows}
}

// SortVendors orders by revenue descending, ties by name ascending.
func SortVendors(rows []VendorRow) {
	slices.SortFunc(rows, func(a, b VendorRow) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}

// SortProducts orders by quantity descending, ties by name then id
// ascending.
func SortProducts(rows []ProductRow) {
	slices.SortFunc(rows, func(a, b ProductRow) int {
		if c := cmp.Compare(b.Quantity, a.Quantity); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
}

// FormatRevenue renders revenue with zero decimal places.
func FormatRevenue(revenue decimal.Decimal) string {
	return revenue.StringFixed(0)
}

// =============================================================================
// DELIMITED OUTPUT
// =============================================================================

// WriteVendors writes "fullName;revenue" lines.
func (r *Report) WriteVendors(w io.Writer, delimiter rune) error {
	for _, row := range r.Vendors {
		if _, err := fmt.Fprintln(w, csvparser.JoinFields(delimiter, row.Name, FormatRevenue(row.Revenue))); err != nil {
			return err
		}
	}
	return nil
}

// WriteProducts writes "productName;totalQuantity" lines.
func (r *Report) WriteProducts(w io.Writer, delimiter rune) error {
	for _, row := range r.Products {
		if _, err := fmt.Fprintln(w, csvparser.JoinFields(delimiter, row.Name, strconv.FormatInt(row.Quantity, 10))); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// CONSOLE SUMMARY
// =============================================================================

// WriteSummary prints both reports for the operator.
func (r *Report) WriteSummary(w io.Writer) error {
	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	printf("\n=== VENDOR REVENUE REPORT ===\n")
	for _, row := range r.Vendors {
		printf("%s: $%s\n", row.Name, humanize.BigComma(row.Revenue.Round(0).BigInt()))
	}

	printf("\n=== PRODUCT SALES REPORT ===\n")
	for _, row := range r.Products {
		printf("%s: %s units\n", row.Name, humanize.Comma(row.Quantity))
	}

	return err
}
