// =============================================================================
// Sales Report Generator - Shared Types
// =============================================================================
//
// This package contains the data model shared by the loader, the aggregator,
// the report generator and the pipeline driver. Keeping these types in one
// leaf package avoids import cycles between:
//   - refdata
//   - aggregator
//   - report
//   - pipeline
//
// LIFECYCLE:
//   Lookups are built once by the reference data loader and are read-only
//   afterwards. Totals are created empty at pipeline start, filled during
//   aggregation, and read-only during report generation.
//
// =============================================================================

package types

import (
	"errors"
	"strconv"

	"github.com/shopspring/decimal"
)

// =============================================================================
// FATAL ERROR SENTINELS
// =============================================================================
// Fatal conditions abort the pipeline before any report is written.
// Callers wrap these with context and test for them with errors.Is.

var (
	// ErrReferenceFileMissing is returned when the salespeople or products
	// file does not exist.
	ErrReferenceFileMissing = errors.New("reference data file not found")

	// ErrMalformedReference is returned when a numeric field in the products
	// file cannot be parsed or is negative.
	ErrMalformedReference = errors.New("malformed reference data")

	// ErrTransactionDirMissing is returned when the transactions directory
	// does not exist or is not a directory.
	ErrTransactionDirMissing = errors.New("transactions directory not found")

	// ErrNoTransactionFiles is returned when the transactions directory
	// contains no file matching the naming convention.
	ErrNoTransactionFiles = errors.New("no transaction files found")
)

// =============================================================================
// REFERENCE RECORDS
// =============================================================================

// SalespersonRecord is one line of the salespeople file.
type SalespersonRecord struct {
	DocumentType   string
	DocumentNumber string
	FirstName      string
	LastName       string
}

// Key returns the identity key used to join transaction files.
func (r SalespersonRecord) Key() string {
	return IdentityKey(r.DocumentType, r.DocumentNumber)
}

// FullName returns "first last".
func (r SalespersonRecord) FullName() string {
	return r.FirstName + " " + r.LastName
}

// IdentityKey concatenates a document type and number with an underscore.
func IdentityKey(documentType, documentNumber string) string {
	return documentType + "_" + documentNumber
}

// ProductRecord is one line of the products file.
type ProductRecord struct {
	ProductID int
	Name      string
	UnitPrice int64
}

// =============================================================================
// LOOKUPS
// =============================================================================

// SalespersonLookup maps identity key to full name.
type SalespersonLookup map[string]string

// NewSalespersonLookup returns an empty lookup.
func NewSalespersonLookup() SalespersonLookup {
	return make(SalespersonLookup)
}

// Add stores a record. A later record with the same key replaces the earlier one.
func (l SalespersonLookup) Add(r SalespersonRecord) {
	l[r.Key()] = r.FullName()
}

// Resolve returns the full name for a document type and number.
func (l SalespersonLookup) Resolve(documentType, documentNumber string) (string, bool) {
	name, ok := l[IdentityKey(documentType, documentNumber)]
	return name, ok
}

// ProductLookup holds two maps keyed by product id: price and name.
type ProductLookup struct {
	prices map[int]int64
	names  map[int]string
}

// NewProductLookup returns an empty lookup.
func NewProductLookup() *ProductLookup {
	return &ProductLookup{
		prices: make(map[int]int64),
		names:  make(map[int]string),
	}
}

// Add stores a record. Last write wins on a duplicate product id.
func (l *ProductLookup) Add(r ProductRecord) {
	l.prices[r.ProductID] = r.UnitPrice
	l.names[r.ProductID] = r.Name
}

// Price returns the unit price for a product id.
func (l *ProductLookup) Price(id int) (int64, bool) {
	p, ok := l.prices[id]
	return p, ok
}

// Name returns the product name, or the stringified id when the product is
// unknown.
func (l *ProductLookup) Name(id int) string {
	if name, ok := l.names[id]; ok {
		return name
	}
	return strconv.Itoa(id)
}

// Len returns the number of distinct product ids.
func (l *ProductLookup) Len() int {
	return len(l.prices)
}

// =============================================================================
// ACCUMULATED TOTALS
// =============================================================================

// VendorRevenueTotals maps a vendor's full name to accumulated revenue.
type VendorRevenueTotals map[string]decimal.Decimal

// Add accumulates revenue for a vendor.
func (t VendorRevenueTotals) Add(vendor string, amount decimal.Decimal) {
	t[vendor] = t[vendor].Add(amount)
}

// ProductQuantityTotals maps a product id to accumulated units sold.
type ProductQuantityTotals map[int]int64

// Totals groups both accumulators so they travel together through the
// pipeline.
type Totals struct {
	VendorRevenue   VendorRevenueTotals
	ProductQuantity ProductQuantityTotals
}

// NewTotals returns empty totals.
func NewTotals() *Totals {
	return &Totals{
		VendorRevenue:   make(VendorRevenueTotals),
		ProductQuantity: make(ProductQuantityTotals),
	}
}
