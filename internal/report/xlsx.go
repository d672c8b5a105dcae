package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet names in the exported workbook.
const (
	VendorSheet  = "Vendors"
	ProductSheet = "Products"
)

// WriteXLSX writes both reports as a workbook with one sheet each. Revenue
// cells are numeric when the rounded value fits in an int64.
func (r *Report) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", VendorSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(ProductSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	vendorRows := [][]any{{"Salesperson", "Revenue"}}
	for _, row := range r.Vendors {
		vendorRows = append(vendorRows, []any{row.Name, revenueCell(row)})
	}

	productRows := [][]any{{"Product", "Units Sold"}}
	for _, row := range r.Products {
		productRows = append(productRows, []any{row.Name, row.Quantity})
	}

	if err := writeSheet(f, VendorSheet, vendorRows); err != nil {
		return err
	}
	if err := writeSheet(f, ProductSheet, productRows); err != nil {
		return err
	}

	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func revenueCell(row VendorRow) any {
	rounded := row.Revenue.Round(0).BigInt()
	if rounded.IsInt64() {
		return rounded.Int64()
	}
	return FormatRevenue(row.Revenue)
}

func writeSheet(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", header); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	if err := f.SetColWidth(sheet, "A", "A", 32); err != nil {
		return fmt.Errorf("failed to size %s columns: %w", sheet, err)
	}
	return f.SetColWidth(sheet, "B", "B", 14)
}
