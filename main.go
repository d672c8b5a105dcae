// =============================================================================
// Sales Report Generator - Main Entry Point
// =============================================================================
//
// USAGE:
//   salesreport report      - Aggregate transactions and write both reports
//   salesreport check       - Validate the inputs without writing anything
//   salesreport version     - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Loader, aggregator, report generator, pipeline
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/salesreport/cmd"
)

func main() {
	cmd.Execute()
}
