// =============================================================================
// Sales Report Generator - Report Command
// =============================================================================
//
// This file defines the 'report' command, which runs the full pipeline:
// load reference data, aggregate every transaction file, and write the
// vendor and product reports.
//
// COMMAND USAGE:
//   salesreport report [flags]
//
// FLAGS (override the configuration file and environment):
//   --salespeople   : Salespeople reference file
//   --products      : Products reference file
//   --transactions  : Directory of sales_*.csv transaction files
//   --output        : Output directory
//   --xlsx          : Also write an XLSX workbook with both reports
//   --concurrency   : Maximum number of files processed at once
//
// =============================================================================

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ginjaninja78/salesreport/internal/config"
	"github.com/ginjaninja78/salesreport/internal/pipeline"
)

// inputFlags holds the per-run overrides shared by 'report' and 'check'.
type inputFlags struct {
	salespeople  string
	products     string
	transactions string
	output       string
	xlsx         string
	concurrency  int
}

var reportFlags inputFlags

// reportCmd represents the 'report' command.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the vendor revenue and product sales reports",
	Long: `The report command loads the salespeople and products files, aggregates
every transaction file in the transactions directory, and writes:

  - sales_report.csv     fullName;revenue          (revenue descending)
  - products_report.csv  productName;unitsSold     (units descending)

Reports are written to temporary files and renamed into place only when all
of them rendered successfully. Skipped lines and files are listed in an
issues_<timestamp>.txt log in the output directory.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, &reportFlags, false)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportFlags.register(reportCmd.Flags())
}

// register adds the input flags to a command's flag set.
func (f *inputFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.salespeople, "salespeople", "", "Salespeople reference file")
	flags.StringVar(&f.products, "products", "", "Products reference file")
	flags.StringVar(&f.transactions, "transactions", "", "Directory of transaction files")
	flags.StringVar(&f.output, "output", "", "Output directory")
	flags.StringVar(&f.xlsx, "xlsx", "", "Also write both reports to this XLSX workbook")
	flags.IntVar(&f.concurrency, "concurrency", 0, "Maximum number of files processed at once")
}

// apply copies the flags that were set on the command line.
func (f *inputFlags) apply(flags *pflag.FlagSet, mainConfig *config.MainConfig) error {
	if flags.Changed("salespeople") {
		mainConfig.SalespeopleFile = f.salespeople
	}
	if flags.Changed("products") {
		mainConfig.ProductsFile = f.products
	}
	if flags.Changed("transactions") {
		mainConfig.TransactionsDir = f.transactions
	}
	if flags.Changed("output") {
		mainConfig.OutputDir = f.output
	}
	if flags.Changed("xlsx") {
		mainConfig.XLSXReport = f.xlsx
	}
	if flags.Changed("concurrency") {
		mainConfig.MaxConcurrency = f.concurrency
	}
	return mainConfig.Validate()
}

// runPipeline loads the configuration and runs the pipeline.
func runPipeline(cmd *cobra.Command, f *inputFlags, checkOnly bool) error {
	mainConfig, err := loadConfig()
	if err != nil {
		return err
	}
	if err := f.apply(cmd.Flags(), mainConfig); err != nil {
		return err
	}

	logger, err := newLogger(cmd, mainConfig)
	if err != nil {
		return err
	}

	_, err = pipeline.Run(cmd.Context(), pipeline.Options{
		Config:    mainConfig,
		Logger:    logger,
		Stdout:    cmd.OutOrStdout(),
		CheckOnly: checkOnly,
	})
	return err
}
