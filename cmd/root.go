// =============================================================================
// Sales Report Generator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (salesreport)
//   ├── reportCmd  (salesreport report)
//   ├── checkCmd   (salesreport check)
//   └── versionCmd (salesreport version)
//
// The root command owns the flags shared by every subcommand and the
// helpers that turn them into a validated configuration and a logger.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/salesreport/internal/config"
	"github.com/ginjaninja78/salesreport/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file. Empty means
// salesreport.yaml when present, built-in defaults otherwise.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// logFormat overrides log_format from the configuration.
var logFormat string

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "salesreport",
	Short: "Sales Report Generator - Revenue per salesperson and units per product",
	Long: `Sales Report Generator reads a salespeople file, a products file and one
transaction file per salesperson, and produces two reports:

  - Total revenue per salesperson, highest first
  - Total units sold per product, highest first

Malformed transaction lines and files are skipped with a warning. Missing or
malformed reference data stops the run before any report is written.

Example Usage:
  salesreport report                         # Use salesreport.yaml or defaults
  salesreport report --config ./my.yaml      # Use a custom configuration file
  salesreport report --xlsx reports.xlsx     # Also write an Excel workbook
  salesreport check                          # Report problems, write nothing`,

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command and exits with status 1 on error. It is
// called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the configuration file (default is "+config.DefaultConfigFile+" if present)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)

	rootCmd.PersistentFlags().StringVar(
		&logFormat,
		"log-format",
		"",
		"Log format: text or json (overrides log_format)",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadConfig reads the configuration file named by --config, or the default
// file when it exists, then applies the persistent flags.
func loadConfig() (*config.MainConfig, error) {
	path, required := cfgFile, true
	if path == "" {
		path, required = config.DefaultConfigFile, false
	}

	mainConfig, err := config.Load(path, required)
	if err != nil {
		return nil, err
	}

	if verbose {
		mainConfig.LogLevel = "debug"
	}
	if logFormat != "" {
		mainConfig.LogFormat = logFormat
	}

	return mainConfig, nil
}

// newLogger builds the diagnostics logger on the command's error stream.
func newLogger(cmd *cobra.Command, mainConfig *config.MainConfig) (*slog.Logger, error) {
	logger, err := logging.New(mainConfig.LogLevel, mainConfig.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	return logger, nil
}
