// =============================================================================
// Sales Report Generator - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration.
//
// PRECEDENCE (lowest to highest):
//   1. Built-in defaults
//   2. YAML config file (salesreport.yaml by default)
//   3. .env file in the working directory and SALESREPORT_* environment
//      variables
//   4. Command-line flags (applied by the cmd package)
//
// The default config file is optional. A config file named explicitly on
// the command line must exist.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when --config is not given.
const DefaultConfigFile = "salesreport.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SALESREPORT_"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// INPUT SETTINGS
	// =========================================================================

	// SalespeopleFile holds docType;docNumber;firstName;lastName records.
	// Default: "data/input/salespeople.csv"
	SalespeopleFile string `yaml:"salespeople_file"`

	// ProductsFile holds productId;productName;unitPrice records.
	// Default: "data/input/products.csv"
	ProductsFile string `yaml:"products_file"`

	// TransactionsDir is scanned for per-salesperson sales files.
	// Default: "data/input/salespeople"
	TransactionsDir string `yaml:"transactions_dir"`

	// TransactionPrefix and TransactionSuffix select transaction files.
	// Default: "sales_" and ".csv"
	TransactionPrefix string `yaml:"transaction_prefix"`
	TransactionSuffix string `yaml:"transaction_suffix"`

	// Delimiter separates fields in every input and output file.
	// Must be exactly one character.
	// Default: ";"
	Delimiter string `yaml:"delimiter"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputDir receives the reports and logs. Created if absent.
	// Default: "data/output"
	OutputDir string `yaml:"output_dir"`

	// VendorReport and ProductReport are file names inside OutputDir, or
	// paths when they contain a directory.
	// Default: "sales_report.csv" and "products_report.csv"
	VendorReport  string `yaml:"vendor_report"`
	ProductReport string `yaml:"product_report"`

	// XLSXReport, when set, also writes both reports as a workbook.
	// Default: "" (disabled)
	XLSXReport string `yaml:"xlsx_report"`

	// IssueLog writes issues_<timestamp>_<run>.txt when any line or file was
	// skipped. Default: true
	IssueLog *bool `yaml:"issue_log"`

	// SummaryLog writes run_summary_<timestamp>_<run>.txt after every run.
	// Default: false
	SummaryLog bool `yaml:"summary_log"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of transaction files processed
	// at once. Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel: "debug", "info", "warn" (or "warning"), "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat: "text" or "json". Default: "text"
	LogFormat string `yaml:"log_format"`
}

// DelimiterRune returns the delimiter as a rune. Only valid after Validate.
func (c *MainConfig) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// WriteIssueLog reports whether the issue log is enabled.
func (c *MainConfig) WriteIssueLog() bool {
	return c.IssueLog == nil || *c.IssueLog
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	config := &MainConfig{}
	applyDefaults(config)
	return config
}

// Load builds the configuration from the YAML file and the environment.
//
// PARAMETERS:
//   - configPath: path to the YAML file.
//   - required: when false, a missing file falls back to defaults.
//
// RETURNS:
//   - The validated configuration.
//   - An error if the file cannot be read or parsed, or a value is invalid.
func Load(configPath string, required bool) (*MainConfig, error) {
	config := &MainConfig{}

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !required:
		// Defaults only.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := applyEnv(config, os.LookupEnv); err != nil {
		return nil, err
	}

	applyDefaults(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// loadDotEnv loads a .env file into the process environment without
// overriding variables that are already set.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays SALESREPORT_* variables.
func applyEnv(config *MainConfig, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"SALESPEOPLE_FILE":   &config.SalespeopleFile,
		"PRODUCTS_FILE":      &config.ProductsFile,
		"TRANSACTIONS_DIR":   &config.TransactionsDir,
		"TRANSACTION_PREFIX": &config.TransactionPrefix,
		"TRANSACTION_SUFFIX": &config.TransactionSuffix,
		"DELIMITER":          &config.Delimiter,
		"OUTPUT_DIR":         &config.OutputDir,
		"VENDOR_REPORT":      &config.VendorReport,
		"PRODUCT_REPORT":     &config.ProductReport,
		"XLSX_REPORT":        &config.XLSXReport,
		"LOG_LEVEL":          &config.LogLevel,
		"LOG_FORMAT":         &config.LogFormat,
	}
	for key, field := range strs {
		if value, ok := lookup(EnvPrefix + key); ok {
			*field = value
		}
	}

	if value, ok := lookup(EnvPrefix + "MAX_CONCURRENCY"); ok {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %sMAX_CONCURRENCY=%q is not an integer", ErrInvalidConfig, EnvPrefix, value)
		}
		config.MaxConcurrency = n
	}

	bools := map[string]func(bool){
		"ISSUE_LOG":   func(b bool) { config.IssueLog = &b },
		"SUMMARY_LOG": func(b bool) { config.SummaryLog = b },
	}
	for key, set := range bools {
		value, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not a boolean", ErrInvalidConfig, EnvPrefix, key, value)
		}
		set(b)
	}

	return nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(config *MainConfig) {
	if config.SalespeopleFile == "" {
		config.SalespeopleFile = "data/input/salespeople.csv"
	}
	if config.ProductsFile == "" {
		config.ProductsFile = "data/input/products.csv"
	}
	if config.TransactionsDir == "" {
		config.TransactionsDir = "data/input/salespeople"
	}
	if config.TransactionPrefix == "" {
		config.TransactionPrefix = "sales_"
	}
	if config.TransactionSuffix == "" {
		config.TransactionSuffix = ".csv"
	}
	if config.Delimiter == "" {
		config.Delimiter = ";"
	}
	if config.OutputDir == "" {
		config.OutputDir = "data/output"
	}
	if config.VendorReport == "" {
		config.VendorReport = "sales_report.csv"
	}
	if config.ProductReport == "" {
		config.ProductReport = "products_report.csv"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}
}

// Validate checks values that would otherwise fail late.
func (c *MainConfig) Validate() error {
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return fmt.Errorf("%w: delimiter %q must be a single character", ErrInvalidConfig, c.Delimiter)
	}
	if strings.ContainsAny(c.Delimiter, "\r\n") {
		return fmt.Errorf("%w: delimiter cannot be a line break", ErrInvalidConfig)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("%w: max_concurrency must be at least 1, got %d", ErrInvalidConfig, c.MaxConcurrency)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}

	if c.VendorReport == c.ProductReport {
		return fmt.Errorf("%w: vendor_report and product_report must differ", ErrInvalidConfig)
	}

	return nil
}
