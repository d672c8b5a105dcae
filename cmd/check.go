package cmd

import (
	"github.com/spf13/cobra"
)

var checkFlags inputFlags

// checkCmd loads and aggregates without writing anything.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the input files without writing reports",
	Long: `The check command runs the same load and aggregation as 'report' and
prints file, line and issue counts followed by every skipped line or file.
No file is written. The exit status is non-zero only for conditions that
would stop 'report' (missing or malformed reference data, missing
transactions directory).`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, &checkFlags, true)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkFlags.register(checkCmd.Flags())
}
