// =============================================================================
// EDI JSON Consolidator - Validate Command
// =============================================================================
//
// The 'validate' command runs the full consolidation pipeline over the inputs
// without writing anything, and exits non-zero when any file would fail.
// Useful as a pre-flight check before a scheduled run.
//
// COMMAND USAGE:
//   edi-consolidator validate [--file path ...]
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateFiles []string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that every input can be consolidated, without writing output",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := runProcess(cmd.Context(), appConfig, processRequest{
			Files:  validateFiles,
			DryRun: true,
		}, cmd.OutOrStdout(), logger)
		if err != nil {
			return err
		}
		return validationError(report)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringSliceVarP(
		&validateFiles,
		"file",
		"f",
		nil,
		"File to validate instead of scanning input_dir (repeatable)",
	)
}

// validationError reports failed inputs as a command error.
func validationError(report *processReport) error {
	if report == nil || len(report.Run.Errors) == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d file(s) failed validation", len(report.Run.Errors), len(report.Run.Files))
}
