// =============================================================================
// EDI JSON Consolidator - Process Command
// =============================================================================
//
// This file defines the 'process' command, which consolidates a set of EDI
// JSON extracts into one table and writes it out.
//
// COMMAND USAGE:
//   edi-consolidator process [flags]
//
// FLAGS:
//   --file, -f    : Process these files instead of scanning input_dir (repeatable)
//   --output-dir  : Override output_dir
//   --xlsx        : Also write an XLSX workbook
//   --dry-run     : Consolidate without writing any output
//
// PROCESSING PIPELINE:
//   1. Discover JSON files in the input directory (sorted by name)
//   2. Parse and flatten the files concurrently (max_concurrency workers)
//   3. Append the rows to the table in input order
//   4. Write the CSV (and optionally the XLSX)
//   5. Write the error log and the run summary
//   6. Archive inputs that were processed without error (archive_inputs)
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/edi-json-consolidator/internal/config"
	"github.com/ginjaninja78/edi-json-consolidator/internal/converter"
	"github.com/ginjaninja78/edi-json-consolidator/internal/csvwriter"
	"github.com/ginjaninja78/edi-json-consolidator/internal/xlsxwriter"
	"github.com/ginjaninja78/edi-json-consolidator/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun consolidates without writing output files.
var dryRun bool

// filePaths are explicit inputs; when empty, input_dir is scanned.
var filePaths []string

// outputDir overrides the configured output directory.
var outputDir string

// writeXLSX forces the XLSX output on.
var writeXLSX bool

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Consolidate EDI JSON files into one CSV",
	Long: `The process command reads every EDI JSON extract in the input directory (or
the files given with --file), flattens the record array of each file and writes
one consolidated CSV to the output directory.

Each file is processed independently; a file that cannot be read, parsed or
flattened is reported and contributes no rows, while the rest of the run
continues.

On completion:
  - The consolidated CSV (and optional XLSX) is placed in the output directory
  - An error log is written when any file failed
  - A YAML run summary is written
  - Successfully processed inputs are archived when archive_inputs is set`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *appConfig
		if outputDir != "" {
			cfg.OutputDir = outputDir
		}
		if writeXLSX {
			cfg.WriteXLSX = true
		}

		_, err := runProcess(cmd.Context(), &cfg, processRequest{
			Files:  filePaths,
			DryRun: dryRun,
		}, cmd.OutOrStdout(), logger)
		return err
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Consolidate without writing output files",
	)

	processCmd.Flags().StringSliceVarP(
		&filePaths,
		"file",
		"f",
		nil,
		"File to process instead of scanning input_dir (repeatable)",
	)

	processCmd.Flags().StringVar(
		&outputDir,
		"output-dir",
		"",
		"Directory for the consolidated output (overrides output_dir)",
	)

	processCmd.Flags().BoolVar(
		&writeXLSX,
		"xlsx",
		false,
		"Also write an XLSX workbook next to the CSV",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// processRequest selects the inputs and output behaviour of one run.
type processRequest struct {
	Files  []string
	DryRun bool
}

// processReport is what a run produced.
type processReport struct {
	Run      *converter.RunResult
	CSVPath  string
	XLSXPath string
	ErrorLog string
	Summary  string
	Archived map[string]string
}

// runProcess is the main function that orchestrates a consolidation run. It
// returns a nil report and nil error when there is nothing to process.
func runProcess(ctx context.Context, cfg *config.Config, req processRequest, out io.Writer, log *slog.Logger) (*processReport, error) {
	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir)
	fm.UseTimestampSubdirs = cfg.ArchiveDateSubdirs

	// =========================================================================
	// STEP 1: DISCOVER INPUT FILES
	// =========================================================================

	fmt.Fprintln(out, "=== EDI JSON Consolidator ===")

	paths := req.Files
	if len(paths) == 0 {
		discovered, err := fm.DiscoverInputFiles(cfg.InputPattern)
		if err != nil {
			return nil, fmt.Errorf("failed to discover input files: %w", err)
		}
		paths = discovered
	}

	if len(paths) == 0 {
		fmt.Fprintln(out, "No JSON files found in the input directory.")
		return nil, nil
	}

	fmt.Fprintf(out, "Found %d file(s) to process\n", len(paths))

	inputs := make([]converter.Input, len(paths))
	for i, p := range paths {
		inputs[i] = converter.FileInput(p)
	}

	// =========================================================================
	// STEP 2: CONSOLIDATE
	// =========================================================================

	conv := converter.New(converter.Options{
		RecordKey:   cfg.RecordKey,
		MetaPaths:   cfg.Paths(),
		MaxFileSize: cfg.MaxFileSize(),
	}, log)
	cons := converter.NewConsolidator(conv, cfg.MaxConcurrency, log)

	run, err := cons.Run(ctx, inputs)
	if err != nil {
		return nil, err
	}

	errIdx := 0
	for _, f := range run.Files {
		if f.Failed {
			fmt.Fprintf(out, "  ✗ %s: %s\n", f.Name, run.Errors[errIdx].Message)
			errIdx++
			continue
		}
		fmt.Fprintf(out, "  ✓ %s (%d record(s))\n", f.Name, f.Rows)
	}

	report := &processReport{Run: run}

	// =========================================================================
	// STEP 3: WRITE OUTPUTS
	// =========================================================================

	if req.DryRun {
		fmt.Fprintln(out, "\nDry run: no files written.")
	} else if err := writeOutputs(cfg, fm, run, report, log); err != nil {
		return report, err
	}

	// =========================================================================
	// STEP 4: PRINT SUMMARY
	// =========================================================================

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", len(run.Files))
	fmt.Fprintf(out, "Successful:      %d\n", run.Processed())
	fmt.Fprintf(out, "Errors:          %d\n", len(run.Errors))
	fmt.Fprintf(out, "Records:         %d\n", run.TotalRows())
	fmt.Fprintf(out, "Columns:         %d\n", len(run.Table.Columns()))
	fmt.Fprintf(out, "Time elapsed:    %s\n", run.EndTime.Sub(run.StartTime))
	if report.CSVPath != "" {
		fmt.Fprintf(out, "Output:          %s\n", report.CSVPath)
	}
	if report.ErrorLog != "" {
		fmt.Fprintf(out, "Error log:       %s\n", report.ErrorLog)
	}
	fmt.Fprintln(out, run.Summary())

	return report, nil
}

// writeOutputs writes the table, logs and summary, then archives inputs.
func writeOutputs(cfg *config.Config, fm *utils.FileManager, run *converter.RunResult, report *processReport, log *slog.Logger) error {
	if err := fm.EnsureOutputDir(); err != nil {
		return err
	}

	name := utils.GenerateOutputFileName(cfg.OutputFileName, run.StartTime, map[string]string{"uuid": run.RunID})
	report.CSVPath = filepath.Join(cfg.OutputDir, name)

	err := utils.WriteFileAtomic(report.CSVPath, func(w io.Writer) error {
		return csvwriter.Write(w, run.Table, cfg.CSVOptions())
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", report.CSVPath, err)
	}
	log.Info("csv written", "run_id", run.RunID, "path", report.CSVPath, "rows", run.TotalRows())

	if cfg.WriteXLSX {
		report.XLSXPath = utils.ReplaceExt(report.CSVPath, ".xlsx")
		err := utils.WriteFileAtomic(report.XLSXPath, func(w io.Writer) error {
			return xlsxwriter.Write(w, run.Table, xlsxwriter.Options{SheetName: cfg.XLSXSheetName, BoldHeader: true})
		})
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", report.XLSXPath, err)
		}
		log.Info("xlsx written", "run_id", run.RunID, "path", report.XLSXPath)
	}

	entries := make([]utils.ErrorLogEntry, len(run.Errors))
	for i, pe := range run.Errors {
		entries[i] = utils.ErrorLogEntry{FileName: pe.FileName, ErrorType: string(pe.Kind), ErrorMessage: pe.Message}
	}
	errorLog, err := fm.WriteErrorLog(entries)
	if err != nil {
		return err
	}
	report.ErrorLog = errorLog

	if cfg.ArchiveInputs {
		report.Archived = make(map[string]string)
		for _, f := range run.Files {
			if f.Failed || f.Path == "" {
				continue
			}
			dst, err := fm.ArchiveInputFile(f.Path)
			if err != nil {
				// Archival failures do not fail the run.
				log.Warn("failed to archive input", "run_id", run.RunID, "file", f.Name, "error", err)
				continue
			}
			report.Archived[f.Path] = dst
		}
	}

	summaryPath, err := fm.WriteSummaryLog(buildSummary(run, report))
	if err != nil {
		return err
	}
	report.Summary = summaryPath
	return nil
}

// buildSummary converts a run into the summary written next to the outputs.
func buildSummary(run *converter.RunResult, report *processReport) utils.ProcessingSummary {
	summary := utils.ProcessingSummary{
		RunID:           run.RunID,
		StartTime:       run.StartTime,
		EndTime:         run.EndTime,
		Duration:        run.EndTime.Sub(run.StartTime).String(),
		TotalFiles:      len(run.Files),
		SuccessfulFiles: run.Processed(),
		FailedFiles:     len(run.Errors),
		TotalRows:       run.TotalRows(),
		Columns:         run.Table.Columns(),
	}
	for _, p := range []string{report.CSVPath, report.XLSXPath, report.ErrorLog} {
		if p != "" {
			summary.Outputs = append(summary.Outputs, p)
		}
	}

	for _, f := range run.Files {
		if f.Failed {
			continue
		}
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:   f.Name,
			ArchivePath: report.Archived[f.Path],
			Rows:        f.Rows,
			Skipped:     f.Skipped,
			ProcessTime: f.Duration.String(),
		})
	}
	for _, pe := range run.Errors {
		summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
			InputFile:    pe.FileName,
			ErrorType:    string(pe.Kind),
			ErrorMessage: pe.Message,
		})
	}
	return summary
}
