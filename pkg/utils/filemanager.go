// =============================================================================
// EDI JSON Consolidator - File Manager Utility
// =============================================================================
//
// This module provides the filesystem side of a consolidation run:
//   - Input discovery (sorted, so runs are reproducible)
//   - Directory management
//   - Output file naming
//   - Input archival after a file contributed rows
//   - Error log and run summary generation
//
// ARCHIVAL STRATEGY:
//   - Inputs are moved to the input archive only when archival is enabled
//     and the file was processed without error
//   - Failed inputs stay where they are so they can be fixed and re-run
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for a run.
type FileManager struct {
	// InputDir is scanned for input documents.
	InputDir string

	// OutputDir receives the consolidated outputs and logs.
	OutputDir string

	// InputArchiveDir receives processed inputs.
	InputArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: input_archive/2024/01/15/file.json
	UseTimestampSubdirs bool

	// now is replaceable in tests.
	now func() time.Time
}

// NewFileManager creates a FileManager for the given directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:        inputDir,
		OutputDir:       outputDir,
		InputArchiveDir: inputArchiveDir,
		now:             time.Now,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureOutputDir creates the output directory if it does not exist.
func (fm *FileManager) EnsureOutputDir() error {
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles returns the files in InputDir matching pattern, sorted by
// name. The match is case-insensitive on the extension so "EDI.JSON" is found
// by "*.json".
//
// PARAMETERS:
//   - pattern: A glob such as "*.json". Defaults to "*.json".
//
// RETURNS:
//   - The matching file paths.
//   - An error if the directory cannot be read or the pattern is invalid.
func (fm *FileManager) DiscoverInputFiles(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*.json"
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid input pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	lowerPattern := strings.ToLower(pattern)
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		exact, _ := filepath.Match(pattern, name)
		folded, _ := filepath.Match(lowerPattern, strings.ToLower(name))
		if exact || folded {
			files = append(files, filepath.Join(fm.InputDir, name))
		}
	}

	sort.Strings(files)
	return files, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file into InputArchiveDir.
//
// RETURNS:
//   - The path to the archived file.
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	archivePath := fm.getArchivePath(filePath)

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// If rename fails (e.g., cross-device), copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

func (fm *FileManager) getArchivePath(filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		now := fm.now()
		return filepath.Join(
			fm.InputArchiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName,
		)
	}

	return filepath.Join(fm.InputArchiveDir, fileName)
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName expands placeholders in format.
//
// PARAMETERS:
//   - format: The file name template. Placeholders:
//       {uuid}      - params["uuid"], or a fresh random UUID
//       {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//       {date}      - Current date (YYYYMMDD)
//       {time}      - Current time (HHMMSS)
//   - params: Extra placeholder values, keyed without braces.
//
// EXAMPLE:
//   format: "edi_{date}_{uuid}.csv"
//   output: "edi_20240115_a1b2c3d4-e5f6-7890-abcd-ef1234567890.csv"
func GenerateOutputFileName(format string, now time.Time, params map[string]string) string {
	replacements := map[string]string{
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	if _, ok := params["uuid"]; !ok && strings.Contains(format, "{uuid}") {
		replacements["{uuid}"] = uuid.NewString()
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// ReplaceExt swaps the extension of name, e.g. "out.csv" to "out.xlsx".
func ReplaceExt(name, ext string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry is one failed input.
type ErrorLogEntry struct {
	FileName     string
	ErrorType    string
	ErrorMessage string
}

// WriteErrorLog writes entries to error_log_<timestamp>.txt in OutputDir. It
// writes nothing and returns "" when entries is empty.
func (fm *FileManager) WriteErrorLog(entries []ErrorLogEntry) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	now := fm.now()
	logPath := filepath.Join(fm.OutputDir, fmt.Sprintf("error_log_%s.txt", now.Format("20060102_150405")))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "EDI JSON Consolidator - Error Log\n"+
		"Generated: %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		now.Format("2006-01-02 15:04:05"),
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n"+
			"  File:           %s\n"+
			"  Error Type:     %s\n"+
			"  Message:        %s\n\n",
			i+1,
			entry.FileName,
			entry.ErrorType,
			entry.ErrorMessage)
	}

	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary describes a finished run. It is written as YAML.
type ProcessingSummary struct {
	RunID           string              `yaml:"run_id"`
	StartTime       time.Time           `yaml:"start_time"`
	EndTime         time.Time           `yaml:"end_time"`
	Duration        string              `yaml:"duration"`
	TotalFiles      int                 `yaml:"total_files"`
	SuccessfulFiles int                 `yaml:"successful_files"`
	FailedFiles     int                 `yaml:"failed_files"`
	TotalRows       int                 `yaml:"total_rows"`
	Columns         []string            `yaml:"columns"`
	Outputs         []string            `yaml:"outputs,omitempty"`
	ProcessedFiles  []ProcessedFileInfo `yaml:"processed_files,omitempty"`
	FailedFilesList []FailedFileInfo    `yaml:"failed_files_list,omitempty"`
}

// ProcessedFileInfo describes an input that contributed rows.
type ProcessedFileInfo struct {
	InputFile   string `yaml:"input_file"`
	ArchivePath string `yaml:"archive_path,omitempty"`
	Rows        int    `yaml:"rows"`
	Skipped     int    `yaml:"skipped_records,omitempty"`
	ProcessTime string `yaml:"process_time"`
}

// FailedFileInfo describes an input that failed.
type FailedFileInfo struct {
	InputFile    string `yaml:"input_file"`
	ErrorType    string `yaml:"error_type"`
	ErrorMessage string `yaml:"error_message"`
}

// WriteSummaryLog writes summary to processing_summary_<timestamp>.yaml in
// OutputDir.
func (fm *FileManager) WriteSummaryLog(summary ProcessingSummary) (string, error) {
	summaryPath := filepath.Join(fm.OutputDir,
		fmt.Sprintf("processing_summary_%s.yaml", fm.now().Format("20060102_150405")))

	data, err := yaml.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to encode summary: %w", err)
	}

	if err := os.WriteFile(summaryPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write summary file: %w", err)
	}
	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// WriteFileAtomic writes data through a temporary file in the same directory
// and renames it into place, so readers never see a partial output.
func WriteFileAtomic(path string, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	// CreateTemp uses 0600; outputs are shared like the logs.
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}
