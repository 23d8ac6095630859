// =============================================================================
// EDI JSON Consolidator - Configuration Module
// =============================================================================
//
// This module loads the application configuration from a YAML file and
// applies defaults for everything left unset. A run can work with no file at
// all: every setting has a default matching the standard EDI extract layout.
//
// EXAMPLE (config.yaml):
//   input_dir: ./input
//   output_dir: ./output
//   record_key: clientHeaders
//   meta_paths:
//     - fileHeader.processingDate
//     - fileHeader.acquiringName
//     - fileHeader.fileNumber
//   output_file_name: dados_edi_consolidados.csv
//   delimiter: ";"
//   max_concurrency: 4
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/edi-json-consolidator/internal/csvwriter"
	"github.com/ginjaninja78/edi-json-consolidator/internal/document"
)

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	DefaultRecordKey      = "clientHeaders"
	DefaultOutputFileName = "dados_edi_consolidados.csv"
	DefaultInputPattern   = "*.json"
	DefaultMaxConcurrency = 4
	DefaultMaxFileSizeMB  = 50
)

// DefaultMetaPaths are the header attributes repeated on every row.
var DefaultMetaPaths = []string{
	"fileHeader.processingDate",
	"fileHeader.acquiringName",
	"fileHeader.fileNumber",
}

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for EDI extracts. Default: "./input"
	InputDir string `yaml:"input_dir"`

	// InputPattern is the glob matched inside InputDir. Default: "*.json"
	InputPattern string `yaml:"input_pattern"`

	// OutputDir receives the consolidated files and logs. Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives inputs that contributed rows, when
	// ArchiveInputs is set. Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// ArchiveInputs moves successfully processed inputs to InputArchiveDir.
	ArchiveInputs bool `yaml:"archive_inputs"`

	// ArchiveDateSubdirs files archived inputs under YYYY/MM/DD.
	ArchiveDateSubdirs bool `yaml:"archive_date_subdirs"`

	// =========================================================================
	// EXTRACTION SETTINGS
	// =========================================================================

	// RecordKey is the top-level key holding the record array.
	// Default: "clientHeaders"
	RecordKey string `yaml:"record_key"`

	// MetaPaths are dotted header paths copied onto every row.
	// Default: the three fileHeader attributes.
	MetaPaths []string `yaml:"meta_paths"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputFileName names the CSV file. Placeholders:
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	//   {uuid}      - The run ID
	// Default: "dados_edi_consolidados.csv"
	OutputFileName string `yaml:"output_file_name"`

	// Delimiter separates CSV fields. Default: ";"
	Delimiter string `yaml:"delimiter"`

	// WriteBOM prefixes the CSV with a UTF-8 byte-order mark. Default: true
	WriteBOM *bool `yaml:"write_bom"`

	// WriteXLSX writes a workbook next to the CSV.
	WriteXLSX bool `yaml:"write_xlsx"`

	// XLSXSheetName names the workbook sheet. Default: "EDI"
	XLSXSheetName string `yaml:"xlsx_sheet_name"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency bounds how many files are parsed at once. Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// MaxFileSizeMB rejects larger inputs before parsing. Default: 50
	MaxFileSizeMB int64 `yaml:"max_file_size_mb"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel: "debug", "info", "warn", "error". Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat: "text" or "json". Default: "text"
	LogFormat string `yaml:"log_format"`

	// Server configures the HTTP upload shell.
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds settings for the serve command.
type ServerConfig struct {
	// Addr is the listen address. Default: ":8080"
	Addr string `yaml:"addr"`

	// MaxUploadMB caps one multipart request. Default: 200
	MaxUploadMB int64 `yaml:"max_upload_mb"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration at path. When allowMissing is set and the file
// does not exist, defaults are returned.
func Load(path string, allowMissing bool) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case allowMissing && errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.InputDir == "" {
		c.InputDir = "./input"
	}
	if c.InputPattern == "" {
		c.InputPattern = DefaultInputPattern
	}
	if c.OutputDir == "" {
		c.OutputDir = "./output"
	}
	if c.InputArchiveDir == "" {
		c.InputArchiveDir = "./input_archive"
	}
	if c.RecordKey == "" {
		c.RecordKey = DefaultRecordKey
	}
	if len(c.MetaPaths) == 0 {
		c.MetaPaths = append([]string(nil), DefaultMetaPaths...)
	}
	if c.OutputFileName == "" {
		c.OutputFileName = DefaultOutputFileName
	}
	if c.Delimiter == "" {
		c.Delimiter = ";"
	}
	if c.WriteBOM == nil {
		on := true
		c.WriteBOM = &on
	}
	if c.XLSXSheetName == "" {
		c.XLSXSheetName = "EDI"
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = DefaultMaxConcurrency
	}
	if c.MaxFileSizeMB <= 0 {
		c.MaxFileSizeMB = DefaultMaxFileSizeMB
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = 200
	}
}

// Validate checks settings that defaults cannot repair.
func (c *Config) Validate() error {
	var errs []error

	if strings.Contains(c.RecordKey, ".") {
		errs = append(errs, fmt.Errorf("record_key %q must be a single top-level key", c.RecordKey))
	}
	for _, p := range c.MetaPaths {
		if p == "" || strings.HasPrefix(p, ".") || strings.HasSuffix(p, ".") || strings.Contains(p, "..") {
			errs = append(errs, fmt.Errorf("meta_paths entry %q is not a dotted path", p))
		}
	}
	if _, err := csvwriter.ParseDelimiter(c.Delimiter); err != nil {
		errs = append(errs, err)
	}
	if !strings.HasSuffix(strings.ToLower(c.OutputFileName), ".csv") {
		errs = append(errs, fmt.Errorf("output_file_name %q must end in .csv", c.OutputFileName))
	}

	return errors.Join(errs...)
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Paths returns MetaPaths split into key sequences.
func (c *Config) Paths() []document.MetaPath {
	paths := make([]document.MetaPath, len(c.MetaPaths))
	for i, p := range c.MetaPaths {
		paths[i] = document.ParseMetaPath(p)
	}
	return paths
}

// MaxFileSize returns the input size limit in bytes.
func (c *Config) MaxFileSize() int64 {
	return c.MaxFileSizeMB << 20
}

// CSVOptions returns the serializer options.
func (c *Config) CSVOptions() csvwriter.Options {
	return csvwriter.Options{
		Delimiter: c.Delimiter,
		OmitBOM:   c.WriteBOM != nil && !*c.WriteBOM,
	}
}
