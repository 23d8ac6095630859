// =============================================================================
// EDI JSON Consolidator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (edi-consolidator)
//   ├── processCmd  (edi-consolidator process)
//   ├── validateCmd (edi-consolidator validate)
//   ├── serveCmd    (edi-consolidator serve)
//   └── versionCmd  (edi-consolidator version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads the YAML configuration (--config)
//   2. Applies the global overrides (--verbose, --log-format)
//   3. Installs the structured logger
//
// =============================================================================

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/edi-json-consolidator/internal/config"
	"github.com/ginjaninja78/edi-json-consolidator/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// logFormat overrides the configured log format when set.
var logFormat string

// appConfig is the loaded configuration, set before any subcommand runs.
var appConfig *config.Config

// logger is the process-wide structured logger.
var logger = logging.Discard()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "edi-consolidator",
	Short: "EDI JSON Consolidator - Merge EDI JSON extracts into one CSV table",
	Long: `EDI JSON Consolidator reads EDI extract files in JSON form, flattens the
record array of each file, copies the file header attributes onto every record
and writes a single consolidated table.

Key Features:
  - Column union across files in first-seen order
  - Per-file error isolation: a bad file never stops a run
  - Bounded concurrent parsing with deterministic output order
  - Semicolon-delimited, BOM-prefixed CSV ready for spreadsheet tools
  - Optional XLSX output and an HTTP upload endpoint

Example Usage:
  edi-consolidator process                      # Consolidate every file in input_dir
  edi-consolidator process --file a.json -f b.json
  edi-consolidator validate                     # Check the inputs without writing
  edi-consolidator serve                        # Start the upload server`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
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
		"config.yaml",
		"Path to the configuration file; defaults apply when the default file is absent",
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

// initConfig loads the configuration and installs the logger. A missing
// config file is only tolerated when --config was not given explicitly.
func initConfig(cmd *cobra.Command) error {
	allowMissing := !cmd.Flags().Changed("config")

	cfg, err := config.Load(cfgFile, allowMissing)
	if err != nil {
		return err
	}

	if verbose {
		cfg.LogLevel = "debug"
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}

	appConfig = cfg
	logger = logging.Setup(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	logger.Debug("configuration loaded",
		slog.String("config", cfgFile),
		slog.String("input_dir", cfg.InputDir),
		slog.String("output_dir", cfg.OutputDir),
		slog.Int("max_concurrency", cfg.MaxConcurrency))
	return nil
}
