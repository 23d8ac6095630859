// =============================================================================
// EDI JSON Consolidator - Version Command
// =============================================================================
//
// COMMAND USAGE:
//   edi-consolidator version
//
// OUTPUT:
//   EDI JSON Consolidator
//   Version:    1.0.0
//   Commit:     3f2a9c1
//   Build Date: 2024-01-01
//   Go Version: go1.24.0
//
// BUILD:
//   The build variables are set with ldflags, e.g.
//   go build -ldflags "\
//     -X 'github.com/ginjaninja78/edi-json-consolidator/cmd.Version=1.0.0' \
//     -X 'github.com/ginjaninja78/edi-json-consolidator/cmd.Commit=3f2a9c1' \
//     -X 'github.com/ginjaninja78/edi-json-consolidator/cmd.BuildDate=2024-01-01'"
//
//   Without ldflags, the module version and VCS revision recorded by the Go
//   toolchain are used when available.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is the application version.
var Version = ""

// Commit is the VCS revision the binary was built from.
var Commit = ""

// BuildDate is the date the application was built.
var BuildDate = "unknown"

// buildInfo is the subset of build metadata the version command prints.
type buildInfo struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
}

// resolveBuildInfo merges ldflags values with what the toolchain embedded.
func resolveBuildInfo(read func() (*debug.BuildInfo, bool)) buildInfo {
	info := buildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}

	if bi, ok := read(); ok {
		if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.Commit == "":
				info.Commit = s.Value
			case s.Key == "vcs.time" && info.BuildDate == "unknown":
				info.BuildDate = s.Value
			}
		}
	}

	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	}
	return info
}

func printVersion(w io.Writer, info buildInfo) {
	fmt.Fprintln(w, "EDI JSON Consolidator")
	fmt.Fprintf(w, "Version:    %s\n", info.Version)
	fmt.Fprintf(w, "Commit:     %s\n", info.Commit)
	fmt.Fprintf(w, "Build Date: %s\n", info.BuildDate)
	fmt.Fprintf(w, "Go Version: %s\n", info.GoVersion)
}

// versionCmd needs no configuration, so it skips the root pre-run.
var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Display the application version",
	Long:              `Display the application version, commit, build date, and Go runtime version.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout(), resolveBuildInfo(debug.ReadBuildInfo))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
