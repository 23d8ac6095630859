// =============================================================================
// EDI JSON Consolidator - Main Entry Point
// =============================================================================
//
// This is the main entry point for the EDI JSON Consolidator CLI. It delegates
// command execution to the cmd package.
//
// USAGE:
//   edi-consolidator process   - Consolidate the EDI JSON files in the input directory
//   edi-consolidator validate  - Check the inputs without writing output
//   edi-consolidator serve     - Start the HTTP upload server
//   edi-consolidator version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Parsing, flattening, aggregation and serialization
//   - pkg/       : Shared filesystem utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/edi-json-consolidator/cmd"
)

func main() {
	cmd.Execute()
}
