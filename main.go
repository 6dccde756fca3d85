// =============================================================================
// BOM Tool - Main Entry Point
// =============================================================================
//
// This is the main entry point for the BOM Tool CLI application. It delegates
// command execution to the cmd package.
//
// USAGE:
//   bomtool -i bom.csv [-o out.csv] [-c field -q field -r field | -s field]
//   bomtool version
//
// ARCHITECTURE:
//   - cmd/                : CLI command definitions (Cobra)
//   - internal/records    : BOM parsing and serialization
//   - internal/transform  : merge and partition
//   - internal/runner     : one action on one input file
//   - internal/workbook   : XLSX input and output
//   - internal/config     : optional YAML configuration
//   - internal/logging    : slog setup
//   - pkg/utils           : file helpers
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/bomtool/cmd"
)

func main() {
	cmd.Execute()
}
