// =============================================================================
// BOM Tool - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command does
// the actual work: it reads one BOM and runs one action on it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (bomtool)
//   └── versionCmd (bomtool version)
//
// ACTIONS:
//   bomtool -i bom.csv                          # pass-through copy
//   bomtool -i bom.csv -c Value -q Qty -r Ref   # merge rows sharing Value
//   bomtool -i bom.csv -s Supplier              # one file per supplier
//
// CONFIGURATION:
//   Flags override the optional YAML configuration file (--config). The
//   file supplies defaults for the quantity and reference fields, the
//   workbook path, checksums and logging.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ginjaninja78/bomtool/internal/config"
	"github.com/ginjaninja78/bomtool/internal/logging"
	"github.com/ginjaninja78/bomtool/internal/runner"
	"github.com/ginjaninja78/bomtool/internal/transform"
	"github.com/spf13/cobra"
)

// =============================================================================
// FLAGS
// =============================================================================

// rootFlags holds the values bound to the root command's flags.
type rootFlags struct {
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// verbose enables debug logging when set to true.
	verbose bool

	input     string
	output    string
	concat    string
	quantity  string
	reference string
	split     string
	workbook  string
}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// NewRootCmd builds the bomtool command tree.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "bomtool",
		Short: "BOM Tool - Merge and split KiCad bill of materials exports",
		Long: `BOM Tool reads a comma-delimited bill of materials exported by KiCad and
writes it back out, optionally transformed.

Actions:
  - Pass-through (no action flag): parse and re-serialize the BOM
  - Merge (-c): collapse rows sharing a field value, counting them in the
    quantity field (-q) and joining their references (-r)
  - Split (-s): write one file per value of a field, next to the output

Example Usage:
  bomtool -i bom.csv                          # writes bom-out.csv
  bomtool -i bom.csv -c Value -q Qty -r Ref   # merge duplicate values
  bomtool -i bom.csv -s Supplier              # writes bom-<Supplier>.csv
  bomtool -i bom.csv -s Supplier --workbook suppliers.xlsx`,

		// Usage is not useful after a processing error.
		SilenceUsage:  true,
		SilenceErrors: true,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, flags)
		},
	}

	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================

	rootCmd.PersistentFlags().StringVar(
		&flags.cfgFile,
		"config",
		config.DefaultPath,
		"Path to the configuration file",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&flags.verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	// ==========================================================================
	// LOCAL FLAGS
	// ==========================================================================

	rootCmd.Flags().StringVarP(&flags.input, "input", "i", "", "BOM file to read (.csv or .xlsx)")
	rootCmd.Flags().StringVarP(&flags.output, "output", "o", "", "File to write (default: <input>-out.csv, or the input for --split)")
	rootCmd.Flags().StringVarP(&flags.concat, "concat", "c", "", "Merge rows that share the value of this field")
	rootCmd.Flags().StringVarP(&flags.quantity, "quantity", "q", "", "Field that receives the merged row count")
	rootCmd.Flags().StringVarP(&flags.reference, "reference", "r", "", "Field whose values are joined when rows merge")
	rootCmd.Flags().StringVarP(&flags.split, "split", "s", "", "Write one file per value of this field")
	rootCmd.Flags().StringVar(&flags.workbook, "workbook", "", "Also write the output to this .xlsx workbook")

	_ = rootCmd.MarkFlagRequired("input")
	rootCmd.MarkFlagsMutuallyExclusive("concat", "split")

	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the command tree. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runRoot loads the configuration, resolves the action and runs it.
func runRoot(cmd *cobra.Command, flags *rootFlags) error {
	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	cfg, err := config.Load(flags.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if flags.verbose {
		level = "debug"
	}
	logger := logging.Setup(level, cfg.LogFormat, cmd.ErrOrStderr())

	if !cmd.Flags().Changed("quantity") {
		flags.quantity = cfg.Merge.QuantityField
	}
	if !cmd.Flags().Changed("reference") {
		flags.reference = cfg.Merge.ReferenceField
	}
	if !cmd.Flags().Changed("workbook") {
		flags.workbook = cfg.Output.Workbook
	}

	r := runner.New(runner.Options{
		Logger:       logger,
		WorkbookPath: flags.workbook,
		Checksums:    cfg.Output.ChecksumsEnabled(),
	})

	// =========================================================================
	// STEP 2: RUN THE ACTION
	// =========================================================================

	var result *runner.Result
	switch {
	case flags.concat != "":
		result, err = r.Merge(flags.input, flags.output, transform.MergeOptions{
			KeyField:       flags.concat,
			QuantityField:  flags.quantity,
			ReferenceField: flags.reference,
		})
	case flags.split != "":
		result, err = r.Split(flags.input, flags.output, flags.split)
	default:
		result, err = r.Passthrough(flags.input, flags.output)
	}
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 3: PRINT SUMMARY
	// =========================================================================

	printSummary(cmd.OutOrStdout(), result)
	return nil
}

// printSummary writes one line per output file followed by "complete".
func printSummary(w io.Writer, result *runner.Result) {
	input := filepath.Base(result.InputPath)

	if result.Empty {
		fmt.Fprintf(w, "  - %s: empty input, nothing written\n", input)
	}
	for _, out := range result.Outputs {
		printOutput(w, input, out)
	}
	if result.Workbook != nil {
		printOutput(w, input, *result.Workbook)
	}

	fmt.Fprintln(w, "complete")
}

func printOutput(w io.Writer, input string, out runner.Output) {
	line := fmt.Sprintf("  ✓ %s -> %s (%d rows", input, out.Path, out.Rows)
	if out.Checksum != "" {
		line += ", xxhash " + out.Checksum
	}
	fmt.Fprintln(w, line+")")
}
