// =============================================================================
// BOM Tool - Runner
// =============================================================================
//
// The runner is the entry point behind the CLI. It executes one action on one
// input file:
//
//   Passthrough: parse -> write
//   Merge:       parse -> transform.Merge -> write
//   Split:       parse -> transform.Partition -> write one file per group
//
// PIPELINE:
//   1. Load the input (text BOM, or the first sheet of an .xlsx workbook)
//   2. Apply the transformation
//   3. Write the text output file(s)
//   4. Optionally write an XLSX workbook copy
//   5. Checksum every written file for the summary
//
// An input with no lines at all is not an error: nothing is written and the
// result is marked Empty.
//
// =============================================================================

package runner

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/bomtool/internal/records"
	"github.com/ginjaninja78/bomtool/internal/transform"
	"github.com/ginjaninja78/bomtool/internal/workbook"
	"github.com/ginjaninja78/bomtool/pkg/utils"
	"github.com/google/uuid"
)

// =============================================================================
// ACTIONS
// =============================================================================

// Action identifies what a run does with the parsed BOM.
type Action int

const (
	ActionPassthrough Action = iota
	ActionMerge
	ActionSplit
)

func (a Action) String() string {
	switch a {
	case ActionMerge:
		return "merge"
	case ActionSplit:
		return "split"
	default:
		return "passthrough"
	}
}

// defaultWorkbookSheet names the single sheet of a non-split workbook.
const defaultWorkbookSheet = "BOM"

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Output describes one written file.
type Output struct {
	// Path is where the file was written.
	Path string

	// Group is the grouping value for split outputs, empty otherwise.
	Group string

	// Rows is the number of data rows written.
	Rows int

	// Checksum is the xxhash64 digest of the file, if checksums are on.
	Checksum string
}

// Result represents the outcome of one run.
type Result struct {
	// RunID tags every diagnostic of the run.
	RunID string

	Action    Action
	InputPath string

	// Empty is set when the input had no lines and nothing was written.
	Empty bool

	// RowsRead is the number of data rows parsed from the input.
	RowsRead int

	// Outputs lists the text files written, in write order.
	Outputs []Output

	// Workbook is the XLSX copy, if one was requested and written.
	Workbook *Output

	Duration time.Duration
}

// =============================================================================
// RUNNER
// =============================================================================

// Options configures a Runner.
type Options struct {
	// Logger receives diagnostics. nil uses slog.Default().
	Logger *slog.Logger

	// WorkbookPath, when set, also writes the output to this .xlsx file.
	WorkbookPath string

	// Checksums enables xxhash checksums of written files.
	Checksums bool
}

// Runner executes BOM actions.
type Runner struct {
	opts Options
}

// New creates a Runner.
func New(opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Runner{opts: opts}
}

// Passthrough parses inputPath and writes it back out unchanged.
func (r *Runner) Passthrough(inputPath, outputPath string) (*Result, error) {
	run := r.begin(ActionPassthrough, inputPath)

	store, err := run.load()
	if err != nil || store == nil {
		return run.finish(err)
	}

	if outputPath == "" {
		outputPath = DefaultOutputPath(inputPath)
	}
	if err := run.writeStore(store, outputPath); err != nil {
		return run.finish(err)
	}
	if err := run.writeWorkbook([]workbook.Sheet{{Name: defaultWorkbookSheet, Store: store}}); err != nil {
		return run.finish(err)
	}
	return run.finish(nil)
}

// Merge parses inputPath, merges rows sharing opts.KeyField and writes the
// result to outputPath.
func (r *Runner) Merge(inputPath, outputPath string, opts transform.MergeOptions) (*Result, error) {
	run := r.begin(ActionMerge, inputPath)

	store, err := run.load()
	if err != nil || store == nil {
		return run.finish(err)
	}

	merged, err := transform.Merge(store, opts, run.logger)
	if err != nil {
		return run.finish(fmt.Errorf("failed to merge on %q: %w", opts.KeyField, err))
	}
	run.logger.Info("merged components", "rows_in", store.Len(), "rows_out", merged.Len())

	if outputPath == "" {
		outputPath = DefaultOutputPath(inputPath)
	}
	if err := run.writeStore(merged, outputPath); err != nil {
		return run.finish(err)
	}
	if err := run.writeWorkbook([]workbook.Sheet{{Name: defaultWorkbookSheet, Store: merged}}); err != nil {
		return run.finish(err)
	}
	return run.finish(nil)
}

// Split parses inputPath and writes one file per value of groupingField.
// The files are siblings of outputPath (of inputPath when outputPath is
// empty), named by records.GroupFileName.
func (r *Runner) Split(inputPath, outputPath, groupingField string) (*Result, error) {
	run := r.begin(ActionSplit, inputPath)

	if groupingField == "" {
		return run.finish(errors.New("split field must not be empty"))
	}

	store, err := run.load()
	if err != nil || store == nil {
		return run.finish(err)
	}

	if outputPath == "" {
		outputPath = textPath(inputPath)
	}

	groups := transform.Partition(store, groupingField, run.logger)
	run.logger.Info("partitioned components", "field", groupingField, "groups", len(groups))

	if len(groups) > 0 {
		if err := utils.EnsureParentDir(outputPath); err != nil {
			return run.finish(err)
		}
	}
	paths, err := records.WritePartition(groups, outputPath, run.logger)
	if err != nil {
		return run.finish(err)
	}

	sheets := make([]workbook.Sheet, 0, len(groups))
	for i, g := range groups {
		out, err := run.describe(paths[i], g.Store.Len())
		if err != nil {
			return run.finish(err)
		}
		out.Group = g.Value
		run.result.Outputs = append(run.result.Outputs, out)
		sheets = append(sheets, workbook.Sheet{Name: g.Value, Store: g.Store})
	}

	if err := run.writeWorkbook(sheets); err != nil {
		return run.finish(err)
	}
	return run.finish(nil)
}

// DefaultOutputPath is used when no output path is given for a passthrough
// or merge: bom.csv becomes bom-out.csv next to the input.
func DefaultOutputPath(inputPath string) string {
	return records.GroupPath(textPath(inputPath), "out")
}

// textPath maps a workbook input path onto a .csv path; text paths are
// returned unchanged.
func textPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	if strings.EqualFold(ext, workbook.Extension) {
		return strings.TrimSuffix(inputPath, ext) + ".csv"
	}
	return inputPath
}

// =============================================================================
// INVOCATION STATE
// =============================================================================

// invocation carries the state of one action run.
type invocation struct {
	*Runner
	logger *slog.Logger
	began  time.Time
	result *Result
}

func (r *Runner) begin(action Action, inputPath string) *invocation {
	id := uuid.NewString()
	return &invocation{
		Runner: r,
		logger: r.opts.Logger.With("run_id", id, "action", action.String()),
		began:  time.Now(),
		result: &Result{
			RunID:     id,
			Action:    action,
			InputPath: inputPath,
		},
	}
}

// load parses the input. It returns a nil store and nil error for an empty
// input, after marking the result.
func (run *invocation) load() (*records.Store, error) {
	var (
		store *records.Store
		err   error
	)
	if strings.EqualFold(filepath.Ext(run.result.InputPath), workbook.Extension) {
		store, err = workbook.Read(run.result.InputPath)
	} else {
		store, err = records.Parse(run.result.InputPath)
	}

	if errors.Is(err, records.ErrEmptyInput) {
		run.logger.Warn("input is empty, nothing to write", "input", run.result.InputPath)
		run.result.Empty = true
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", run.result.InputPath, err)
	}

	run.result.RowsRead = store.Len()
	run.logger.Debug("parsed input", "input", run.result.InputPath, "rows", store.Len(), "fields", store.Schema().Len())
	return store, nil
}

// writeStore writes one text output and records it in the result.
// An empty store writes nothing.
func (run *invocation) writeStore(store *records.Store, path string) error {
	if store.Len() == 0 {
		run.logger.Debug("no rows to write", "path", path)
		return nil
	}

	if err := utils.EnsureParentDir(path); err != nil {
		return err
	}
	if err := store.WriteFile(path); err != nil {
		return err
	}

	out, err := run.describe(path, store.Len())
	if err != nil {
		return err
	}
	run.result.Outputs = append(run.result.Outputs, out)
	run.logger.Debug("wrote output", "path", path, "rows", out.Rows)
	return nil
}

func (run *invocation) writeWorkbook(sheets []workbook.Sheet) error {
	path := run.opts.WorkbookPath
	if path == "" {
		return nil
	}

	rows := 0
	for _, s := range sheets {
		rows += s.Store.Len()
	}
	if rows == 0 {
		return nil
	}

	if err := utils.EnsureParentDir(path); err != nil {
		return err
	}
	if err := workbook.Write(path, sheets); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	out, err := run.describe(path, rows)
	if err != nil {
		return err
	}
	run.result.Workbook = &out
	return nil
}

func (run *invocation) describe(path string, rows int) (Output, error) {
	out := Output{Path: path, Rows: rows}
	if run.opts.Checksums {
		sum, err := utils.FileChecksum(path)
		if err != nil {
			return out, err
		}
		out.Checksum = sum
	}
	return out, nil
}

func (run *invocation) finish(err error) (*Result, error) {
	run.result.Duration = time.Since(run.began)
	if err != nil {
		run.logger.Error("run failed", "error", err)
		return run.result, err
	}
	return run.result, nil
}
