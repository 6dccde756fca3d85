// =============================================================================
// BOM Tool - Merge Transformation
// =============================================================================
//
// Merge collapses rows that share the value of a key field into one row,
// counting duplicates in a quantity field and collecting their reference
// designators.
//
// ALGORITHM:
//   Rows are folded in input order against an index of accepted rows keyed
//   by the key value. The index keeps the first accepted row for each key, so
//   the first match always wins. Rows without the key are never indexed and
//   therefore never match, not even each other.
//
// =============================================================================

package transform

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ginjaninja78/bomtool/internal/records"
)

// MergeOptions selects the fields Merge works with.
type MergeOptions struct {
	// KeyField decides which rows are duplicates of each other.
	KeyField string

	// QuantityField receives the duplicate count. Empty disables counting.
	QuantityField string

	// ReferenceField collects the designators of merged rows, space
	// separated. Empty disables concatenation.
	ReferenceField string
}

// MalformedQuantityError reports a quantity value that is not an integer.
type MalformedQuantityError struct {
	Field string
	Value string
	Line  int
	Err   error
}

func (e *MalformedQuantityError) Error() string {
	return fmt.Sprintf("line %d: quantity field %q has non-integer value %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *MalformedQuantityError) Unwrap() error {
	return e.Err
}

// Merge folds duplicate rows of store into their first occurrence.
//
// PARAMETERS:
//   - store: The parsed BOM. Its rows are mutated in place.
//   - opts: The key, quantity and reference fields.
//   - logger: Receives per-row diagnostics. nil uses slog.Default().
//
// RETURNS:
//   - A store sharing the input schema with the surviving rows in order.
//   - A *MalformedQuantityError if a quantity cannot be incremented.
func Merge(store *records.Store, opts MergeOptions, logger *slog.Logger) (*records.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.KeyField == "" {
		return nil, fmt.Errorf("merge key field must not be empty")
	}

	accepted := make([]*records.Row, 0, store.Len())
	byKey := make(map[string]*records.Row)

	for _, row := range store.Rows() {
		key, hasKey := row.Get(opts.KeyField)

		if hasKey {
			if existing, ok := byKey[key]; ok {
				if err := absorb(existing, row, opts); err != nil {
					return nil, err
				}
				continue
			}
		} else {
			logger.Warn("row does not have merge field",
				"line", row.DisplayLine(),
				"field", opts.KeyField,
			)
		}

		if opts.QuantityField != "" {
			store.EnsureField(opts.QuantityField)
			row.Set(opts.QuantityField, "1")
		}

		accepted = append(accepted, row)
		if hasKey {
			byKey[key] = row
		}
		logger.Info("new unique component", "line", row.DisplayLine())
	}

	return store.Derive(accepted), nil
}

// absorb folds dup into existing: quantity first, then references.
func absorb(existing, dup *records.Row, opts MergeOptions) error {
	if opts.QuantityField != "" {
		raw, _ := existing.Get(opts.QuantityField)
		qty, err := strconv.Atoi(raw)
		if err != nil {
			return &MalformedQuantityError{
				Field: opts.QuantityField,
				Value: raw,
				Line:  existing.DisplayLine(),
				Err:   err,
			}
		}
		existing.Set(opts.QuantityField, strconv.Itoa(qty+1))
	}

	if opts.ReferenceField != "" {
		ref, _ := dup.Get(opts.ReferenceField)
		if prev, ok := existing.Get(opts.ReferenceField); ok {
			ref = prev + " " + ref
		}
		existing.Set(opts.ReferenceField, ref)
	}

	return nil
}
