// =============================================================================
// BOM Tool - XLSX Workbook Support
// =============================================================================
//
// Reads BOMs from, and writes BOMs to, XLSX workbooks.
//
// READING:
//   The first sheet is read as a grid of cells. The first row is the header;
//   the remaining rows follow the same rules as text input (values trimmed,
//   cells past the last header dropped, short rows not padded).
//
// WRITING:
//   Each Sheet becomes one worksheet. The header row comes from the store's
//   schema and every row is written in schema order. Unlike the text format,
//   no trailing empty column is produced.
//
// =============================================================================

package workbook

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/bomtool/internal/records"
	"github.com/xuri/excelize/v2"
)

// Extension is the file extension that selects workbook input.
const Extension = ".xlsx"

// maxSheetNameLength is Excel's limit on worksheet names.
const maxSheetNameLength = 31

// defaultSheet is the sheet every new excelize file starts with.
const defaultSheet = "Sheet1"

// Sheet is one worksheet to write.
type Sheet struct {
	Name  string
	Store *records.Store
}

// =============================================================================
// READING
// =============================================================================

// Read loads the first worksheet of the workbook at path into a store.
//
// RETURNS:
//   - The parsed store.
//   - records.ErrEmptyInput if the sheet has no rows.
//   - An error if the workbook cannot be opened or read.
func Read(path string) (*records.Store, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, records.ErrEmptyInput
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	return records.FromRecords(rows, path)
}

// =============================================================================
// WRITING
// =============================================================================

// Write saves the sheets into a new workbook at path, replacing any existing
// file. Sheets whose store is empty are skipped; if nothing is left to write
// the file is not created.
func Write(path string, sheets []Sheet) error {
	var nonEmpty []Sheet
	for _, s := range sheets {
		if s.Store.Len() > 0 {
			nonEmpty = append(nonEmpty, s)
		}
	}
	if len(nonEmpty) == 0 {
		return nil
	}

	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool)
	for i, s := range nonEmpty {
		name := uniqueSheetName(SheetName(s.Name), used)

		if i == 0 {
			// Reuse the default sheet rather than leaving it empty.
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}

		if err := writeSheet(f, name, s.Store); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// writeSheet writes the header and rows of store into the named sheet.
func writeSheet(f *excelize.File, sheet string, store *records.Store) error {
	header := toCells(store.Rows()[0].Schema().Names())
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of sheet %q: %w", sheet, err)
	}

	for i, row := range store.Rows() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := toCells(row.Values())
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write line %d of sheet %q: %w", row.DisplayLine(), sheet, err)
		}
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

// SheetName turns a group value into a valid worksheet name: characters
// Excel forbids are replaced, the length is capped, and an empty value
// becomes records.UnknownGroup.
func SheetName(value string) string {
	if value == "" {
		value = records.UnknownGroup
	}

	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, value)
	name = strings.Trim(name, "'")
	if name == "" {
		name = records.UnknownGroup
	}

	runes := []rune(name)
	if len(runes) > maxSheetNameLength {
		name = string(runes[:maxSheetNameLength])
	}
	return name
}

// uniqueSheetName appends a counter when two values map to the same name.
// Excel compares sheet names case-insensitively.
func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf("~%d", n)
		runes := []rune(name)
		if len(runes)+len(suffix) > maxSheetNameLength {
			runes = runes[:maxSheetNameLength-len(suffix)]
		}
		candidate = string(runes) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
