// =============================================================================
// BOM Tool - Record Parser
// =============================================================================
//
// Parses comma-delimited BOM exports into a Store.
//
// FORMAT:
//   - The first line holds the field names.
//   - Every following line is one row, mapped positionally onto the names.
//   - Tokens are whitespace-trimmed; there is no quoting or escaping, so a
//     delimiter inside a value always splits it.
//   - Tokens past the last field name are dropped.
//   - Rows with fewer tokens than field names simply lack the trailing
//     fields. Nothing is padded.
//
// =============================================================================

package records

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Delimiter separates fields on every line.
const Delimiter = ","

// maxLineSize bounds a single line read by the scanner.
const maxLineSize = 1024 * 1024

// ErrEmptyInput is returned when the input has no lines at all, not even a
// header.
var ErrEmptyInput = errors.New("input contains no lines")

// Parse reads the BOM file at path.
//
// RETURNS:
//   - The parsed store.
//   - ErrEmptyInput if the file has zero lines.
//   - A wrapped fs.ErrNotExist (or other I/O error) if the file cannot be read.
func Parse(path string) (*Store, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer file.Close()

	return ParseReader(file, path)
}

// ParseReader parses a BOM from r. source labels the store for diagnostics.
func ParseReader(r io.Reader, source string) (*Store, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		return nil, ErrEmptyInput
	}

	store := &Store{
		schema: NewSchema(splitLine(scanner.Text())...),
		Source: source,
	}

	for scanner.Scan() {
		store.appendTokens(splitLine(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read line %d: %w", store.Len()+2, err)
	}

	return store, nil
}

// FromRecords builds a store from rows that were already split into cells,
// e.g. by a spreadsheet reader. The same trimming and column-dropping rules
// as Parse apply. An empty records slice yields ErrEmptyInput.
func FromRecords(records [][]string, source string) (*Store, error) {
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	store := &Store{
		schema: NewSchema(trimAll(records[0])...),
		Source: source,
	}
	for _, rec := range records[1:] {
		store.appendTokens(trimAll(rec))
	}
	return store, nil
}

// appendTokens adds a row, stopping at the first token with no field name.
func (s *Store) appendTokens(tokens []string) {
	row := &Row{
		fields: make(map[string]string, len(tokens)),
		schema: s.schema,
		line:   len(s.rows),
	}
	for i, tok := range tokens {
		name, ok := s.schema.nameAt(i)
		if !ok {
			break
		}
		row.fields[name] = tok
	}
	s.rows = append(s.rows, row)
}

// splitLine splits one line on the delimiter and trims every token.
func splitLine(line string) []string {
	return trimAll(strings.Split(line, Delimiter))
}

func trimAll(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = strings.TrimSpace(t)
	}
	return out
}
