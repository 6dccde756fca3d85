// =============================================================================
// BOM Tool - Record Writer
// =============================================================================
//
// Serializes a Store back to comma-delimited text and writes partitions to
// sibling files.
//
// OUTPUT FORMAT:
//   - Header line built from the schema of the first row.
//   - One line per row in schema order; absent fields are written as "".
//   - Every field, the last one included, is followed by the delimiter.
//     Re-parsing such a file therefore yields one extra unnamed column.
//
// =============================================================================

package records

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// UnknownGroup names the output file of rows whose grouping value is empty.
const UnknownGroup = "unknown"

// Write serializes the store to w. An empty store writes nothing.
func (s *Store) Write(w io.Writer) error {
	if s.Len() == 0 {
		return nil
	}

	bw := bufio.NewWriter(w)

	// All rows share one schema; the first row's is as good as any.
	header := s.rows[0].schema
	if _, err := bw.WriteString(joinFields(header.names)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range s.rows {
		if _, err := bw.WriteString(joinFields(row.Values())); err != nil {
			return fmt.Errorf("failed to write line %d: %w", row.DisplayLine(), err)
		}
	}

	return bw.Flush()
}

// WriteFile writes the store to path, replacing any existing file.
// A nil or empty store is a no-op: the filesystem is not touched.
func (s *Store) WriteFile(path string) error {
	if s.Len() == 0 {
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := s.Write(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return file.Close()
}

// joinFields renders one output line with a delimiter after every field.
func joinFields(fields []string) string {
	var sb strings.Builder
	for _, f := range fields {
		sb.WriteString(f)
		sb.WriteString(Delimiter)
	}
	sb.WriteString("\n")
	return sb.String()
}

// =============================================================================
// PARTITION OUTPUT
// =============================================================================

// GroupFileName derives the output file name for one group.
//
// The suffix "-value" ("-unknown" for an empty value) is inserted after the
// first dot-separated segment so the extension survives:
//
//	bom.csv    + Acme -> bom-Acme.csv
//	bom        + Acme -> bom-Acme
//	bom.csv    + ""   -> bom-unknown.csv
//	bom.tar.gz + Acme -> bom-Acme.tar.gz
func GroupFileName(name, value string) string {
	if value == "" {
		value = UnknownGroup
	}
	suffix := "-" + value

	head, rest, found := strings.Cut(name, ".")
	if !found || rest == "" {
		return head + suffix
	}
	return head + suffix + "." + rest
}

// GroupPath returns the sibling of basePath that holds the given group.
func GroupPath(basePath, value string) string {
	dir, name := filepath.Split(basePath)
	return filepath.Join(dir, GroupFileName(name, value))
}

// WritePartition writes every group to its own sibling file of basePath and
// returns the written paths in group order.
func WritePartition(groups []Group, basePath string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	paths := make([]string, 0, len(groups))
	for _, g := range groups {
		path := GroupPath(basePath, g.Value)
		if err := g.Store.WriteFile(path); err != nil {
			return paths, fmt.Errorf("failed to write group %q: %w", g.Value, err)
		}
		logger.Debug("wrote group", "group", g.Value, "rows", g.Store.Len(), "path", path)
		paths = append(paths, path)
	}
	return paths, nil
}
