package transform

import (
	"log/slog"

	"github.com/ginjaninja78/bomtool/internal/records"
)

// Partition groups the rows of store by the value of field.
//
// Groups come back in order of first occurrence. Rows that lack the field
// are left out of every group and reported through logger.
func Partition(store *records.Store, field string, logger *slog.Logger) []records.Group {
	if logger == nil {
		logger = slog.Default()
	}

	rowsByValue := make(map[string][]*records.Row)
	order := []string{}

	for _, row := range store.Rows() {
		value, ok := row.Get(field)
		if !ok {
			logger.Warn("row does not have grouping field",
				"line", row.DisplayLine(),
				"field", field,
			)
			continue
		}

		if _, seen := rowsByValue[value]; !seen {
			order = append(order, value)
		}
		rowsByValue[value] = append(rowsByValue[value], row)
	}

	groups := make([]records.Group, len(order))
	for i, value := range order {
		groups[i] = records.Group{
			Value: value,
			Store: store.Derive(rowsByValue[value]),
		}
	}
	return groups
}

// PartitionAndSerialize partitions store by field and writes one file per
// group next to basePath. It returns the paths written.
func PartitionAndSerialize(store *records.Store, field, basePath string, logger *slog.Logger) ([]string, error) {
	groups := Partition(store, field, logger)
	return records.WritePartition(groups, basePath, logger)
}
