// =============================================================================
// BOM Tool - Record Store
// =============================================================================
//
// This module holds the in-memory model of a BOM export: an ordered list of
// rows that all share one ordered field schema.
//
// OWNERSHIP:
//   - A Store owns exactly one Schema.
//   - Every Row keeps a non-owning pointer to that Schema.
//   - Stores derived from a Store (merge results, partition groups) share the
//     same Schema, so a column added through EnsureField shows up in all of
//     them.
//
// =============================================================================

package records

// =============================================================================
// SCHEMA
// =============================================================================

// Schema is the ordered list of field names that defines output column order.
// Names are not required to be unique.
type Schema struct {
	names []string
}

// NewSchema creates a Schema with the given names in order.
func NewSchema(names ...string) *Schema {
	s := &Schema{names: make([]string, 0, len(names))}
	s.names = append(s.names, names...)
	return s
}

// Names returns a copy of the field names in column order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return len(s.names)
}

// Contains reports whether name is one of the schema's columns.
func (s *Schema) Contains(name string) bool {
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}

// nameAt returns the field name at position i, if there is one.
func (s *Schema) nameAt(i int) (string, bool) {
	if i < 0 || i >= len(s.names) {
		return "", false
	}
	return s.names[i], true
}

// =============================================================================
// ROW
// =============================================================================

// Row is one data line of the BOM (one component).
type Row struct {
	fields map[string]string
	schema *Schema
	line   int
}

// Get returns the value stored for name. The second result is false when the
// row has no value for that field at all.
func (r *Row) Get(name string) (string, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// Set stores a value for name. It does not touch the schema.
func (r *Row) Set(name, value string) {
	r.fields[name] = value
}

// Len returns the number of fields the row actually carries.
func (r *Row) Len() int {
	return len(r.fields)
}

// Schema returns the schema this row was parsed against.
func (r *Row) Schema() *Schema {
	return r.schema
}

// Line is the zero-based position of the row among data lines.
func (r *Row) Line() int {
	return r.line
}

// DisplayLine is the 1-based line number in the source file, header included.
func (r *Row) DisplayLine() int {
	return r.line + 2
}

// Values returns the row's values in schema order, with "" for absent fields.
func (r *Row) Values() []string {
	out := make([]string, len(r.schema.names))
	for i, name := range r.schema.names {
		out[i] = r.fields[name]
	}
	return out
}

// =============================================================================
// STORE
// =============================================================================

// Store is an ordered collection of rows sharing one schema.
type Store struct {
	schema *Schema
	rows   []*Row

	// Source is the path (or other label) the store was read from.
	Source string
}

// NewStore creates an empty store over a new schema with the given names.
func NewStore(names ...string) *Store {
	return &Store{schema: NewSchema(names...)}
}

// Schema returns the schema owned by this store.
func (s *Store) Schema() *Schema {
	return s.schema
}

// Rows returns the rows in order. The slice is shared with the store.
func (s *Store) Rows() []*Row {
	return s.rows
}

// Len returns the number of rows.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rows)
}

// EnsureField appends name to the schema if it is not already present.
// It reports whether the schema changed.
func (s *Store) EnsureField(name string) bool {
	if s.schema.Contains(name) {
		return false
	}
	s.schema.names = append(s.schema.names, name)
	return true
}

// AddRow appends a row built from positional values. Values beyond the
// schema width are dropped, the same way Parse drops unlabeled columns.
func (s *Store) AddRow(values ...string) *Row {
	row := &Row{
		fields: make(map[string]string, len(values)),
		schema: s.schema,
		line:   len(s.rows),
	}
	for i, v := range values {
		name, ok := s.schema.nameAt(i)
		if !ok {
			break
		}
		row.fields[name] = v
	}
	s.rows = append(s.rows, row)
	return row
}

// Derive returns a new store that shares this store's schema and holds the
// given rows. The rows are not copied.
func (s *Store) Derive(rows []*Row) *Store {
	return &Store{
		schema: s.schema,
		rows:   rows,
		Source: s.Source,
	}
}

// Group is a named subset of a store, produced by partitioning on a field.
type Group struct {
	// Value is the raw field value shared by every row of the group.
	Value string

	// Store holds the group's rows; it shares the parent schema.
	Store *Store
}
