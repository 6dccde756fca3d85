package records

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBOM = "Ref , Value,Supplier\nR1,10k,Acme\nR2, 10k ,Acme\nR3,1k,Globex\n"

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ============================================================================
// Parse
// ============================================================================

func TestParse_HeaderAndRows(t *testing.T) {
	store, err := Parse(writeTemp(t, "bom.csv", sampleBOM))
	require.NoError(t, err)

	assert.Equal(t, []string{"Ref", "Value", "Supplier"}, store.Schema().Names())
	require.Equal(t, 3, store.Len())

	row := store.Rows()[1]
	v, ok := row.Get("Value")
	assert.True(t, ok)
	assert.Equal(t, "10k", v)
	assert.Equal(t, 1, row.Line())
	assert.Equal(t, 3, row.DisplayLine())
}

func TestParse_AllRowsShareSchema(t *testing.T) {
	store, err := ParseReader(strings.NewReader(sampleBOM), "mem")
	require.NoError(t, err)

	for _, row := range store.Rows() {
		assert.Same(t, store.Schema(), row.Schema())
	}
}

func TestParse_DropsUnlabeledColumns(t *testing.T) {
	store, err := ParseReader(strings.NewReader("A,B\n1,2,3,4\n"), "mem")
	require.NoError(t, err)

	row := store.Rows()[0]
	assert.Equal(t, 2, row.Len())
	assert.Equal(t, []string{"1", "2"}, row.Values())
}

func TestParse_ShortRowsAreNotPadded(t *testing.T) {
	store, err := ParseReader(strings.NewReader("A,B,C\n1\n"), "mem")
	require.NoError(t, err)

	row := store.Rows()[0]
	_, ok := row.Get("B")
	assert.False(t, ok, "missing field must be absent, not empty")
	assert.Equal(t, 1, row.Len())
}

func TestParse_HeaderOnly(t *testing.T) {
	store, err := ParseReader(strings.NewReader("A,B\n"), "mem")
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 2, store.Schema().Len())
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := Parse(writeTemp(t, "empty.csv", ""))
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestParse_NotFound(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.False(t, errors.Is(err, ErrEmptyInput))
}

func TestParse_DuplicateHeaderLastWins(t *testing.T) {
	store, err := ParseReader(strings.NewReader("A,A\nfirst,second\n"), "mem")
	require.NoError(t, err)

	v, _ := store.Rows()[0].Get("A")
	assert.Equal(t, "second", v)
}

func TestFromRecords(t *testing.T) {
	store, err := FromRecords([][]string{
		{" Ref", "Value "},
		{"R1", "10k", "extra"},
		{"R2"},
	}, "sheet")
	require.NoError(t, err)

	assert.Equal(t, []string{"Ref", "Value"}, store.Schema().Names())
	assert.Equal(t, []string{"R1", "10k"}, store.Rows()[0].Values())
	_, ok := store.Rows()[1].Get("Value")
	assert.False(t, ok)

	_, err = FromRecords(nil, "sheet")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

// ============================================================================
// Schema ownership
// ============================================================================

func TestEnsureField_VisibleToAllRows(t *testing.T) {
	store, err := ParseReader(strings.NewReader(sampleBOM), "mem")
	require.NoError(t, err)

	derived := store.Derive(store.Rows()[:1])

	assert.True(t, store.EnsureField("Qty"))
	assert.False(t, store.EnsureField("Qty"))

	for _, row := range store.Rows() {
		assert.Equal(t, 4, row.Schema().Len())
	}
	assert.True(t, derived.Schema().Contains("Qty"))
}

// ============================================================================
// Write
// ============================================================================

func TestWrite_TrailingDelimiter(t *testing.T) {
	store := NewStore("Ref", "Value", "Supplier")
	store.AddRow("R1", "10k", "Acme")
	store.AddRow("R2")

	var buf bytes.Buffer
	require.NoError(t, store.Write(&buf))

	want := "Ref,Value,Supplier,\nR1,10k,Acme,\nR2,,,\n"
	assert.Equal(t, want, buf.String())
}

func TestRoundTrip(t *testing.T) {
	in := writeTemp(t, "bom.csv", "Ref,Value\nR1,10k,unlabeled\nR2,1k\n")
	store, err := Parse(in)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, store.WriteFile(out))

	again, err := Parse(out)
	require.NoError(t, err)

	// The trailing delimiter shows up as one extra unnamed column.
	assert.Equal(t, []string{"Ref", "Value", ""}, again.Schema().Names())
	require.Equal(t, store.Len(), again.Len())
	for i, row := range again.Rows() {
		for _, name := range store.Schema().Names() {
			want, _ := store.Rows()[i].Get(name)
			got, _ := row.Get(name)
			assert.Equal(t, want, got, "row %d field %s", i, name)
		}
	}

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "unlabeled")
}

func TestWriteFile_EmptyIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, NewStore("A").WriteFile(path))
	var nilStore *Store
	require.NoError(t, nilStore.WriteFile(path))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteFile_Overwrites(t *testing.T) {
	path := writeTemp(t, "out.csv", "old content that is longer than the new one\n")

	store := NewStore("A")
	store.AddRow("1")
	require.NoError(t, store.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A,\n1,\n", string(data))
}

// ============================================================================
// Partition output
// ============================================================================

func TestGroupFileName(t *testing.T) {
	tests := []struct {
		name, value, want string
	}{
		{"bom.csv", "Acme", "bom-Acme.csv"},
		{"bom.csv", "", "bom-unknown.csv"},
		{"bom", "Acme", "bom-Acme"},
		{"bom.tar.gz", "Acme", "bom-Acme.tar.gz"},
		{"bom.", "Acme", "bom-Acme"},
		{".csv", "Acme", "-Acme.csv"},
	}

	for _, tt := range tests {
		got := GroupFileName(tt.name, tt.value)
		assert.Equal(t, tt.want, got, "GroupFileName(%q, %q)", tt.name, tt.value)
	}
}

func TestGroupPath_IsSibling(t *testing.T) {
	base := filepath.Join("some", "dir", "bom.csv")
	assert.Equal(t, filepath.Join("some", "dir", "bom-Acme.csv"), GroupPath(base, "Acme"))
}

func TestWritePartition(t *testing.T) {
	store := NewStore("Ref", "Supplier")
	r1 := store.AddRow("R1", "Acme")
	r2 := store.AddRow("R2", "")

	groups := []Group{
		{Value: "Acme", Store: store.Derive([]*Row{r1})},
		{Value: "", Store: store.Derive([]*Row{r2})},
	}

	base := filepath.Join(t.TempDir(), "bom.csv")
	paths, err := WritePartition(groups, base, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	require.NoError(t, err)
	require.Len(t, paths, 2)

	data, err := os.ReadFile(filepath.Join(filepath.Dir(base), "bom-Acme.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Ref,Supplier,\nR1,Acme,\n", string(data))

	data, err = os.ReadFile(filepath.Join(filepath.Dir(base), "bom-unknown.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Ref,Supplier,\nR2,,\n", string(data))
}
