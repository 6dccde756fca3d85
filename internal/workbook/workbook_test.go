package workbook

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/bomtool/internal/records"
)

func sampleStore(t *testing.T) *records.Store {
	t.Helper()
	store, err := records.ParseReader(strings.NewReader("Ref,Value,Supplier\nR1,10k,Acme\nR2,1k\n"), "test")
	require.NoError(t, err)
	return store
}

func TestWrite_OneSheetPerGroup(t *testing.T) {
	store := sampleStore(t)
	path := filepath.Join(t.TempDir(), "bom.xlsx")

	err := Write(path, []Sheet{
		{Name: "Acme", Store: store.Derive(store.Rows()[:1])},
		{Name: "", Store: store.Derive(store.Rows()[1:])},
	})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Acme", "unknown"}, f.GetSheetList())

	rows, err := f.GetRows("Acme")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Ref", "Value", "Supplier"},
		{"R1", "10k", "Acme"},
	}, rows)
}

func TestWrite_NothingToWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.xlsx")

	require.NoError(t, Write(path, []Sheet{{Name: "BOM", Store: records.NewStore("A")}}))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestReadRoundTrip(t *testing.T) {
	store := sampleStore(t)
	path := filepath.Join(t.TempDir(), "bom.xlsx")
	require.NoError(t, Write(path, []Sheet{{Name: "BOM", Store: store}}))

	again, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, store.Schema().Names(), again.Schema().Names())
	require.Equal(t, 2, again.Len())
	assert.Equal(t, []string{"R1", "10k", "Acme"}, again.Rows()[0].Values())

	v, _ := again.Rows()[1].Get("Value")
	assert.Equal(t, "1k", v)
}

func TestRead_NotFound(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Acme", "Acme"},
		{"", "unknown"},
		{"A/B:C", "A_B_C"},
		{"'quoted'", "quoted"},
		{strings.Repeat("x", 40), strings.Repeat("x", 31)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SheetName(tt.in), "SheetName(%q)", tt.in)
	}
}

func TestUniqueSheetName(t *testing.T) {
	used := make(map[string]bool)
	assert.Equal(t, "Acme", uniqueSheetName("Acme", used))
	assert.Equal(t, "acme~2", uniqueSheetName("acme", used))
	assert.Equal(t, "ACME~3", uniqueSheetName("ACME", used))
}
