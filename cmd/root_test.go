package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeBOM(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bom.csv")
	content := "Ref,Value,Supplier\nR1,10k,Acme\nR2,10k,Acme\nR3,1k,Globex\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRoot_Merge(t *testing.T) {
	in := writeBOM(t)
	out := filepath.Join(filepath.Dir(in), "merged.csv")

	stdout, stderr, err := execute(t, "-i", in, "-o", out, "-c", "Value", "-q", "Qty", "-r", "Ref")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Ref,Value,Supplier,Qty,\nR1 R2,10k,Acme,2,\nR3,1k,Globex,1,\n", string(data))
	assert.Contains(t, stdout, "✓ bom.csv -> "+out+" (2 rows, xxhash ")
	assert.Contains(t, stdout, "complete\n")
	assert.Contains(t, stderr, "new unique component")
}

func TestRoot_PassthroughDefaultOutput(t *testing.T) {
	in := writeBOM(t)

	stdout, _, err := execute(t, "--input", in)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(filepath.Dir(in), "bom-out.csv"))
	assert.Contains(t, stdout, "complete")
}

func TestRoot_SplitWithConfig(t *testing.T) {
	in := writeBOM(t)
	dir := filepath.Dir(in)
	cfgPath := filepath.Join(dir, "bomtool.yaml")
	book := filepath.Join(dir, "suppliers.xlsx")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log_format: json\noutput:\n  workbook: "+book+"\n  checksums: false\n"), 0o644))

	stdout, _, err := execute(t, "--config", cfgPath, "-i", in, "-s", "Supplier")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "bom-Acme.csv"))
	assert.FileExists(t, filepath.Join(dir, "bom-Globex.csv"))
	assert.FileExists(t, book)
	assert.NotContains(t, stdout, "xxhash")
}

func TestRoot_Errors(t *testing.T) {
	in := writeBOM(t)

	triple := filepath.Join(filepath.Dir(in), "triple.csv")
	require.NoError(t, os.WriteFile(triple, []byte("Ref,Value\nR1,10k\nR2,10k\nR3,10k\n"), 0o644))

	tests := map[string][]string{
		"missing input flag":   {"-c", "Value"},
		"concat and split":     {"-i", in, "-c", "Value", "-s", "Supplier"},
		"input not found":      {"-i", filepath.Join(t.TempDir(), "missing.csv")},
		"explicit config gone": {"-i", in, "--config", filepath.Join(t.TempDir(), "nope.yaml")},
		"malformed quantity":   {"-i", triple, "-c", "Value", "-q", "Ref", "-r", "Ref"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			stdout, _, err := execute(t, args...)
			assert.Error(t, err)
			assert.NotContains(t, stdout, "complete")
		})
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "BOM Tool")
	assert.Contains(t, stdout, "Version:    "+Version)
}
