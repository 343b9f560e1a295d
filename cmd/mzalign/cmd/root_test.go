package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAlignCommand(t *testing.T) {
	out, err := run(t, "align", "WGGD", "WND")
	require.NoError(t, err)
	assert.Contains(t, out, "WGGD 19 0.655\n")
	assert.Contains(t, out, "WN·D 19 0.826\n")
	assert.Contains(t, out, "Path: 1=2:1i1=\n")
	assert.Contains(t, out, "Identity: 50.0% (2/4)\n")
}

func TestAlignCommandOverrides(t *testing.T) {
	out, err := run(t, "align", "--steps", "1", "WGGD", "WND")
	require.NoError(t, err)
	assert.NotContains(t, out, "2:1i")

	_, err = run(t, "align", "--type", "sideways", "WGGD", "WND")
	assert.ErrorContains(t, err, "type")

	_, err = run(t, "align", "--tolerance", "10", "WGGD", "WND")
	assert.ErrorContains(t, err, "tolerance")

	_, err = run(t, "align", "PEPXK", "WND")
	assert.ErrorContains(t, err, "peptide a")

	_, err = run(t, "align", "WGGD")
	assert.Error(t, err)
}

func TestAlignWithProfile(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "local.yaml")
	require.NoError(t, os.WriteFile(profile, []byte("type: local\n"), 0o644))

	out, err := run(t, "align", "--config", profile, "GGGPEPTIDEGGG", "WWPEPTIDEWW")
	require.NoError(t, err)
	assert.Contains(t, out, "Path: 7=\n")
}

func TestStoredCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "alignments.db")

	out, err := run(t, "align", "--db", db, "--save", "PEPTK", "PEPSK")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved as 1\n")

	out, err = run(t, "stored", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "3=1X1=")

	out, err = run(t, "stored", "show", "--db", db, "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Score: 24\n")

	out, err = run(t, "stored", "delete", "--db", db, "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1\n")

	_, err = run(t, "stored", "show", "--db", db, "1")
	assert.ErrorContains(t, err, "not found")

	_, err = run(t, "stored", "list")
	assert.ErrorContains(t, err, "no alignment store")

	_, err = run(t, "align", "--save", "PEPTK", "PEPSK")
	assert.ErrorContains(t, err, "no alignment store")
}

func TestMultiCommand(t *testing.T) {
	out, err := run(t, "multi", "--max-distance", "0.5", "PEPTIDE", "WWWWWW", "PEPTLDE")
	require.NoError(t, err)
	assert.Contains(t, out, "Cluster 1: [0 2]\n")
	assert.Contains(t, out, "Cluster 2: [1]\nWWWWWW\n")
	assert.Contains(t, out, "Merged [0] + [2]")

	_, err = run(t, "multi")
	assert.ErrorContains(t, err, "no peptides")
}

func TestMultiCommandFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "peptides.txt")
	require.NoError(t, os.WriteFile(file, []byte("# library\np1\tPEPTIDE\np2\tPEPTLDE\n"), 0o644))

	out, err := run(t, "multi", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Cluster 1: [0 1]\n")
	assert.Contains(t, out, "Path: 4=1:1i2=\n")
}

func TestSearchCommand(t *testing.T) {
	library := filepath.Join(t.TempDir(), "library.txt")
	require.NoError(t, os.WriteFile(library, []byte("a\tPEPTIDE\nb\tPEPTIDEK\nc\tWWWWWW\nd\tPEPTLDE\n"), 0o644))

	out, err := run(t, "search", "--library", library, "PEPTIDE")
	require.NoError(t, err)
	assert.Contains(t, out, "3 hits in 4 peptides\n")
	assert.Contains(t, out, "4=1:1i2=")
	assert.NotContains(t, out, "WWWWWW")

	out, err = run(t, "search", "--library", library, "--limit", "1", "PEPTIDE")
	require.NoError(t, err)
	assert.Contains(t, out, "1 hits in 4 peptides\n")

	_, err = run(t, "search", "PEPTIDE")
	assert.Error(t, err)
}

func TestMassCommand(t *testing.T) {
	out, err := run(t, "mass", "--charge", "2", "PEPTIDE")
	require.NoError(t, err)
	assert.Contains(t, out, "Monoisotopic mass: 799.359")
	assert.Contains(t, out, "m/z (2+): 400.687")

	_, err = run(t, "mass", "--charge", "0", "PEPTIDE")
	assert.Error(t, err)
}

func TestConfigAndVersion(t *testing.T) {
	out, err := run(t, "config", "--tolerance", "5 ppm")
	require.NoError(t, err)
	assert.Contains(t, out, "tolerance: 5 ppm")

	out, err = run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mzalign v0.1.0")
}
