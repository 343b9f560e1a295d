package mzalign

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlign(t *testing.T) {
	a, err := NewPeptide("WGGD")
	require.NoError(t, err)
	b, err := NewPeptide("WND")
	require.NoError(t, err)

	msa, err := Align(a, b, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "WGGD 19 0.655\nWN·D 19 0.826\n", msa.String())
	assert.Equal(t, "1=2:1i1=", msa.ShortPath())

	stats, err := AlignmentStats(msa)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, stats.MassErrorDa, 1e-9)
}

func TestAlignProfiles(t *testing.T) {
	a, _ := NewPeptide("WGGD")
	b, _ := NewPeptide("WND")
	c, _ := NewPeptideWithID("WND", "third")

	ab, err := Align(a, b, DefaultOptions())
	require.NoError(t, err)
	abc, err := AlignProfiles(ab, Single(c), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, abc.Sequences, 3)
	assert.Equal(t, "third", abc.Sequences[2].Sequence.ID)
}

func TestParsePeptides(t *testing.T) {
	input := "# library\nPEPTIDE\n\nfirst\tPEPM[Oxidation]K\n"
	peptides, err := ParsePeptides(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, peptides, 2)
	assert.Equal(t, "PEPTIDE", peptides[0].String())
	assert.Equal(t, "first", peptides[1].ID)
	assert.Equal(t, 1, peptides[1].ModifiedCount())

	_, err = ParsePeptides(strings.NewReader("PEPTIDE\nPEP*\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestSearchAndMany(t *testing.T) {
	peptides, err := ParsePeptides(strings.NewReader("PEPTIDE\nPEPTLDE\nWWWWWW\n"))
	require.NoError(t, err)

	ix, err := NewIndex(peptides)
	require.NoError(t, err)
	hits, err := ix.Search(peptides[0], DefaultSearchOptions())
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 0, hits[0].Entry)

	result, err := AlignMany(peptides, DefaultMultiOptions())
	require.NoError(t, err)
	require.Len(t, result.Clusters, 1)
	assert.Len(t, result.Clusters[0].Members, 3)
}

func TestTolerances(t *testing.T) {
	assert.True(t, PPM(10).Within(1000, 1000.005))
	assert.False(t, Dalton(0.001).Within(1000, 1000.005))
}

func TestInfo(t *testing.T) {
	assert.Contains(t, Info(), Version())
}

func TestDefaultConfig(t *testing.T) {
	loaded, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, loaded, DefaultConfig())

	opts, err := DefaultConfig().Options()
	require.NoError(t, err)
	assert.Equal(t, Global, opts.Type)
}
