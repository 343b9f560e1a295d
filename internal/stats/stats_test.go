package stats

import (
	"testing"

	"github.com/rusteomics/mzalign/internal/alignment"
	"github.com/rusteomics/mzalign/internal/quality"
	"github.com/rusteomics/mzalign/internal/sequence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPeptide(t *testing.T, s string) *sequence.Peptide {
	t.Helper()
	p, err := sequence.Parse(s, nil)
	require.NoError(t, err)
	return p
}

func mustAlign(t *testing.T, a, b string) *alignment.MultipleSequenceAlignment {
	t.Helper()
	msa, err := alignment.Align(
		alignment.NewSingle(mustPeptide(t, a)),
		alignment.NewSingle(mustPeptide(t, b)),
		alignment.DefaultOptions())
	require.NoError(t, err)
	return msa
}

func TestFromPeptide(t *testing.T) {
	stats := FromPeptide(mustPeptide(t, "PEPM[Oxidation]K"))

	assert.Equal(t, 5, stats.Length)
	assert.Equal(t, 1, stats.ModifiedCount)
	assert.InDelta(t, 0.2, stats.ModifiedFraction, 1e-9)
	assert.Equal(t, 2, stats.Composition['P'])
	assert.InDelta(t, mustPeptide(t, "PEPMK").MonoisotopicMass()+15.994915, stats.MonoisotopicMass, 1e-4)
	assert.Contains(t, stats.String(), "length: 5")
}

func TestFromPeptideEmpty(t *testing.T) {
	stats := FromPeptide(sequence.New(nil))
	assert.Zero(t, stats.Length)
	assert.Zero(t, stats.ModifiedFraction)
}

func TestFromPeptides(t *testing.T) {
	peptides := []*sequence.Peptide{
		mustPeptide(t, "PEPT"),
		mustPeptide(t, "PEPTIDEK"),
		mustPeptide(t, "M[Oxidation]KLV"),
	}

	stats, err := FromPeptides(peptides)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 16, stats.TotalResidues)
	assert.Equal(t, 4, stats.MinLength)
	assert.Equal(t, 8, stats.MaxLength)
	assert.InDelta(t, 16.0/3.0, stats.MeanLength, 0.0001)
	assert.Equal(t, 4, stats.MedianLength)
	assert.Equal(t, 8, stats.N50)
	assert.Equal(t, 1, stats.TotalModified)

	_, err = FromPeptides(nil)
	assert.Error(t, err)
}

func TestAlignmentStats(t *testing.T) {
	t.Run("mismatch", func(t *testing.T) {
		stats, err := FromAlignment(mustAlign(t, "PEPTK", "PEPSK"), 0, 1, nil)
		require.NoError(t, err)
		assert.Equal(t, 4, stats.Identical)
		// T/S scores 1 in BLOSUM62
		assert.Equal(t, 5, stats.Similar)
		assert.Zero(t, stats.Gaps)
		assert.Equal(t, 5, stats.Length)
		assert.InDelta(t, 14.01565, stats.MassErrorDa, 1e-4)
		assert.InDelta(t, 0.8, stats.IdentityRatio(), 1e-9)
	})

	t.Run("isobaric", func(t *testing.T) {
		stats, err := FromAlignment(mustAlign(t, "WGGD", "WND"), 0, 1, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Identical)
		// the padding column next to N counts as a one sided column
		assert.Equal(t, 1, stats.Gaps)
		assert.Equal(t, 4, stats.Length)
		assert.InDelta(t, 0.0, stats.MassErrorDa, 1e-9)
		assert.InDelta(t, 0.0, stats.MassErrorPPM, 1e-6)
	})

	t.Run("identity matrix", func(t *testing.T) {
		stats, err := FromAlignment(mustAlign(t, "PEPTK", "PEPSK"), 0, 1, alignment.IdentityMatrix(1, -1))
		require.NoError(t, err)
		assert.Equal(t, 4, stats.Similar)
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := FromAlignment(mustAlign(t, "PEPTK", "PEPSK"), 0, 2, nil)
		assert.Error(t, err)
	})
}

func TestScoreDistribution(t *testing.T) {
	categories := []quality.Category{quality.Poor, quality.Medium, quality.High, quality.Excellent}
	dist := FromCategories(categories)

	assert.Equal(t, 4, dist.Total)
	assert.Equal(t, 1, dist.PoorCount)
	assert.Equal(t, 1, dist.ExcellentCount)
	assert.InDelta(t, 0.75, dist.AcceptableRatio(), 1e-9)
	assert.Zero(t, FromCategories(nil).AcceptableRatio())
}

func TestFromHits(t *testing.T) {
	hits := []*alignment.MultipleSequenceAlignment{
		mustAlign(t, "PEPTIDE", "PEPTIDE"),
		mustAlign(t, "PEPTK", "PEPSK"),
	}

	stats, err := FromHits(hits)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, 24, stats.MinScore)
	assert.Equal(t, 39, stats.MaxScore)
	assert.Equal(t, 2, stats.HighQualityCount)
	// 24/29 for the mismatching pair is still above 0.8
	assert.Equal(t, 2, stats.Distribution.ExcellentCount)
	assert.InDelta(t, 1.0, stats.HighQualityRatio(), 1e-9)

	_, err = FromHits(nil)
	assert.Error(t, err)
}

func TestScoreHistogram(t *testing.T) {
	hits := []*alignment.MultipleSequenceAlignment{
		mustAlign(t, "PEPTIDE", "PEPTIDE"),
		mustAlign(t, "PEPTIDE", "PEPTIDE"),
		{Sequences: []alignment.MSAPlacement{{NormalisedScore: -0.5}}},
	}

	hist, err := NewScoreHistogram(hits, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 0, 2}, hist.Bins)

	start, end := hist.ModeBin()
	assert.InDelta(t, 0.75, start, 1e-9)
	assert.InDelta(t, 1.0, end, 1e-9)
	assert.Contains(t, hist.String(), "0.75-1.00: ## (2)")

	_, err = NewScoreHistogram(hits, 0)
	assert.Error(t, err)
}

func TestLengthHistogram(t *testing.T) {
	peptides := []*sequence.Peptide{
		mustPeptide(t, "PEPT"),
		mustPeptide(t, "PEPTI"),
		mustPeptide(t, "PEPTIDEKPEPT"),
	}

	hist, err := NewLengthHistogram(peptides, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, hist.BinWidth)
	assert.Equal(t, []int{2, 1}, hist.Bins)

	_, err = NewLengthHistogram(nil, 2)
	assert.Error(t, err)
}
