package index

import (
	"testing"

	"github.com/rusteomics/mzalign/internal/alignment"
	"github.com/rusteomics/mzalign/internal/quality"
	"github.com/rusteomics/mzalign/internal/sequence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func peptides(t *testing.T, defs ...string) []*sequence.Peptide {
	t.Helper()
	result := make([]*sequence.Peptide, len(defs))
	for i, d := range defs {
		p, err := sequence.Parse(d, nil)
		require.NoError(t, err)
		result[i] = p
	}
	return result
}

func library(t *testing.T) *Index {
	t.Helper()
	ix, err := New(peptides(t, "PEPTIDE", "PEPTIDEK", "WWWWWW", "PEPTLDE"), DefaultK)
	require.NoError(t, err)
	return ix
}

func entries(hits []Hit) []int {
	result := make([]int, len(hits))
	for i, h := range hits {
		result[i] = h.Entry
	}
	return result
}

func TestNew(t *testing.T) {
	ix := library(t)
	assert.Equal(t, 4, ix.Len())

	p, ok := ix.Entry(1)
	require.True(t, ok)
	assert.Equal(t, "PEPTIDEK", p.String())
	_, ok = ix.Entry(4)
	assert.False(t, ok)

	_, err := New(nil, 0)
	assert.Error(t, err)
	_, err = New([]*sequence.Peptide{sequence.New(nil)}, 3)
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	ix := library(t)
	query := peptides(t, "PEPTIDE")[0]

	hits, err := ix.Search(query, DefaultSearchOptions())
	require.NoError(t, err)

	// WWWWWW shares no k-mer; PEPTLDE shares all of them once I and L fold.
	assert.Equal(t, []int{0, 1, 3}, entries(hits))
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
	assert.Equal(t, 39, hits[1].Alignment.Score)
	assert.Equal(t, "4=1:1i2=", hits[2].Alignment.ShortPath())
	assert.Equal(t, 5, hits[2].SharedKMers)
	assert.Less(t, hits[2].Score, hits[1].Score)
}

func TestSearchOptions(t *testing.T) {
	ix := library(t)
	query := peptides(t, "PEPTIDE")[0]

	t.Run("limit", func(t *testing.T) {
		opts := DefaultSearchOptions()
		opts.Limit = 1
		hits, err := ix.Search(query, opts)
		require.NoError(t, err)
		assert.Equal(t, []int{0}, entries(hits))
	})

	t.Run("filter", func(t *testing.T) {
		opts := DefaultSearchOptions()
		opts.Filter = &quality.Filter{MinIdentity: 0.9, MaxGaps: -1}
		hits, err := ix.Search(query, opts)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1}, entries(hits))
	})

	t.Run("no prefilter", func(t *testing.T) {
		opts := DefaultSearchOptions()
		opts.MinSharedKMers = 0
		opts.Filter = nil
		opts.Batches = 2
		hits, err := ix.Search(query, opts)
		require.NoError(t, err)
		assert.Len(t, hits, 4)
		assert.Equal(t, 2, hits[len(hits)-1].Entry)
	})

	t.Run("nothing shared", func(t *testing.T) {
		hits, err := ix.Search(peptides(t, "AAAAA")[0], DefaultSearchOptions())
		require.NoError(t, err)
		assert.Empty(t, hits)
	})
}

func TestSearchErrors(t *testing.T) {
	ix := library(t)

	_, err := ix.Search(sequence.New(nil), DefaultSearchOptions())
	assert.Error(t, err)

	opts := DefaultSearchOptions()
	opts.Alignment.Steps = 0
	_, err = ix.Search(peptides(t, "PEPTIDE")[0], opts)
	var configErr *alignment.ConfigError
	assert.ErrorAs(t, err, &configErr)

	opts = DefaultSearchOptions()
	opts.Filter = &quality.Filter{MinIdentity: 2}
	_, err = ix.Search(peptides(t, "PEPTIDE")[0], opts)
	assert.Error(t, err)
}

func TestSortHits(t *testing.T) {
	hit := func(entry int, score float64, absolute int) Hit {
		return Hit{Entry: entry, Score: score, Alignment: &alignment.MultipleSequenceAlignment{Score: absolute}}
	}
	hits := []Hit{
		hit(0, 0.5, 10),
		hit(1, 0.9, 10),
		hit(2, 0.5, 20),
		hit(3, 0.5, 10),
	}

	SortHits(hits)
	assert.Equal(t, []int{1, 2, 0, 3}, entries(hits))
}

func BenchmarkSearch(b *testing.B) {
	defs := []string{"PEPTIDE", "PEPTIDEK", "KLVNELTEFAK", "LVNEVTEFAK", "AEFVEVTK", "QTALVELLK"}
	lib := make([]*sequence.Peptide, 0, len(defs)*20)
	for i := 0; i < 20; i++ {
		for _, d := range defs {
			p, _ := sequence.FromString(d)
			lib = append(lib, p)
		}
	}
	ix, _ := New(lib, DefaultK)
	query, _ := sequence.FromString("LVNELTEFAK")
	opts := DefaultSearchOptions()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ix.Search(query, opts)
	}
}
