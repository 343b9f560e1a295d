package multi

import (
	"testing"

	"github.com/rusteomics/mzalign/internal/alignment"
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

func TestDistanceMatrix(t *testing.T) {
	opts := DefaultOptions()
	opts.Batches = 3
	matrix, err := DistanceMatrix(peptides(t, "PEPTIDE", "PEPTIDE", "PEPTLDE", "WWWWWW"), opts)
	require.NoError(t, err)
	require.Len(t, matrix, 4)

	assert.InDelta(t, 0.0, matrix[0][1], 1e-9)
	// 37 of a self score of 39 on both sides
	assert.InDelta(t, 1-37.0/39.0, matrix[0][2], 1e-9)
	assert.Greater(t, matrix[0][3], matrix[0][2])
	for i := range matrix {
		assert.Zero(t, matrix[i][i])
		for j := range matrix {
			assert.Equal(t, matrix[i][j], matrix[j][i])
		}
	}

	single, err := DistanceMatrix(peptides(t, "PEPTIDE"), opts)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0}}, single)
}

func TestProgressive(t *testing.T) {
	input := peptides(t, "KLVNELTEFAK", "PEPTIDE", "PEPTLDE", "KLVNEVTEFAK")

	result, err := Progressive(input, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, result.Clusters, 1)
	require.Len(t, result.Merges, 3)
	assert.Equal(t, []int{1}, result.Merges[0].Left)
	assert.Equal(t, []int{2}, result.Merges[0].Right)

	cluster := result.Clusters[0]
	assert.ElementsMatch(t, []int{0, 1, 2, 3}, cluster.Members)
	require.NotNil(t, cluster.Alignment)
	require.NoError(t, cluster.Alignment.Validate())
	assert.Len(t, cluster.Alignment.Sequences, 4)

	lines := cluster.Alignment.Lines()
	for _, line := range lines[1:] {
		assert.Equal(t, len([]rune(lines[0])), len([]rune(line)))
	}
	for k, member := range cluster.Members {
		assert.Same(t, input[member], cluster.Alignment.Sequences[k].Sequence)
	}
}

func TestProgressiveMaxDistance(t *testing.T) {
	input := peptides(t, "PEPTIDE", "WWWWWW", "PEPTLDE")
	opts := DefaultOptions()
	opts.MaxDistance = 0.5

	result, err := Progressive(input, opts)
	require.NoError(t, err)
	require.Len(t, result.Clusters, 2)
	assert.Equal(t, []int{0, 2}, result.Clusters[0].Members)
	assert.Equal(t, []int{1}, result.Clusters[1].Members)
	assert.Nil(t, result.Clusters[1].Alignment)
	assert.NotNil(t, result.Clusters[1].Alignable())
	assert.Equal(t, "PEPTIDE", result.Clusters[0].Alignment.Lines()[0])
}

func TestProgressiveErrors(t *testing.T) {
	_, err := Progressive(nil, DefaultOptions())
	assert.Error(t, err)

	_, err = Progressive([]*sequence.Peptide{sequence.New(nil)}, DefaultOptions())
	assert.Error(t, err)

	opts := DefaultOptions()
	opts.Alignment.Steps = 0
	_, err = Progressive(peptides(t, "PEPTIDE"), opts)
	var configErr *alignment.ConfigError
	assert.ErrorAs(t, err, &configErr)
}

func TestProgressiveSingle(t *testing.T) {
	result, err := Progressive(peptides(t, "PEPTIDE"), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, result.Clusters, 1)
	assert.Empty(t, result.Merges)
	assert.Nil(t, result.Clusters[0].Alignment)
}
