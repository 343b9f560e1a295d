package quality

import (
	"testing"

	"github.com/rusteomics/mzalign/internal/alignment"
	"github.com/rusteomics/mzalign/internal/sequence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placement(t *testing.T, residues string, normalised float64) alignment.MSAPlacement {
	t.Helper()
	p, err := sequence.FromString(residues)
	require.NoError(t, err)
	path := make([]alignment.MSAPosition, p.Len())
	for i := range path {
		path[i] = alignment.Placed(alignment.FullIdentity, 1, 1)
	}
	return alignment.MSAPlacement{Sequence: p, Path: path, NormalisedScore: normalised}
}

func hit(score int, path string, placements ...alignment.MSAPlacement) *alignment.MultipleSequenceAlignment {
	pieces, err := alignment.ParseShortPath(path)
	if err != nil {
		panic(err)
	}
	return &alignment.MultipleSequenceAlignment{Sequences: placements, Path: pieces, Score: score}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		score float64
		want  Category
	}{
		{-0.5, Poor},
		{0.19, Poor},
		{0.2, Low},
		{0.45, Medium},
		{0.6, High},
		{0.8, Excellent},
		{1.0, Excellent},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.score))
		})
	}
}

func TestNewScores(t *testing.T) {
	_, err := New(nil)
	var empty *EmptyScoresError
	assert.ErrorAs(t, err, &empty)

	_, err = New([]float64{0.5, 1.2})
	var outOfRange *ScoreOutOfRangeError
	require.ErrorAs(t, err, &outOfRange)
	assert.Equal(t, 1, outOfRange.Position)

	var qe QualityError
	assert.ErrorAs(t, err, &qe)

	input := []float64{0.5, -0.1}
	s, err := New(input)
	require.NoError(t, err)
	input[0] = 0.9
	assert.Equal(t, 0.5, s.Values[0])
}

func TestScoresSummary(t *testing.T) {
	s, err := New([]float64{0.1, 0.5, 0.7, 0.9})
	require.NoError(t, err)

	assert.Equal(t, 4, s.Len())
	assert.InDelta(t, 0.55, s.Average(), 1e-9)
	assert.InDelta(t, 0.6, s.Median(), 1e-9)
	assert.Equal(t, 0.1, s.Min())
	assert.Equal(t, 0.9, s.Max())
	assert.Equal(t, 2, s.CountAtOrAbove(0.7))
	assert.InDelta(t, 0.5, s.HighQualityRatio(), 1e-9)
	assert.Equal(t, Medium, s.Categorize())

	stats := s.Statistics()
	assert.Equal(t, 4, stats.Count)
	assert.Equal(t, Medium, stats.Category)
	assert.Contains(t, stats.String(), "count: 4")
}

func TestHitScore(t *testing.T) {
	msa := hit(10, "3=", placement(t, "PEP", 0.9), placement(t, "PEP", 0.4))
	assert.Equal(t, 0.4, HitScore(msa))
	assert.Zero(t, HitScore(&alignment.MultipleSequenceAlignment{}))

	s, err := FromAlignment(msa)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.9, 0.4}, s.Values)
}

func TestPathMeasures(t *testing.T) {
	path, err := alignment.ParseShortPath("2=1X1D1I")
	require.NoError(t, err)
	assert.InDelta(t, 0.4, PathIdentity(path), 1e-9)
	assert.Equal(t, 2, PathGaps(path))
	assert.Zero(t, PathIdentity(nil))
}

func TestFilterCheck(t *testing.T) {
	good := func() *alignment.MultipleSequenceAlignment {
		return hit(30, "5=", placement(t, "PEPTK", 0.95), placement(t, "PEPTK", 0.95))
	}

	tests := []struct {
		name   string
		filter *Filter
		msa    *alignment.MultipleSequenceAlignment
		passed bool
		reason string
	}{
		{"default passes", DefaultFilter(), good(), true, ""},
		{"strict passes", StrictFilter(), good(), true, ""},
		{"low normalised score", DefaultFilter(),
			hit(5, "5=", placement(t, "PEPTK", 0.9), placement(t, "PEPTK", 0.1)), false, "normalised score"},
		{"low absolute score", &Filter{MinScore: 40, MaxGaps: -1}, good(), false, "score 30"},
		{"too many gaps", StrictFilter(),
			hit(20, "4=1D", placement(t, "PEPTK", 0.9), placement(t, "PEPT", 0.9)), false, "too many gaps"},
		{"low identity", &Filter{MinIdentity: 0.9, MaxGaps: -1},
			hit(20, "4=1X", placement(t, "PEPTK", 0.9), placement(t, "PEPTR", 0.9)), false, "identity"},
		{"too short", StrictFilter(),
			hit(20, "4=", placement(t, "PEPT", 0.9), placement(t, "PEPT", 0.9)), false, "too short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.filter.Check(tt.msa)
			require.NoError(t, err)
			assert.Equal(t, tt.passed, result.Passed)
			if tt.reason != "" {
				assert.Contains(t, result.Reason, tt.reason)
			}
		})
	}

	_, err := DefaultFilter().Check(nil)
	assert.Error(t, err)
}

func TestFilterRealAlignment(t *testing.T) {
	p, err := sequence.FromString("PEPTIDE")
	require.NoError(t, err)
	msa, err := alignment.Align(alignment.NewSingle(p), alignment.NewSingle(p), alignment.DefaultOptions())
	require.NoError(t, err)

	result, err := StrictFilter().Check(msa)
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, Excellent, result.Category)
	assert.Equal(t, 1.0, result.Identity)
	assert.Zero(t, result.Gaps)
}

func TestFilterValidate(t *testing.T) {
	assert.NoError(t, DefaultFilter().Validate())
	assert.NoError(t, StrictFilter().Validate())
	assert.Error(t, (&Filter{MinNormalisedScore: 1.5}).Validate())
	assert.Error(t, (&Filter{MinIdentity: 2}).Validate())
	assert.Error(t, (&Filter{MinLength: -1}).Validate())
}

func TestBatchFilter(t *testing.T) {
	hits := []*alignment.MultipleSequenceAlignment{
		hit(30, "5=", placement(t, "PEPTK", 0.95), placement(t, "PEPTK", 0.95)),
		hit(5, "5=", placement(t, "PEPTK", 0.1), placement(t, "PEPTK", 0.1)),
	}

	result, err := DefaultFilter().BatchFilter(hits)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalProcessed)
	assert.Equal(t, 1, result.PassedCount)
	assert.Equal(t, []int{1}, result.FailedIndices)
	assert.InDelta(t, 0.5, result.PassRate(), 1e-9)
	assert.Same(t, hits[0], result.Passed[0])
	assert.Contains(t, result.String(), "passed: 1")

	_, err = DefaultFilter().BatchFilter([]*alignment.MultipleSequenceAlignment{{}})
	assert.Error(t, err)

	empty, err := DefaultFilter().BatchFilter(nil)
	require.NoError(t, err)
	assert.Zero(t, empty.PassRate())
}
