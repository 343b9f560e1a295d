package quality

import (
	"fmt"

	"github.com/rusteomics/mzalign/internal/alignment"
)

// FilterResult represents the result of filtering one hit.
type FilterResult struct {
	Passed   bool
	Reason   string
	Score    float64
	Identity float64
	Gaps     int
	Category Category
}

// Filter represents a hit filter configuration.
type Filter struct {
	MinNormalisedScore float64 // Minimum hit score, see HitScore
	MinScore           int     // Minimum absolute score
	MaxGaps            int     // Maximum number of gap steps, negative for no limit
	MinIdentity        float64 // Minimum fraction of identical steps
	MinLength          int     // Minimum residues aligned on every side
}

// DefaultFilter creates a filter with default settings.
func DefaultFilter() *Filter {
	return &Filter{
		MinNormalisedScore: QMedium,
		MinScore:           0,
		MaxGaps:            -1,
		MinIdentity:        0,
		MinLength:          1,
	}
}

// StrictFilter creates a filter with strict settings.
func StrictFilter() *Filter {
	return &Filter{
		MinNormalisedScore: QExcellent,
		MinScore:           1,
		MaxGaps:            0,
		MinIdentity:        0.5,
		MinLength:          5,
	}
}

// Validate checks the thresholds.
func (f *Filter) Validate() error {
	if f.MinNormalisedScore > ScoreMax {
		return fmt.Errorf("minimum normalised score %g can never be reached", f.MinNormalisedScore)
	}
	if f.MinIdentity < 0 || f.MinIdentity > 1 {
		return fmt.Errorf("minimum identity %g must be in [0, 1]", f.MinIdentity)
	}
	if f.MinLength < 0 {
		return fmt.Errorf("minimum length must be non-negative")
	}
	return nil
}

// PathIdentity returns the fraction of steps that are full identities.
func PathIdentity(path []alignment.Piece) float64 {
	if len(path) == 0 {
		return 0
	}
	identical := 0
	for _, p := range path {
		if p.MatchType == alignment.FullIdentity {
			identical++
		}
	}
	return float64(identical) / float64(len(path))
}

// PathGaps counts the gap steps of a path.
func PathGaps(path []alignment.Piece) int {
	gaps := 0
	for _, p := range path {
		if p.MatchType == alignment.Gap {
			gaps++
		}
	}
	return gaps
}

// Check checks whether an alignment passes the filter.
func (f *Filter) Check(msa *alignment.MultipleSequenceAlignment) (*FilterResult, error) {
	if msa == nil || len(msa.Sequences) == 0 {
		return nil, &EmptyScoresError{}
	}

	result := &FilterResult{
		Passed:   true,
		Score:    HitScore(msa),
		Identity: PathIdentity(msa.Path),
		Gaps:     PathGaps(msa.Path),
	}
	result.Category = Classify(result.Score)

	if result.Score < f.MinNormalisedScore {
		result.Passed = false
		result.Reason = fmt.Sprintf("normalised score %.3f below minimum %.3f", result.Score, f.MinNormalisedScore)
		return result, nil
	}

	if msa.Score < f.MinScore {
		result.Passed = false
		result.Reason = fmt.Sprintf("score %d below minimum %d", msa.Score, f.MinScore)
		return result, nil
	}

	if f.MaxGaps >= 0 && result.Gaps > f.MaxGaps {
		result.Passed = false
		result.Reason = fmt.Sprintf("too many gaps: %d (max: %d)", result.Gaps, f.MaxGaps)
		return result, nil
	}

	if result.Identity < f.MinIdentity {
		result.Passed = false
		result.Reason = fmt.Sprintf("identity %.3f below minimum %.3f", result.Identity, f.MinIdentity)
		return result, nil
	}

	for i := range msa.Sequences {
		if n := msa.Sequences[i].Consumed(); n < f.MinLength {
			result.Passed = false
			result.Reason = fmt.Sprintf("alignment too short: %d residues of sequence %d (min: %d)", n, i, f.MinLength)
			return result, nil
		}
	}

	return result, nil
}

// BatchFilter filters multiple alignments.
func (f *Filter) BatchFilter(alignments []*alignment.MultipleSequenceAlignment) (*BatchFilterResult, error) {
	result := &BatchFilterResult{
		Passed:        make([]*alignment.MultipleSequenceAlignment, 0),
		FailedIndices: make([]int, 0),
		FailReasons:   make(map[int]string),
	}

	for i, msa := range alignments {
		filterResult, err := f.Check(msa)
		if err != nil {
			return nil, fmt.Errorf("alignment %d: %w", i, err)
		}

		if filterResult.Passed {
			result.Passed = append(result.Passed, msa)
		} else {
			result.FailedIndices = append(result.FailedIndices, i)
			result.FailReasons[i] = filterResult.Reason
		}
	}

	result.TotalProcessed = len(alignments)
	result.PassedCount = len(result.Passed)
	result.FailedCount = len(result.FailedIndices)

	return result, nil
}

// BatchFilterResult represents the result of batch filtering.
type BatchFilterResult struct {
	TotalProcessed int
	PassedCount    int
	FailedCount    int
	Passed         []*alignment.MultipleSequenceAlignment
	FailedIndices  []int
	FailReasons    map[int]string
}

// PassRate returns the proportion of alignments that passed filtering.
func (r *BatchFilterResult) PassRate() float64 {
	if r.TotalProcessed == 0 {
		return 0.0
	}
	return float64(r.PassedCount) / float64(r.TotalProcessed)
}

func (r *BatchFilterResult) String() string {
	return fmt.Sprintf("BatchFilterResult { processed: %d, passed: %d (%.1f%%), failed: %d }",
		r.TotalProcessed, r.PassedCount, r.PassRate()*100, r.FailedCount)
}
