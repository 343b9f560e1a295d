// Package quality classifies alignment hits by their normalised scores.
//
// A normalised score is the absolute alignment score divided by the score
// the aligned residues would reach against themselves, so it lies in
// (-inf, 1]. Hits are bucketed into five categories:
//
//	< 0.2  Poor
//	< 0.4  Low
//	< 0.6  Medium
//	< 0.8  High
//	>= 0.8 Excellent
package quality

import (
	"fmt"
	"math"
	"sort"

	"github.com/rusteomics/mzalign/internal/alignment"
)

// Normalised score bounds.
const (
	ScoreMin = -1.0
	ScoreMax = 1.0
)

// Category thresholds.
const (
	QLow       = 0.2
	QMedium    = 0.4
	QHigh      = 0.6
	QExcellent = 0.8
)

// Category represents the quality category of a hit.
type Category int

const (
	// Poor represents a normalised score below 0.2
	Poor Category = iota
	// Low represents 0.2-0.4
	Low
	// Medium represents 0.4-0.6
	Medium
	// High represents 0.6-0.8
	High
	// Excellent represents 0.8 and above
	Excellent
)

func (c Category) String() string {
	switch c {
	case Poor:
		return "Poor"
	case Low:
		return "Low"
	case Medium:
		return "Medium"
	case High:
		return "High"
	case Excellent:
		return "Excellent"
	default:
		return "Unknown"
	}
}

// Classify returns the category of a single normalised score.
func Classify(score float64) Category {
	switch {
	case score >= QExcellent:
		return Excellent
	case score >= QHigh:
		return High
	case score >= QMedium:
		return Medium
	case score >= QLow:
		return Low
	}
	return Poor
}

// QualityError is implemented by all errors of this package.
type QualityError interface {
	error
	IsQualityError()
}

// EmptyScoresError is returned when there are no scores to summarise.
type EmptyScoresError struct{}

func (e *EmptyScoresError) Error() string {
	return "quality scores cannot be empty"
}
func (e *EmptyScoresError) IsQualityError() {}

// ScoreOutOfRangeError is returned when a normalised score is not a number
// or exceeds 1.
type ScoreOutOfRangeError struct {
	Position int
	Score    float64
}

func (e *ScoreOutOfRangeError) Error() string {
	return fmt.Sprintf("score %g at position %d is out of range (-inf, 1]", e.Score, e.Position)
}
func (e *ScoreOutOfRangeError) IsQualityError() {}

// Scores is a set of normalised scores, one per hit or placement.
type Scores struct {
	Values []float64
}

// New creates scores from a list of normalised scores.
func New(scores []float64) (*Scores, error) {
	if len(scores) == 0 {
		return nil, &EmptyScoresError{}
	}

	for i, score := range scores {
		if math.IsNaN(score) || score > ScoreMax {
			return nil, &ScoreOutOfRangeError{Position: i, Score: score}
		}
	}

	values := make([]float64, len(scores))
	copy(values, scores)

	return &Scores{Values: values}, nil
}

// FromAlignment collects the normalised scores of every placement.
func FromAlignment(msa *alignment.MultipleSequenceAlignment) (*Scores, error) {
	values := make([]float64, len(msa.Sequences))
	for i, p := range msa.Sequences {
		values[i] = p.NormalisedScore
	}
	return New(values)
}

// HitScore is the normalised score of a hit: the lowest normalised score
// over its placements, since a hit is only as good as its worst covered
// side. An alignment without placements scores 0.
func HitScore(msa *alignment.MultipleSequenceAlignment) float64 {
	if len(msa.Sequences) == 0 {
		return 0
	}
	score := msa.Sequences[0].NormalisedScore
	for _, p := range msa.Sequences[1:] {
		score = math.Min(score, p.NormalisedScore)
	}
	return score
}

// Len returns the number of scores.
func (s *Scores) Len() int {
	return len(s.Values)
}

// Average calculates the mean normalised score.
func (s *Scores) Average() float64 {
	sum := 0.0
	for _, score := range s.Values {
		sum += score
	}
	return sum / float64(len(s.Values))
}

// Median calculates the median normalised score.
func (s *Scores) Median() float64 {
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Min returns the lowest score.
func (s *Scores) Min() float64 {
	lowest := s.Values[0]
	for _, score := range s.Values[1:] {
		lowest = math.Min(lowest, score)
	}
	return lowest
}

// Max returns the highest score.
func (s *Scores) Max() float64 {
	highest := s.Values[0]
	for _, score := range s.Values[1:] {
		highest = math.Max(highest, score)
	}
	return highest
}

// CountAtOrAbove counts scores at or above a threshold.
func (s *Scores) CountAtOrAbove(threshold float64) int {
	count := 0
	for _, score := range s.Values {
		if score >= threshold {
			count++
		}
	}
	return count
}

// HighQualityRatio is the proportion of scores in the High category or above.
func (s *Scores) HighQualityRatio() float64 {
	return float64(s.CountAtOrAbove(QHigh)) / float64(len(s.Values))
}

// Categorize categorizes the scores by their average.
func (s *Scores) Categorize() Category {
	return Classify(s.Average())
}

// Statistics calculates summary statistics.
func (s *Scores) Statistics() *Stats {
	return &Stats{
		Count:            len(s.Values),
		MinScore:         s.Min(),
		MaxScore:         s.Max(),
		Mean:             s.Average(),
		Median:           s.Median(),
		HighQualityRatio: s.HighQualityRatio(),
		Category:         s.Categorize(),
	}
}

func (s *Scores) String() string {
	return fmt.Sprintf("QualityScores { len: %d, avg: %.3f }", len(s.Values), s.Average())
}

// Stats represents a score summary.
type Stats struct {
	Count            int
	MinScore         float64
	MaxScore         float64
	Mean             float64
	Median           float64
	HighQualityRatio float64
	Category         Category
}

func (s *Stats) String() string {
	return fmt.Sprintf("QualityStats { count: %d, min: %.3f, max: %.3f, mean: %.3f, median: %.3f, high_quality_ratio: %.2f%% }",
		s.Count, s.MinScore, s.MaxScore, s.Mean, s.Median, s.HighQualityRatio*100)
}
