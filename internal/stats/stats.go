// Package stats provides statistical summaries for peptides and alignments.
package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rusteomics/mzalign/internal/alignment"
	"github.com/rusteomics/mzalign/internal/chemistry"
	"github.com/rusteomics/mzalign/internal/quality"
	"github.com/rusteomics/mzalign/internal/sequence"
)

// PeptideStats represents statistics for a single peptide.
type PeptideStats struct {
	Length           int
	MonoisotopicMass float64
	Formula          chemistry.Formula
	ModifiedCount    int
	ModifiedFraction float64
	Composition      map[chemistry.AminoAcid]int
}

// FromPeptide calculates statistics for a peptide.
func FromPeptide(p *sequence.Peptide) *PeptideStats {
	modified := p.ModifiedCount()
	fraction := 0.0
	if p.Len() > 0 {
		fraction = float64(modified) / float64(p.Len())
	}

	return &PeptideStats{
		Length:           p.Len(),
		MonoisotopicMass: p.MonoisotopicMass(),
		Formula:          p.Formula(),
		ModifiedCount:    modified,
		ModifiedFraction: fraction,
		Composition:      p.Composition(),
	}
}

func (s *PeptideStats) String() string {
	return fmt.Sprintf(`PeptideStats {
  length: %d
  mass: %.6f Da
  formula: %s
  modified: %d (%.1f%%)
}`, s.Length, s.MonoisotopicMass, s.Formula, s.ModifiedCount, s.ModifiedFraction*100)
}

func minMax(values []int) (int, int) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

func medianInt(values []int) int {
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func medianFloat(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// PeptideSetStats represents aggregated statistics for multiple peptides.
type PeptideSetStats struct {
	Count         int
	TotalResidues int
	MinLength     int
	MaxLength     int
	MeanLength    float64
	MedianLength  int
	MeanMass      float64
	N50           int
	TotalModified int
}

// FromPeptides calculates statistics for a collection of peptides.
func FromPeptides(peptides []*sequence.Peptide) (*PeptideSetStats, error) {
	if len(peptides) == 0 {
		return nil, fmt.Errorf("peptide list cannot be empty")
	}

	count := len(peptides)
	lengths := make([]int, count)
	totalResidues := 0
	massSum := 0.0
	totalModified := 0

	for i, p := range peptides {
		lengths[i] = p.Len()
		totalResidues += p.Len()
		massSum += p.MonoisotopicMass()
		totalModified += p.ModifiedCount()
	}

	minLen, maxLen := minMax(lengths)

	// N50: the length at which half of all residues sit in peptides at least
	// that long.
	sortedDesc := append([]int(nil), lengths...)
	sort.Sort(sort.Reverse(sort.IntSlice(sortedDesc)))

	halfTotal := totalResidues / 2
	runningSum := 0
	n50 := sortedDesc[0]
	for _, length := range sortedDesc {
		runningSum += length
		if runningSum >= halfTotal {
			n50 = length
			break
		}
	}

	return &PeptideSetStats{
		Count:         count,
		TotalResidues: totalResidues,
		MinLength:     minLen,
		MaxLength:     maxLen,
		MeanLength:    float64(totalResidues) / float64(count),
		MedianLength:  medianInt(lengths),
		MeanMass:      massSum / float64(count),
		N50:           n50,
		TotalModified: totalModified,
	}, nil
}

func (s *PeptideSetStats) String() string {
	return fmt.Sprintf(`PeptideSetStats {
  count: %d
  total_residues: %d
  length range: %d - %d
  mean length: %.1f
  median length: %d
  mean mass: %.4f Da
  N50: %d
  modified residues: %d
}`, s.Count, s.TotalResidues, s.MinLength, s.MaxLength,
		s.MeanLength, s.MedianLength, s.MeanMass, s.N50, s.TotalModified)
}

// AlignmentStats compares two placements of one alignment column by column.
type AlignmentStats struct {
	// Identical counts columns where both residues are fully equal.
	Identical int
	// Similar counts columns with a positive substitution score, identical
	// columns included.
	Similar int
	// Gaps counts columns where only one of the two shows a residue.
	Gaps int
	// Length counts columns where at least one shows a residue.
	Length int

	MassA        float64
	MassB        float64
	MassErrorDa  float64
	MassErrorPPM float64
}

// FromAlignment compares placements i and j of msa. A nil matrix means
// BLOSUM62.
func FromAlignment(msa *alignment.MultipleSequenceAlignment, i, j int, matrix *alignment.SubstitutionMatrix) (*AlignmentStats, error) {
	n := msa.NumberOfSequences()
	if i < 0 || i >= n || j < 0 || j >= n {
		return nil, fmt.Errorf("placements %d and %d must be in [0, %d)", i, j, n)
	}
	if matrix == nil {
		matrix = alignment.BLOSUM62()
	}

	s := &AlignmentStats{}
	for c := 0; c < msa.TotalLength(); c++ {
		ra, okA := msa.Index(c, i)
		rb, okB := msa.Index(c, j)
		switch {
		case okA && okB:
			s.Length++
			if ra.Equal(rb) {
				s.Identical++
			}
			if ra.Equal(rb) || matrix.Score(ra.AminoAcid, rb.AminoAcid) > 0 {
				s.Similar++
			}
		case okA || okB:
			s.Length++
			s.Gaps++
		}
	}

	a, b := &msa.Sequences[i], &msa.Sequences[j]
	s.MassA = sequence.WindowMass(a.Residues())
	s.MassB = sequence.WindowMass(b.Residues())
	s.MassErrorDa = s.MassA - s.MassB
	s.MassErrorPPM = chemistry.PPMError(s.MassA, s.MassB)
	return s, nil
}

// IdentityRatio is the fraction of identical columns.
func (s *AlignmentStats) IdentityRatio() float64 {
	if s.Length == 0 {
		return 0.0
	}
	return float64(s.Identical) / float64(s.Length)
}

// SimilarityRatio is the fraction of similar columns.
func (s *AlignmentStats) SimilarityRatio() float64 {
	if s.Length == 0 {
		return 0.0
	}
	return float64(s.Similar) / float64(s.Length)
}

func (s *AlignmentStats) String() string {
	return fmt.Sprintf(`AlignmentStats {
  identical: %d/%d (%.1f%%)
  similar: %d/%d (%.1f%%)
  gaps: %d
  mass error: %.6f Da (%.2f ppm)
}`, s.Identical, s.Length, s.IdentityRatio()*100, s.Similar, s.Length, s.SimilarityRatio()*100,
		s.Gaps, s.MassErrorDa, s.MassErrorPPM)
}

// ScoreDistribution counts hits per quality category.
type ScoreDistribution struct {
	PoorCount      int
	LowCount       int
	MediumCount    int
	HighCount      int
	ExcellentCount int
	Total          int
}

// FromCategories creates distribution from list of categories.
func FromCategories(categories []quality.Category) *ScoreDistribution {
	dist := &ScoreDistribution{Total: len(categories)}

	for _, cat := range categories {
		switch cat {
		case quality.Poor:
			dist.PoorCount++
		case quality.Low:
			dist.LowCount++
		case quality.Medium:
			dist.MediumCount++
		case quality.High:
			dist.HighCount++
		case quality.Excellent:
			dist.ExcellentCount++
		}
	}

	return dist
}

// AcceptableRatio returns proportion of hits at or above medium quality.
func (d *ScoreDistribution) AcceptableRatio() float64 {
	acceptable := d.MediumCount + d.HighCount + d.ExcellentCount
	if d.Total == 0 {
		return 0.0
	}
	return float64(acceptable) / float64(d.Total)
}

func (d *ScoreDistribution) String() string {
	return fmt.Sprintf(`ScoreDistribution {
  Poor (<0.2): %d
  Low (0.2-0.4): %d
  Medium (0.4-0.6): %d
  High (0.6-0.8): %d
  Excellent (>=0.8): %d
}`, d.PoorCount, d.LowCount, d.MediumCount, d.HighCount, d.ExcellentCount)
}

// HitSetStats represents statistics for the hits of one search.
type HitSetStats struct {
	Count            int
	MinScore         int
	MaxScore         int
	MeanScore        float64
	MeanNormalised   float64
	MedianNormalised float64
	HighQualityCount int
	Distribution     *ScoreDistribution
}

// FromHits calculates statistics for a collection of alignments.
func FromHits(hits []*alignment.MultipleSequenceAlignment) (*HitSetStats, error) {
	if len(hits) == 0 {
		return nil, fmt.Errorf("hit list cannot be empty")
	}

	count := len(hits)
	scores := make([]int, count)
	normalised := make([]float64, count)
	categories := make([]quality.Category, count)
	scoreSum := 0
	normalisedSum := 0.0
	highQualityCount := 0

	for i, h := range hits {
		scores[i] = h.Score
		scoreSum += h.Score
		normalised[i] = quality.HitScore(h)
		normalisedSum += normalised[i]
		categories[i] = quality.Classify(normalised[i])
		if normalised[i] >= quality.QHigh {
			highQualityCount++
		}
	}

	minScore, maxScore := minMax(scores)

	return &HitSetStats{
		Count:            count,
		MinScore:         minScore,
		MaxScore:         maxScore,
		MeanScore:        float64(scoreSum) / float64(count),
		MeanNormalised:   normalisedSum / float64(count),
		MedianNormalised: medianFloat(normalised),
		HighQualityCount: highQualityCount,
		Distribution:     FromCategories(categories),
	}, nil
}

// HighQualityRatio returns proportion of high-quality hits.
func (s *HitSetStats) HighQualityRatio() float64 {
	if s.Count == 0 {
		return 0.0
	}
	return float64(s.HighQualityCount) / float64(s.Count)
}

func (s *HitSetStats) String() string {
	return fmt.Sprintf(`HitSetStats {
  count: %d
  score range: %d - %d
  mean score: %.1f
  mean normalised: %.3f
  median normalised: %.3f
  high quality hits: %d (%.1f%%)
}`, s.Count, s.MinScore, s.MaxScore, s.MeanScore,
		s.MeanNormalised, s.MedianNormalised,
		s.HighQualityCount, s.HighQualityRatio()*100)
}

// ScoreHistogram bins normalised hit scores over [0, 1]. Negative scores
// fall into the first bin.
type ScoreHistogram struct {
	Bins    []int
	BinSize float64
	NumBins int
}

// NewScoreHistogram creates a normalised score histogram from hits.
func NewScoreHistogram(hits []*alignment.MultipleSequenceAlignment, numBins int) (*ScoreHistogram, error) {
	if len(hits) == 0 {
		return nil, fmt.Errorf("hit list cannot be empty")
	}
	if numBins <= 0 {
		return nil, fmt.Errorf("numBins must be positive")
	}

	binSize := 1.0 / float64(numBins)
	bins := make([]int, numBins)

	for _, h := range hits {
		binIndex := int(quality.HitScore(h) / binSize)
		binIndex = max(0, min(binIndex, numBins-1))
		bins[binIndex]++
	}

	return &ScoreHistogram{
		Bins:    bins,
		BinSize: binSize,
		NumBins: numBins,
	}, nil
}

// ModeBin returns the most common score range.
func (h *ScoreHistogram) ModeBin() (float64, float64) {
	maxCount := h.Bins[0]
	maxBin := 0

	for i, count := range h.Bins {
		if count > maxCount {
			maxCount = count
			maxBin = i
		}
	}

	start := float64(maxBin) * h.BinSize
	return start, start + h.BinSize
}

func (h *ScoreHistogram) String() string {
	var b strings.Builder
	b.WriteString("Normalised Score Histogram:\n")
	for i := 0; i < h.NumBins; i++ {
		start := float64(i) * h.BinSize
		fmt.Fprintf(&b, "%.2f-%.2f: %s (%d)\n", start, start+h.BinSize, strings.Repeat("#", h.Bins[i]), h.Bins[i])
	}
	return b.String()
}

// LengthHistogram represents a length histogram for peptides.
type LengthHistogram struct {
	Bins      []int
	MinLength int
	MaxLength int
	BinWidth  int
	NumBins   int
}

// NewLengthHistogram creates a length histogram from peptides.
func NewLengthHistogram(peptides []*sequence.Peptide, numBins int) (*LengthHistogram, error) {
	if len(peptides) == 0 {
		return nil, fmt.Errorf("peptide list cannot be empty")
	}
	if numBins <= 0 {
		return nil, fmt.Errorf("numBins must be positive")
	}

	lengths := make([]int, len(peptides))
	for i, p := range peptides {
		lengths[i] = p.Len()
	}
	minLen, maxLen := minMax(lengths)

	binWidth := max((maxLen-minLen)/numBins, 1)
	bins := make([]int, numBins)

	for _, length := range lengths {
		binIndex := min((length-minLen)/binWidth, numBins-1)
		bins[binIndex]++
	}

	return &LengthHistogram{
		Bins:      bins,
		MinLength: minLen,
		MaxLength: maxLen,
		BinWidth:  binWidth,
		NumBins:   numBins,
	}, nil
}

func (h *LengthHistogram) String() string {
	var b strings.Builder
	b.WriteString("Length Histogram:\n")
	for i := 0; i < h.NumBins; i++ {
		start := h.MinLength + i*h.BinWidth
		fmt.Fprintf(&b, "%5d-%5d: %s (%d)\n", start, start+h.BinWidth, strings.Repeat("#", h.Bins[i]), h.Bins[i])
	}
	return b.String()
}
