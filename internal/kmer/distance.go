package kmer

import (
	"fmt"
	"math"
	"sort"

	"github.com/rusteomics/mzalign/internal/sequence"
)

// Set is the distinct k-mers of one peptide, used to prefilter candidates
// before running a full alignment.
type Set struct {
	K     int
	kmers map[string]struct{}
}

// NewSet collects the k-mers of p with isoleucine folded onto leucine. A
// peptide shorter than k yields an empty set.
func NewSet(p *sequence.Peptide, k int) (*Set, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}
	s := &Set{K: k, kmers: make(map[string]struct{})}
	plain := FoldIsobaric(p.Plain())
	for i := 0; i <= len(plain)-k; i++ {
		s.kmers[plain[i:i+k]] = struct{}{}
	}
	return s, nil
}

// Len returns the number of distinct k-mers.
func (s *Set) Len() int {
	return len(s.kmers)
}

// Shared counts the k-mers present in both sets.
func (s *Set) Shared(other *Set) int {
	small, large := s, other
	if small.Len() > large.Len() {
		small, large = large, small
	}
	shared := 0
	for kmer := range small.kmers {
		if _, ok := large.kmers[kmer]; ok {
			shared++
		}
	}
	return shared
}

// Jaccard returns the Jaccard similarity of the two sets. Two empty sets
// are considered identical.
func (s *Set) Jaccard(other *Set) float64 {
	shared := s.Shared(other)
	union := s.Len() + other.Len() - shared
	if union == 0 {
		return 1.0
	}
	return float64(shared) / float64(union)
}

func countBoth(p1, p2 *sequence.Peptide, k int) (*Counter, *Counter, error) {
	if k <= 0 {
		return nil, nil, fmt.Errorf("k must be positive")
	}
	if k > p1.Len() || k > p2.Len() {
		return nil, nil, fmt.Errorf("k cannot exceed peptide lengths")
	}

	counter1, err := CountKMers(p1, k)
	if err != nil {
		return nil, nil, err
	}
	counter2, err := CountKMers(p2, k)
	if err != nil {
		return nil, nil, err
	}
	return counter1, counter2, nil
}

// JaccardDistance calculates the Jaccard distance between two peptides.
//
// Jaccard distance = 1 - (intersection / union)
func JaccardDistance(p1, p2 *sequence.Peptide, k int) (float64, error) {
	counter1, counter2, err := countBoth(p1, p2, k)
	if err != nil {
		return 0, err
	}

	intersection := 0
	for kmer := range counter1.Counts {
		if _, ok := counter2.Counts[kmer]; ok {
			intersection++
		}
	}

	union := len(counter1.Counts) + len(counter2.Counts) - intersection
	if union == 0 {
		return 0.0, nil
	}

	return 1.0 - float64(intersection)/float64(union), nil
}

// SharedKMers finds k-mers shared between two peptides, in sorted order.
func SharedKMers(p1, p2 *sequence.Peptide, k int) ([]string, error) {
	counter1, counter2, err := countBoth(p1, p2, k)
	if err != nil {
		return nil, err
	}

	result := make([]string, 0)
	for kmer := range counter1.Counts {
		if _, ok := counter2.Counts[kmer]; ok {
			result = append(result, kmer)
		}
	}
	sort.Strings(result)
	return result, nil
}

// CosineDistance calculates the cosine distance between k-mer frequency vectors.
//
// Cosine distance = 1 - (dot product / (magnitude1 * magnitude2))
func CosineDistance(p1, p2 *sequence.Peptide, k int) (float64, error) {
	counter1, counter2, err := countBoth(p1, p2, k)
	if err != nil {
		return 0, err
	}

	var dotProduct, mag1, mag2 float64
	for kmer, c1 := range counter1.Counts {
		v1 := float64(c1)
		dotProduct += v1 * float64(counter2.Counts[kmer])
		mag1 += v1 * v1
	}
	for _, c2 := range counter2.Counts {
		mag2 += float64(c2) * float64(c2)
	}

	if mag1 == 0 || mag2 == 0 {
		return 1.0, nil
	}

	cosineSimilarity := dotProduct / (math.Sqrt(mag1) * math.Sqrt(mag2))
	return 1.0 - cosineSimilarity, nil
}

// SimilarityMatrix calculates the pairwise Jaccard distances of peptides.
func SimilarityMatrix(peptides []*sequence.Peptide, k int) ([][]float64, error) {
	n := len(peptides)
	if n == 0 {
		return nil, fmt.Errorf("peptide list cannot be empty")
	}

	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dist, err := JaccardDistance(peptides[i], peptides[j], k)
			if err != nil {
				return nil, err
			}
			matrix[i][j] = dist
			matrix[j][i] = dist
		}
	}

	return matrix, nil
}
