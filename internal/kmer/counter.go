// Package kmer provides peptide k-mer counting and analysis functionality.
//
// K-mers are runs of k consecutive amino acids. Modifications are ignored
// and isoleucine may be folded onto leucine, since both have the same
// composition and cannot be told apart by mass.
package kmer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rusteomics/mzalign/internal/sequence"
)

// FoldIsobaric replaces isoleucine with leucine.
func FoldIsobaric(residues string) string {
	return strings.ReplaceAll(strings.ToUpper(residues), "I", "L")
}

// KMerCount represents a k-mer and its count.
type KMerCount struct {
	KMer  string
	Count int
}

// Counter provides k-mer counting functionality.
type Counter struct {
	K      int
	Counts map[string]int
	Total  int
	// Fold counts I and L as the same residue.
	Fold bool
}

// NewCounter creates a new k-mer counter with the specified k value.
func NewCounter(k int) (*Counter, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	return &Counter{
		K:      k,
		Counts: make(map[string]int),
		Total:  0,
	}, nil
}

func (c *Counter) normalize(kmer string) string {
	if c.Fold {
		return FoldIsobaric(kmer)
	}
	return strings.ToUpper(kmer)
}

// Add adds a k-mer count.
func (c *Counter) Add(kmer string, count int) error {
	if len(kmer) != c.K {
		return fmt.Errorf("k-mer length %d doesn't match k=%d", len(kmer), c.K)
	}
	if count <= 0 {
		return fmt.Errorf("count must be positive")
	}

	c.Counts[c.normalize(kmer)] += count
	c.Total += count
	return nil
}

// CountKMers counts all k-mers in a string of one-letter codes.
func (c *Counter) CountKMers(residues string) {
	residues = c.normalize(residues)
	for i := 0; i <= len(residues)-c.K; i++ {
		c.Counts[residues[i:i+c.K]]++
		c.Total++
	}
}

// CountFromPeptide counts all k-mers of a peptide, ignoring modifications.
func (c *Counter) CountFromPeptide(p *sequence.Peptide) {
	c.CountKMers(p.Plain())
}

// GetCount returns the count for a specific k-mer.
func (c *Counter) GetCount(kmer string) (int, error) {
	if len(kmer) != c.K {
		return 0, fmt.Errorf("k-mer length doesn't match k=%d", c.K)
	}
	return c.Counts[c.normalize(kmer)], nil
}

// UniqueCount returns the number of unique k-mers.
func (c *Counter) UniqueCount() int {
	return len(c.Counts)
}

func (c *Counter) sorted(less func(a, b KMerCount) bool) []KMerCount {
	counts := make([]KMerCount, 0, len(c.Counts))
	for kmer, count := range c.Counts {
		counts = append(counts, KMerCount{KMer: kmer, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count == counts[j].Count {
			return counts[i].KMer < counts[j].KMer
		}
		return less(counts[i], counts[j])
	})
	return counts
}

// MostFrequent returns the n most frequent k-mers. Ties are ordered
// alphabetically.
func (c *Counter) MostFrequent(n int) ([]KMerCount, error) {
	if n <= 0 {
		return nil, fmt.Errorf("n must be positive")
	}
	counts := c.sorted(func(a, b KMerCount) bool { return a.Count > b.Count })
	return counts[:min(n, len(counts))], nil
}

// LeastFrequent returns the n least frequent k-mers.
func (c *Counter) LeastFrequent(n int) ([]KMerCount, error) {
	if n <= 0 {
		return nil, fmt.Errorf("n must be positive")
	}
	counts := c.sorted(func(a, b KMerCount) bool { return a.Count < b.Count })
	return counts[:min(n, len(counts))], nil
}

// Frequency calculates the frequency of a k-mer.
func (c *Counter) Frequency(kmer string) (float64, error) {
	if c.Total == 0 {
		return 0.0, nil
	}
	count, err := c.GetCount(kmer)
	if err != nil {
		return 0, err
	}
	return float64(count) / float64(c.Total), nil
}

// FilterByCount returns k-mers with count at or above minCount.
func (c *Counter) FilterByCount(minCount int) ([]KMerCount, error) {
	if minCount <= 0 {
		return nil, fmt.Errorf("min_count must be positive")
	}

	result := make([]KMerCount, 0)
	for kmer, count := range c.Counts {
		if count >= minCount {
			result = append(result, KMerCount{KMer: kmer, Count: count})
		}
	}
	return result, nil
}

// Merge merges another Counter into this one.
func (c *Counter) Merge(other *Counter) error {
	if c.K != other.K {
		return fmt.Errorf("k values must match")
	}
	if c.Fold != other.Fold {
		return fmt.Errorf("isobaric folding must match")
	}

	for kmer, count := range other.Counts {
		c.Counts[kmer] += count
		c.Total += count
	}
	return nil
}

func (c *Counter) String() string {
	return fmt.Sprintf("KMerCounter { k: %d, unique: %d, total: %d }", c.K, c.UniqueCount(), c.Total)
}

// CountKMers counts all k-mers in a peptide.
func CountKMers(p *sequence.Peptide, k int) (*Counter, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}
	if k > p.Len() {
		return nil, fmt.Errorf("k cannot exceed peptide length")
	}

	counter, err := NewCounter(k)
	if err != nil {
		return nil, err
	}
	counter.CountFromPeptide(p)
	return counter, nil
}

// MostFrequentKMers returns the n most frequent k-mers.
func MostFrequentKMers(p *sequence.Peptide, k, n int) ([]KMerCount, error) {
	counter, err := CountKMers(p, k)
	if err != nil {
		return nil, err
	}
	return counter.MostFrequent(n)
}

// FindUniqueKMers finds k-mers occurring exactly once, in sorted order.
func FindUniqueKMers(p *sequence.Peptide, k int) ([]string, error) {
	counter, err := CountKMers(p, k)
	if err != nil {
		return nil, err
	}

	result := make([]string, 0)
	for kmer, count := range counter.Counts {
		if count == 1 {
			result = append(result, kmer)
		}
	}
	sort.Strings(result)
	return result, nil
}

// KMerSpectrum returns, for every occurring count, how many k-mers have
// that count. The KMer field holds the count as text.
func KMerSpectrum(p *sequence.Peptide, k int) ([]KMerCount, error) {
	counter, err := CountKMers(p, k)
	if err != nil {
		return nil, err
	}

	spectrumMap := make(map[int]int)
	for _, count := range counter.Counts {
		spectrumMap[count]++
	}

	counts := make([]int, 0, len(spectrumMap))
	for count := range spectrumMap {
		counts = append(counts, count)
	}
	sort.Ints(counts)

	result := make([]KMerCount, 0, len(counts))
	for _, count := range counts {
		result = append(result, KMerCount{KMer: fmt.Sprint(count), Count: spectrumMap[count]})
	}
	return result, nil
}

// KMerPositions finds all positions of a k-mer in a peptide.
func KMerPositions(p *sequence.Peptide, kmer string) ([]int, error) {
	if len(kmer) == 0 {
		return nil, fmt.Errorf("k-mer cannot be empty")
	}
	if len(kmer) > p.Len() {
		return nil, fmt.Errorf("k-mer cannot be longer than peptide")
	}

	kmer = strings.ToUpper(kmer)
	plain := p.Plain()
	positions := make([]int, 0)
	for i := 0; i <= len(plain)-len(kmer); i++ {
		if plain[i:i+len(kmer)] == kmer {
			positions = append(positions, i)
		}
	}
	return positions, nil
}
