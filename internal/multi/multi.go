// Package multi builds multiple alignments of many peptides by repeatedly
// aligning the two closest clusters, each cluster being the profile produced
// by earlier merges.
package multi

import (
	"fmt"
	"math"
	"sync"

	"github.com/exascience/pargo/parallel"
	"github.com/rusteomics/mzalign/internal/alignment"
	"github.com/rusteomics/mzalign/internal/sequence"
)

// Options configures a progressive alignment.
type Options struct {
	Alignment alignment.Options
	// MaxDistance stops merging once the closest clusters are further
	// apart than this.
	MaxDistance float64
	// Batches is the number of parallel batches for the distance matrix,
	// zero picks a default.
	Batches int
}

// DefaultOptions merges everything into one alignment.
func DefaultOptions() Options {
	return Options{
		Alignment:   alignment.DefaultOptions(),
		MaxDistance: math.Inf(1),
	}
}

// Distance is one minus the mean normalised score of the alignment of a
// and b. Identical peptides are at distance 0.
func Distance(msa *alignment.MultipleSequenceAlignment) float64 {
	if len(msa.Sequences) == 0 {
		return 1
	}
	sum := 0.0
	for _, p := range msa.Sequences {
		sum += p.NormalisedScore
	}
	return 1 - sum/float64(len(msa.Sequences))
}

// DistanceMatrix aligns every pair of peptides and returns their distances.
func DistanceMatrix(peptides []*sequence.Peptide, opts Options) ([][]float64, error) {
	n := len(peptides)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}
	if n < 2 {
		return matrix, nil
	}

	singles := make([]alignment.Alignable, n)
	for i, p := range peptides {
		singles[i] = alignment.NewCached(alignment.NewSingle(p))
	}

	type pair struct{ i, j int }
	pairs := make([]pair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, pair{i, j})
		}
	}

	var (
		mu       sync.Mutex
		firstErr error
	)
	parallel.Range(0, len(pairs), opts.Batches, func(low, high int) {
		for k := low; k < high; k++ {
			p := pairs[k]
			msa, err := alignment.Align(singles[p.i], singles[p.j], opts.Alignment)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("aligning %d against %d: %w", p.i, p.j, err)
				}
				mu.Unlock()
				return
			}
			d := Distance(msa)
			matrix[p.i][p.j] = d
			matrix[p.j][p.i] = d
		}
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return matrix, nil
}

// Cluster is a group of peptides aligned together. Alignment is nil for a
// cluster of one peptide.
type Cluster struct {
	Members   []int
	Alignment *alignment.MultipleSequenceAlignment
	alignable alignment.Alignable
}

// Alignable returns the cluster as input for a further alignment.
func (c *Cluster) Alignable() alignment.Alignable {
	return c.alignable
}

// Merge records one step of the progressive alignment.
type Merge struct {
	Left, Right []int
	Distance    float64
}

// Result is the outcome of a progressive alignment.
type Result struct {
	Clusters  []*Cluster
	Merges    []Merge
	Distances [][]float64
}

// linkage is the mean distance between the members of two clusters.
func linkage(distances [][]float64, a, b *Cluster) float64 {
	sum := 0.0
	for _, i := range a.Members {
		for _, j := range b.Members {
			sum += distances[i][j]
		}
	}
	return sum / float64(len(a.Members)*len(b.Members))
}

// Progressive aligns the peptides by average linkage: the two clusters
// with the smallest mean pairwise distance are aligned profile against
// profile until one cluster remains or the closest pair is further apart
// than opts.MaxDistance. Ties go to the earliest pair.
func Progressive(peptides []*sequence.Peptide, opts Options) (*Result, error) {
	if len(peptides) == 0 {
		return nil, fmt.Errorf("peptide list cannot be empty")
	}
	if err := opts.Alignment.Validate(); err != nil {
		return nil, err
	}
	for i, p := range peptides {
		if p == nil || p.Len() == 0 {
			return nil, fmt.Errorf("peptide %d is empty", i)
		}
	}

	distances, err := DistanceMatrix(peptides, opts)
	if err != nil {
		return nil, err
	}

	clusters := make([]*Cluster, len(peptides))
	for i, p := range peptides {
		clusters[i] = &Cluster{Members: []int{i}, alignable: alignment.NewSingle(p)}
	}
	result := &Result{Distances: distances}

	for len(clusters) > 1 {
		bestI, bestJ := -1, -1
		best := math.Inf(1)
		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				if d := linkage(distances, clusters[i], clusters[j]); d < best {
					best, bestI, bestJ = d, i, j
				}
			}
		}
		if bestI < 0 || best > opts.MaxDistance {
			break
		}

		left, right := clusters[bestI], clusters[bestJ]
		msa, err := alignment.Align(left.alignable, right.alignable, opts.Alignment)
		if err != nil {
			return nil, fmt.Errorf("merging clusters %v and %v: %w", left.Members, right.Members, err)
		}
		merged := &Cluster{
			Members:   append(append([]int(nil), left.Members...), right.Members...),
			Alignment: msa,
			alignable: msa,
		}
		result.Merges = append(result.Merges, Merge{Left: left.Members, Right: right.Members, Distance: best})

		clusters[bestI] = merged
		clusters = append(clusters[:bestJ], clusters[bestJ+1:]...)
	}

	result.Clusters = clusters
	return result, nil
}
