// Package index holds a library of peptides prepared for repeated alignment
// and searches it with one query at a time.
//
// Every entry keeps its window masses cached after the first search and a
// folded k-mer set used to skip entries that share too little with the
// query before the full alignment runs.
package index

import (
	"fmt"
	"sync"

	"github.com/exascience/pargo/parallel"
	"github.com/rusteomics/mzalign/internal/alignment"
	"github.com/rusteomics/mzalign/internal/kmer"
	"github.com/rusteomics/mzalign/internal/quality"
	"github.com/rusteomics/mzalign/internal/sequence"
)

// DefaultK is the k-mer length of the prefilter.
const DefaultK = 3

// Entry is one peptide of the index.
type Entry struct {
	Peptide *sequence.Peptide
	cached  *alignment.Cached
	kmers   *kmer.Set
}

// Index is a library of peptides. It is safe for concurrent searches;
// Add must not run concurrently with Search.
type Index struct {
	K       int
	entries []*Entry
}

// New builds an index with prefilter k-mers of length k.
func New(peptides []*sequence.Peptide, k int) (*Index, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}
	ix := &Index{K: k, entries: make([]*Entry, 0, len(peptides))}
	for _, p := range peptides {
		if err := ix.Add(p); err != nil {
			return nil, err
		}
	}
	return ix, nil
}

// Add appends a peptide to the index.
func (ix *Index) Add(p *sequence.Peptide) error {
	if p == nil || p.Len() == 0 {
		return fmt.Errorf("cannot index an empty peptide")
	}
	set, err := kmer.NewSet(p, ix.K)
	if err != nil {
		return err
	}
	ix.entries = append(ix.entries, &Entry{
		Peptide: p,
		cached:  alignment.NewCached(alignment.NewSingle(p)),
		kmers:   set,
	})
	return nil
}

// Len returns the number of entries.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Entry returns the peptide at position i.
func (ix *Index) Entry(i int) (*sequence.Peptide, bool) {
	if i < 0 || i >= len(ix.entries) {
		return nil, false
	}
	return ix.entries[i].Peptide, true
}

// SearchOptions configures a search.
type SearchOptions struct {
	Alignment alignment.Options
	// MinSharedKMers skips entries sharing fewer k-mers with the query.
	// Zero aligns against every entry.
	MinSharedKMers int
	// Filter drops hits that fail it. Nil keeps every hit.
	Filter *quality.Filter
	// Limit keeps only the best hits. Zero keeps all.
	Limit int
	// Batches is the number of parallel batches, zero picks a default.
	Batches int
}

// DefaultSearchOptions aligns with the default options, global in the
// query and local in the entries.
func DefaultSearchOptions() SearchOptions {
	opts := alignment.DefaultOptions()
	opts.Type = alignment.GlobalA
	return SearchOptions{
		Alignment:      opts,
		MinSharedKMers: 1,
		Filter:         quality.DefaultFilter(),
	}
}

// Hit is the alignment of the query against one entry.
type Hit struct {
	Entry       int
	Peptide     *sequence.Peptide
	Alignment   *alignment.MultipleSequenceAlignment
	SharedKMers int
	Score       float64
}

// Search aligns query against every entry passing the prefilter and
// returns the hits ordered by normalised score, then absolute score, then
// entry position.
func (ix *Index) Search(query *sequence.Peptide, opts SearchOptions) ([]Hit, error) {
	if query == nil || query.Len() == 0 {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if err := opts.Alignment.Validate(); err != nil {
		return nil, err
	}
	if opts.Filter != nil {
		if err := opts.Filter.Validate(); err != nil {
			return nil, err
		}
	}

	querySet, err := kmer.NewSet(query, ix.K)
	if err != nil {
		return nil, err
	}

	candidates := make([]Hit, 0, len(ix.entries))
	for i, e := range ix.entries {
		shared := querySet.Shared(e.kmers)
		if shared < opts.MinSharedKMers {
			continue
		}
		candidates = append(candidates, Hit{Entry: i, Peptide: e.Peptide, SharedKMers: shared})
	}
	if len(candidates) == 0 {
		return []Hit{}, nil
	}

	q := alignment.NewCached(alignment.NewSingle(query))
	var (
		mu       sync.Mutex
		firstErr error
	)
	parallel.Range(0, len(candidates), opts.Batches, func(low, high int) {
		for c := low; c < high; c++ {
			msa, err := alignment.Align(q, ix.entries[candidates[c].Entry].cached, opts.Alignment)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("aligning entry %d: %w", candidates[c].Entry, err)
				}
				mu.Unlock()
				return
			}
			candidates[c].Alignment = msa
			candidates[c].Score = quality.HitScore(msa)
		}
	})
	if firstErr != nil {
		return nil, firstErr
	}

	hits := make([]Hit, 0, len(candidates))
	for _, h := range candidates {
		if opts.Filter != nil {
			result, err := opts.Filter.Check(h.Alignment)
			if err != nil {
				return nil, err
			}
			if !result.Passed {
				continue
			}
		}
		hits = append(hits, h)
	}

	SortHits(hits)
	if opts.Limit > 0 && len(hits) > opts.Limit {
		hits = hits[:opts.Limit]
	}
	return hits, nil
}
