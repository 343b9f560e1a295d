package index

import (
	"sort"

	psort "github.com/exascience/pargo/sort"
)

func better(a, b *Hit) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Alignment.Score != b.Alignment.Score {
		return a.Alignment.Score > b.Alignment.Score
	}
	return a.Entry < b.Entry
}

// HitSorter implements psort.StableSorter for hits.
type HitSorter []Hit

// SequentialSort implements the method of the SequentialSorter interface.
func (s HitSorter) SequentialSort(i, j int) {
	hits := s[i:j]
	sort.SliceStable(hits, func(i, j int) bool {
		return better(&hits[i], &hits[j])
	})
}

// NewTemp implements the method of the StableSorter interface.
func (s HitSorter) NewTemp() psort.StableSorter {
	return make(HitSorter, len(s))
}

// Len implements the method of the sort.Interface.
func (s HitSorter) Len() int {
	return len(s)
}

// Less implements the method of the sort.Interface.
func (s HitSorter) Less(i, j int) bool {
	return better(&s[i], &s[j])
}

// Assign implements the method of the StableSorter interface.
func (s HitSorter) Assign(p psort.StableSorter) func(i, j, len int) {
	dst, src := s, p.(HitSorter)
	return func(i, j, len int) {
		copy(dst[i:i+len], src[j:j+len])
	}
}

// SortHits orders hits best first.
func SortHits(hits []Hit) {
	psort.StableSort(HitSorter(hits))
}
