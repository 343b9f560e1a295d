package handlers

import (
	"net/http"

	"github.com/rusteomics/mzalign/internal/kmer"
	"github.com/rusteomics/mzalign/pkg/mzalign"
)

// KMerRequest represents a k-mer count request.
type KMerRequest struct {
	Sequence string `json:"sequence"`
	K        int    `json:"k"`
	Fold     bool   `json:"fold,omitempty"`
}

// KMerCountResponse represents the response for k-mer counting.
type KMerCountResponse struct {
	K           int            `json:"k"`
	UniqueCount int            `json:"unique_count"`
	TotalCount  int            `json:"total_count"`
	Counts      map[string]int `json:"counts"`
}

// KMerCountHandler handles k-mer counting requests.
func KMerCountHandler(w http.ResponseWriter, r *http.Request) {
	var req KMerRequest
	if !decode(w, r, &req) {
		return
	}
	if req.K <= 0 {
		writeError(w, http.StatusBadRequest, "k must be positive")
		return
	}

	p, err := mzalign.NewPeptide(req.Sequence)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	counter, err := kmer.NewCounter(req.K)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	counter.Fold = req.Fold
	counter.CountFromPeptide(p)

	writeJSON(w, http.StatusOK, KMerCountResponse{
		K:           req.K,
		UniqueCount: counter.UniqueCount(),
		TotalCount:  counter.Total,
		Counts:      counter.Counts,
	})
}

// MostFrequentRequest represents a most frequent k-mers request.
type MostFrequentRequest struct {
	Sequence string `json:"sequence"`
	K        int    `json:"k"`
	N        int    `json:"n"`
}

// KMerItem represents a k-mer and its count.
type KMerItem struct {
	KMer  string `json:"kmer"`
	Count int    `json:"count"`
}

// MostFrequentResponse represents the response for most frequent k-mers.
type MostFrequentResponse struct {
	KMers []KMerItem `json:"kmers"`
}

// MostFrequentKMersHandler handles most frequent k-mers requests.
func MostFrequentKMersHandler(w http.ResponseWriter, r *http.Request) {
	var req MostFrequentRequest
	if !decode(w, r, &req) {
		return
	}
	if req.N <= 0 {
		req.N = 10
	}

	p, err := mzalign.NewPeptide(req.Sequence)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	counts, err := kmer.MostFrequentKMers(p, req.K, req.N)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items := make([]KMerItem, len(counts))
	for i, c := range counts {
		items[i] = KMerItem{KMer: c.KMer, Count: c.Count}
	}
	writeJSON(w, http.StatusOK, MostFrequentResponse{KMers: items})
}

// KMerDistanceRequest represents a k-mer comparison of two peptides.
type KMerDistanceRequest struct {
	SequenceA string `json:"sequence_a"`
	SequenceB string `json:"sequence_b"`
	K         int    `json:"k"`
}

// KMerDistanceResponse represents the response for k-mer comparisons.
type KMerDistanceResponse struct {
	Jaccard float64  `json:"jaccard_distance"`
	Cosine  float64  `json:"cosine_distance"`
	Shared  []string `json:"shared"`
}

// KMerDistanceHandler handles k-mer distance requests.
func KMerDistanceHandler(w http.ResponseWriter, r *http.Request) {
	var req KMerDistanceRequest
	if !decode(w, r, &req) {
		return
	}

	a, err := mzalign.NewPeptide(req.SequenceA)
	if err != nil {
		writeError(w, http.StatusBadRequest, "sequence_a: "+err.Error())
		return
	}
	b, err := mzalign.NewPeptide(req.SequenceB)
	if err != nil {
		writeError(w, http.StatusBadRequest, "sequence_b: "+err.Error())
		return
	}

	jaccard, err := kmer.JaccardDistance(a, b, req.K)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cosine, err := kmer.CosineDistance(a, b, req.K)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	shared, err := kmer.SharedKMers(a, b, req.K)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if shared == nil {
		shared = []string{}
	}
	writeJSON(w, http.StatusOK, KMerDistanceResponse{Jaccard: jaccard, Cosine: cosine, Shared: shared})
}
