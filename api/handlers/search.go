package handlers

import (
	"net/http"

	"github.com/rusteomics/mzalign/pkg/mzalign"
)

// SearchHandler searches a peptide library.
type SearchHandler struct {
	Index   *mzalign.Index
	Options mzalign.SearchOptions
}

// NewSearchHandler creates a handler searching ix with the search settings
// of cfg. A nil config uses the defaults.
func NewSearchHandler(ix *mzalign.Index, cfg *mzalign.Config) (*SearchHandler, error) {
	if cfg == nil {
		cfg = mzalign.DefaultConfig()
	}
	opts, err := cfg.SearchOptions()
	if err != nil {
		return nil, err
	}
	return &SearchHandler{Index: ix, Options: opts}, nil
}

// SearchRequest represents a library search.
type SearchRequest struct {
	Sequence string `json:"sequence"`
	Limit    int    `json:"limit,omitempty"`
}

// HitResponse is one library match.
type HitResponse struct {
	Entry       int               `json:"entry"`
	ID          string            `json:"id,omitempty"`
	Sequence    string            `json:"sequence"`
	Score       float64           `json:"score"`
	SharedKMers int               `json:"shared_kmers"`
	Alignment   AlignmentResponse `json:"alignment"`
}

// SearchResponse represents the result of a library search.
type SearchResponse struct {
	LibrarySize int           `json:"library_size"`
	Hits        []HitResponse `json:"hits"`
}

// Search handles library search requests.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Limit < 0 {
		writeError(w, http.StatusBadRequest, "limit cannot be negative")
		return
	}

	query, err := mzalign.NewPeptide(req.Sequence)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := h.Options
	if req.Limit > 0 {
		opts.Limit = req.Limit
	}
	hits, err := h.Index.Search(query, opts)
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}

	resp := SearchResponse{LibrarySize: h.Index.Len(), Hits: make([]HitResponse, len(hits))}
	for i, hit := range hits {
		resp.Hits[i] = HitResponse{
			Entry:       hit.Entry,
			ID:          hit.Peptide.ID,
			Sequence:    hit.Peptide.String(),
			Score:       hit.Score,
			SharedKMers: hit.SharedKMers,
			Alignment:   newAlignmentResponse(hit.Alignment),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
