package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rusteomics/mzalign/internal/store"
	"github.com/rusteomics/mzalign/pkg/mzalign"
)

// OptionsRequest overrides parts of the server profile for one request.
type OptionsRequest struct {
	Type      string `json:"type,omitempty"`
	Steps     int    `json:"steps,omitempty"`
	Tolerance string `json:"tolerance,omitempty"`
	Matrix    string `json:"matrix,omitempty"`
}

// AlignRequest represents a pairwise alignment request.
type AlignRequest struct {
	SequenceA string `json:"sequence_a"`
	SequenceB string `json:"sequence_b"`
	OptionsRequest
	Save bool `json:"save,omitempty"`
}

// PlacementResponse is one sequence of an alignment.
type PlacementResponse struct {
	ID              string  `json:"id,omitempty"`
	Sequence        string  `json:"sequence"`
	Start           int     `json:"start"`
	Line            string  `json:"line"`
	Score           int     `json:"score"`
	NormalisedScore float64 `json:"normalised_score"`
}

// AlignmentResponse represents an alignment.
type AlignmentResponse struct {
	ID        int64               `json:"id,omitempty"`
	Type      string              `json:"type"`
	Score     int                 `json:"score"`
	MaxStep   int                 `json:"max_step"`
	ShortPath string              `json:"short_path"`
	Sequences []PlacementResponse `json:"sequences"`
}

func newAlignmentResponse(msa *mzalign.Alignment) AlignmentResponse {
	resp := AlignmentResponse{
		Type:      msa.Type.String(),
		Score:     msa.Score,
		MaxStep:   msa.MaxStep,
		ShortPath: msa.ShortPath(),
		Sequences: make([]PlacementResponse, len(msa.Sequences)),
	}
	for i := range msa.Sequences {
		p := &msa.Sequences[i]
		resp.Sequences[i] = PlacementResponse{
			ID:              p.Sequence.ID,
			Sequence:        p.Sequence.String(),
			Start:           p.Start,
			Line:            p.Render(),
			Score:           p.Score,
			NormalisedScore: p.NormalisedScore,
		}
	}
	return resp
}

// AlignmentHandler serves alignment requests against a base profile and an
// optional store.
type AlignmentHandler struct {
	Config *mzalign.Config
	Store  *mzalign.Store
}

// NewAlignmentHandler creates a handler. A nil config uses the defaults,
// a nil store disables saving.
func NewAlignmentHandler(cfg *mzalign.Config, s *mzalign.Store) *AlignmentHandler {
	if cfg == nil {
		cfg = mzalign.DefaultConfig()
	}
	return &AlignmentHandler{Config: cfg, Store: s}
}

func (h *AlignmentHandler) options(req OptionsRequest) (mzalign.Options, error) {
	cfg := *h.Config
	if req.Type != "" {
		cfg.Type = req.Type
	}
	if req.Steps != 0 {
		cfg.Steps = req.Steps
	}
	if req.Tolerance != "" {
		cfg.Scoring.Tolerance = req.Tolerance
	}
	if req.Matrix != "" {
		cfg.Scoring.Matrix = req.Matrix
		cfg.Scoring.MatrixFile = ""
	}
	return cfg.Options()
}

// Align handles pairwise alignment requests.
func (h *AlignmentHandler) Align(w http.ResponseWriter, r *http.Request) {
	var req AlignRequest
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
	opts, err := h.options(req.OptionsRequest)
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}

	msa, err := mzalign.Align(a, b, opts)
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}

	resp := newAlignmentResponse(msa)
	if req.Save {
		if h.Store == nil {
			writeError(w, http.StatusServiceUnavailable, "no alignment store configured")
			return
		}
		id, err := h.Store.Save(msa)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.ID = id
	}

	writeJSON(w, http.StatusOK, resp)
}

// ScoreResponse represents the response for score-only requests.
type ScoreResponse struct {
	Score           int       `json:"score"`
	ShortPath       string    `json:"short_path"`
	NormalisedScore []float64 `json:"normalised_score"`
	Identity        float64   `json:"identity"`
	Similarity      float64   `json:"similarity"`
	Gaps            int       `json:"gaps"`
}

// Score handles alignment score requests.
func (h *AlignmentHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req AlignRequest
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
	opts, err := h.options(req.OptionsRequest)
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}

	msa, err := mzalign.Align(a, b, opts)
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	s, err := mzalign.AlignmentStats(msa)
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ScoreResponse{
		Score:           msa.Score,
		ShortPath:       msa.ShortPath(),
		NormalisedScore: []float64{msa.Sequences[0].NormalisedScore, msa.Sequences[1].NormalisedScore},
		Identity:        s.IdentityRatio(),
		Similarity:      s.SimilarityRatio(),
		Gaps:            s.Gaps,
	})
}

// MultiRequest represents a progressive multiple alignment request.
type MultiRequest struct {
	Sequences   []string `json:"sequences"`
	MaxDistance float64  `json:"max_distance,omitempty"`
	OptionsRequest
}

// ClusterResponse is one group of the multiple alignment.
type ClusterResponse struct {
	Members   []int              `json:"members"`
	Alignment *AlignmentResponse `json:"alignment,omitempty"`
}

// MultiResponse represents the result of a multiple alignment.
type MultiResponse struct {
	Clusters []ClusterResponse `json:"clusters"`
	Merges   int               `json:"merges"`
}

// Multi handles progressive multiple alignment requests.
func (h *AlignmentHandler) Multi(w http.ResponseWriter, r *http.Request) {
	var req MultiRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Sequences) == 0 {
		writeError(w, http.StatusBadRequest, "at least one sequence required")
		return
	}

	peptides := make([]*mzalign.Peptide, len(req.Sequences))
	for i, s := range req.Sequences {
		p, err := mzalign.NewPeptide(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "sequence "+strconv.Itoa(i)+": "+err.Error())
			return
		}
		peptides[i] = p
	}

	opts := mzalign.DefaultMultiOptions()
	var err error
	if opts.Alignment, err = h.options(req.OptionsRequest); err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	if req.MaxDistance > 0 {
		opts.MaxDistance = req.MaxDistance
	} else if h.Config.MaxDistance > 0 {
		opts.MaxDistance = h.Config.MaxDistance
	}

	result, err := mzalign.AlignMany(peptides, opts)
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}

	resp := MultiResponse{Clusters: make([]ClusterResponse, len(result.Clusters)), Merges: len(result.Merges)}
	for i, c := range result.Clusters {
		resp.Clusters[i].Members = c.Members
		if c.Alignment != nil {
			a := newAlignmentResponse(c.Alignment)
			resp.Clusters[i].Alignment = &a
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// SummaryResponse describes a stored alignment.
type SummaryResponse struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Score     int    `json:"score"`
	ShortPath string `json:"short_path"`
	Sequences int    `json:"sequences"`
	Created   string `json:"created"`
}

// List handles listing of stored alignments.
func (h *AlignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "no alignment store configured")
		return
	}
	summaries, err := h.Store.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := make([]SummaryResponse, len(summaries))
	for i, s := range summaries {
		resp[i] = SummaryResponse{
			ID:        s.ID,
			Type:      s.Type,
			Score:     s.Score,
			ShortPath: s.ShortPath,
			Sequences: s.Sequences,
			Created:   s.Created.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles fetching a stored alignment by id.
func (h *AlignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "no alignment store configured")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid alignment id")
		return
	}

	msa, err := h.Store.Load(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := newAlignmentResponse(msa)
	resp.ID = id
	writeJSON(w, http.StatusOK, resp)
}
