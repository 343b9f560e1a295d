package handlers

import (
	"net/http"

	"github.com/rusteomics/mzalign/pkg/mzalign"
)

// SequenceRequest represents a request with a peptide.
type SequenceRequest struct {
	Sequence string `json:"sequence"`
	Charge   int    `json:"charge,omitempty"`
}

// MassResponse represents the response for mass calculation.
type MassResponse struct {
	Sequence         string  `json:"sequence"`
	Formula          string  `json:"formula"`
	MonoisotopicMass float64 `json:"monoisotopic_mass"`
	Charge           int     `json:"charge"`
	MZ               float64 `json:"mz"`
}

// MassHandler handles mass calculation requests.
func MassHandler(w http.ResponseWriter, r *http.Request) {
	var req SequenceRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Charge == 0 {
		req.Charge = 1
	}
	if req.Charge < 0 {
		writeError(w, http.StatusBadRequest, "charge must be positive")
		return
	}

	p, err := mzalign.NewPeptide(req.Sequence)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, MassResponse{
		Sequence:         p.String(),
		Formula:          p.Formula().String(),
		MonoisotopicMass: p.MonoisotopicMass(),
		Charge:           req.Charge,
		MZ:               p.MZ(req.Charge),
	})
}

// ValidateResponse represents the response for validation.
type ValidateResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidateHandler handles peptide validation requests.
func ValidateHandler(w http.ResponseWriter, r *http.Request) {
	var req SequenceRequest
	if !decode(w, r, &req) {
		return
	}

	_, err := mzalign.NewPeptide(req.Sequence)
	resp := ValidateResponse{Valid: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// PeptideStatsResponse represents the response for peptide statistics.
type PeptideStatsResponse struct {
	Length           int            `json:"length"`
	MonoisotopicMass float64        `json:"monoisotopic_mass"`
	Formula          string         `json:"formula"`
	ModifiedCount    int            `json:"modified_count"`
	Composition      map[string]int `json:"composition"`
}

// PeptideStatsHandler handles peptide statistics requests.
func PeptideStatsHandler(w http.ResponseWriter, r *http.Request) {
	var req SequenceRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := mzalign.NewPeptide(req.Sequence)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s := mzalign.PeptideStats(p)
	composition := make(map[string]int, len(s.Composition))
	for aa, n := range s.Composition {
		composition[aa.String()] = n
	}
	writeJSON(w, http.StatusOK, PeptideStatsResponse{
		Length:           s.Length,
		MonoisotopicMass: s.MonoisotopicMass,
		Formula:          s.Formula.String(),
		ModifiedCount:    s.ModifiedCount,
		Composition:      composition,
	})
}
