package handlers

import (
	"net/http"

	"github.com/rusteomics/mzalign/internal/quality"
)

// QualityRequest carries normalised alignment scores.
type QualityRequest struct {
	Scores []float64 `json:"scores"`
}

// QualityStatsResponse represents the response for score statistics.
type QualityStatsResponse struct {
	Count            int     `json:"count"`
	MinScore         float64 `json:"min_score"`
	MaxScore         float64 `json:"max_score"`
	Mean             float64 `json:"mean"`
	Median           float64 `json:"median"`
	HighQualityRatio float64 `json:"high_quality_ratio"`
	Category         string  `json:"category"`
}

// QualityStatsHandler handles score statistics requests.
func QualityStatsHandler(w http.ResponseWriter, r *http.Request) {
	var req QualityRequest
	if !decode(w, r, &req) {
		return
	}

	scores, err := quality.New(req.Scores)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s := scores.Statistics()
	writeJSON(w, http.StatusOK, QualityStatsResponse{
		Count:            s.Count,
		MinScore:         s.MinScore,
		MaxScore:         s.MaxScore,
		Mean:             s.Mean,
		Median:           s.Median,
		HighQualityRatio: s.HighQualityRatio,
		Category:         s.Category.String(),
	})
}

// ClassifyResponse maps every score to its category.
type ClassifyResponse struct {
	Categories []string `json:"categories"`
}

// ClassifyHandler handles score classification requests.
func ClassifyHandler(w http.ResponseWriter, r *http.Request) {
	var req QualityRequest
	if !decode(w, r, &req) {
		return
	}
	if _, err := quality.New(req.Scores); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	categories := make([]string, len(req.Scores))
	for i, s := range req.Scores {
		categories[i] = quality.Classify(s).String()
	}
	writeJSON(w, http.StatusOK, ClassifyResponse{Categories: categories})
}
