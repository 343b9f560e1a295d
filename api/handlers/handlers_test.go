package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rusteomics/mzalign/internal/alignment"
	"github.com/rusteomics/mzalign/pkg/mzalign"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(v))
}

func TestMassHandler(t *testing.T) {
	rec := post(t, MassHandler, `{"sequence": "PEPTIDE", "charge": 2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp MassResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "PEPTIDE", resp.Sequence)
	assert.InDelta(t, 799.359964, resp.MonoisotopicMass, 1e-5)
	assert.Equal(t, 2, resp.Charge)
	assert.InDelta(t, (799.359964+2*1.007276)/2, resp.MZ, 1e-4)

	rec = post(t, MassHandler, `{"sequence": "PEPTIDE", "charge": -1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateHandler(t *testing.T) {
	tests := []struct {
		body  string
		valid bool
	}{
		{`{"sequence": "PEPM[Oxidation]K"}`, true},
		{`{"sequence": "PEPXK"}`, false},
		{`{"sequence": "PEP[K"}`, false},
	}
	for _, tt := range tests {
		rec := post(t, ValidateHandler, tt.body)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp ValidateResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, tt.valid, resp.Valid, tt.body)
		assert.Equal(t, tt.valid, resp.Error == "", tt.body)
	}
}

func TestPeptideStatsHandler(t *testing.T) {
	rec := post(t, PeptideStatsHandler, `{"sequence": "PEPM[Oxidation]K"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PeptideStatsResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, 5, resp.Length)
	assert.Equal(t, 1, resp.ModifiedCount)
	assert.Equal(t, 2, resp.Composition["P"])
}

func TestAlignHandler(t *testing.T) {
	h := NewAlignmentHandler(nil, nil)

	rec := post(t, h.Align, `{"sequence_a": "WGGD", "sequence_b": "WND"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AlignmentResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, 19, resp.Score)
	assert.Equal(t, "global", resp.Type)
	assert.Equal(t, "1=2:1i1=", resp.ShortPath)
	require.Len(t, resp.Sequences, 2)
	assert.Equal(t, "WGGD", resp.Sequences[0].Line)
	assert.Equal(t, "WN"+string(alignment.PaddingRune)+"D", resp.Sequences[1].Line)
	assert.InDelta(t, 19.0/29.0, resp.Sequences[0].NormalisedScore, 1e-9)
	assert.Zero(t, resp.ID)
}

func TestAlignHandlerErrors(t *testing.T) {
	h := NewAlignmentHandler(nil, nil)

	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"bad body", `{`, http.StatusBadRequest, "invalid request body"},
		{"bad peptide", `{"sequence_a": "PEPXK", "sequence_b": "PEP"}`, http.StatusBadRequest, "sequence_a"},
		{"bad type", `{"sequence_a": "PEP", "sequence_b": "PEP", "type": "sideways"}`, http.StatusBadRequest, "type"},
		{"bad tolerance", `{"sequence_a": "PEP", "sequence_b": "PEP", "tolerance": "10"}`, http.StatusBadRequest, "tolerance"},
		{"bad matrix", `{"sequence_a": "PEP", "sequence_b": "PEP", "matrix": "pam30"}`, http.StatusBadRequest, "matrix"},
		{"no store", `{"sequence_a": "PEP", "sequence_b": "PEP", "save": true}`, http.StatusServiceUnavailable, "store"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h.Align, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			var resp ErrorResponse
			decodeBody(t, rec, &resp)
			assert.Contains(t, resp.Error, tt.want)
		})
	}
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusOf(&alignment.ConfigError{Field: "steps"}))
	assert.Equal(t, http.StatusBadRequest, statusOf(errors.New("plain")))
	assert.Equal(t, http.StatusInternalServerError, statusOf(&alignment.InvariantError{}))
}

func TestScoreHandler(t *testing.T) {
	h := NewAlignmentHandler(nil, nil)
	rec := post(t, h.Score, `{"sequence_a": "PEPLK", "sequence_b": "PEPIK"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ScoreResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, 26, resp.Score)
	assert.Equal(t, "3=1:1i1=", resp.ShortPath)
	assert.InDelta(t, 0.8, resp.Identity, 1e-9)
	assert.InDelta(t, 1.0, resp.Similarity, 1e-9)
	assert.Zero(t, resp.Gaps)
	assert.Len(t, resp.NormalisedScore, 2)
}

func TestMultiHandler(t *testing.T) {
	h := NewAlignmentHandler(nil, nil)

	rec := post(t, h.Multi, `{"sequences": ["PEPTIDE", "PEPTLDE", "WWWWWW"], "max_distance": 0.5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp MultiResponse
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Clusters, 2)
	assert.Equal(t, []int{0, 1}, resp.Clusters[0].Members)
	require.NotNil(t, resp.Clusters[0].Alignment)
	assert.Equal(t, "4=1:1i2=", resp.Clusters[0].Alignment.ShortPath)
	assert.Nil(t, resp.Clusters[1].Alignment)
	assert.Equal(t, 1, resp.Merges)

	rec = post(t, h.Multi, `{"sequences": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = post(t, h.Multi, `{"sequences": ["PEP", "X1"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStoredAlignments(t *testing.T) {
	s, err := mzalign.OpenStore(":memory:")
	require.NoError(t, err)
	defer s.Close()
	h := NewAlignmentHandler(nil, s)

	r := chi.NewRouter()
	r.Post("/alignments", h.Align)
	r.Get("/alignments", h.List)
	r.Get("/alignments/{id}", h.Get)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/alignments",
		strings.NewReader(`{"sequence_a": "PEPTK", "sequence_b": "PEPSK", "save": true}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var saved AlignmentResponse
	decodeBody(t, rec, &saved)
	require.Positive(t, saved.ID)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/alignments", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []SummaryResponse
	decodeBody(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)
	assert.Equal(t, "3=1X1=", list[0].ShortPath)
	assert.Equal(t, 24, list[0].Score)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/alignments/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var loaded AlignmentResponse
	decodeBody(t, rec, &loaded)
	assert.Equal(t, saved, loaded)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/alignments/99", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/alignments/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKMerHandlers(t *testing.T) {
	rec := post(t, KMerCountHandler, `{"sequence": "PEPTIDE", "k": 3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var counts KMerCountResponse
	decodeBody(t, rec, &counts)
	assert.Equal(t, 5, counts.TotalCount)
	assert.Equal(t, 5, counts.UniqueCount)
	assert.Equal(t, 1, counts.Counts["PEP"])

	rec = post(t, KMerCountHandler, `{"sequence": "PEPTIDE", "k": 0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, MostFrequentKMersHandler, `{"sequence": "PEPEPEP", "k": 2, "n": 1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var frequent MostFrequentResponse
	decodeBody(t, rec, &frequent)
	require.Len(t, frequent.KMers, 1)
	assert.Equal(t, KMerItem{KMer: "EP", Count: 3}, frequent.KMers[0])

	rec = post(t, KMerDistanceHandler, `{"sequence_a": "PEPTIDE", "sequence_b": "PEPTIDE", "k": 3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var distance KMerDistanceResponse
	decodeBody(t, rec, &distance)
	assert.InDelta(t, 0.0, distance.Jaccard, 1e-9)
	assert.InDelta(t, 0.0, distance.Cosine, 1e-9)
	assert.Len(t, distance.Shared, 5)

	rec = post(t, KMerDistanceHandler, `{"sequence_a": "PEPTIDE", "sequence_b": "WWWW", "k": 3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &distance)
	assert.InDelta(t, 1.0, distance.Jaccard, 1e-9)
	assert.Empty(t, distance.Shared)
}

func TestQualityHandlers(t *testing.T) {
	rec := post(t, QualityStatsHandler, `{"scores": [0.1, 0.5, 0.9]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats QualityStatsResponse
	decodeBody(t, rec, &stats)
	assert.Equal(t, 3, stats.Count)
	assert.InDelta(t, 0.5, stats.Mean, 1e-9)
	assert.InDelta(t, 0.5, stats.Median, 1e-9)

	rec = post(t, QualityStatsHandler, `{"scores": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = post(t, QualityStatsHandler, `{"scores": [1.5]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, ClassifyHandler, `{"scores": [0.1, 0.5, 0.9]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var classes ClassifyResponse
	decodeBody(t, rec, &classes)
	assert.Equal(t, []string{"Poor", "Medium", "Excellent"}, classes.Categories)
}

func TestSearchHandler(t *testing.T) {
	var library []*mzalign.Peptide
	for _, d := range []string{"PEPTIDE", "PEPTIDEK", "WWWWWW", "PEPTLDE"} {
		p, err := mzalign.NewPeptide(d)
		require.NoError(t, err)
		library = append(library, p)
	}
	ix, err := mzalign.NewIndex(library)
	require.NoError(t, err)
	h, err := NewSearchHandler(ix, nil)
	require.NoError(t, err)

	rec := post(t, h.Search, `{"sequence": "PEPTIDE"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp SearchResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, 4, resp.LibrarySize)
	require.Len(t, resp.Hits, 3)
	entries := []int{resp.Hits[0].Entry, resp.Hits[1].Entry, resp.Hits[2].Entry}
	assert.Equal(t, []int{0, 1, 3}, entries)
	assert.Equal(t, "4=1:1i2=", resp.Hits[2].Alignment.ShortPath)

	rec = post(t, h.Search, `{"sequence": "PEPTIDE", "limit": 1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &resp)
	assert.Len(t, resp.Hits, 1)

	rec = post(t, h.Search, `{"sequence": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = post(t, h.Search, `{"sequence": "PEP", "limit": -1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlersDefaultProfile(t *testing.T) {
	h := NewAlignmentHandler(nil, nil)
	assert.Equal(t, mzalign.DefaultConfig(), h.Config)

	ix, err := mzalign.NewIndex(nil)
	require.NoError(t, err)
	search, err := NewSearchHandler(ix, nil)
	require.NoError(t, err)
	assert.Equal(t, mzalign.DefaultSearchOptions().Alignment.Type, search.Options.Alignment.Type)
	assert.Equal(t, 1, search.Options.MinSharedKMers)
}
