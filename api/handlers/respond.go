// Package handlers provides HTTP handlers for the mzalign API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rusteomics/mzalign/internal/alignment"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusOf maps an error to a status: broken invariants are server errors,
// everything else was caused by the request.
func statusOf(err error) int {
	var invariant *alignment.InvariantError
	if errors.As(err, &invariant) {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
