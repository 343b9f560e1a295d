package middleware

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
)

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    []string
	}{
		{
			name: "implicit ok",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("OK"))
			},
			want: []string{"GET /health 200 2B"},
		},
		{
			name: "explicit status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTeapot)
			},
			want: []string{"GET /health 418 0B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			rl := NewRequestLogger(log.New(&buf, "", 0))

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()
			rl.Handler(tt.handler).ServeHTTP(rec, req)

			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
			assert.Contains(t, buf.String(), "[-]")
		})
	}
}

func TestRequestLoggerRequestID(t *testing.T) {
	var buf bytes.Buffer
	rl := NewRequestLogger(log.New(&buf, "", 0))
	h := chimiddleware.RequestID(rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))

	req := httptest.NewRequest(http.MethodPost, "/api/align", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "abc-123")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), "[abc-123] POST /api/align 200")
}
