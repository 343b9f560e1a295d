// Package middleware holds HTTP middleware shared by the mzalign server.
package middleware

import (
	"log"
	"net/http"
	"os"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger logs one line per request with the request id, status,
// response size and duration.
type RequestLogger struct {
	Logger *log.Logger
}

// NewRequestLogger creates a request logger writing to l. A nil logger
// writes to stderr.
func NewRequestLogger(l *log.Logger) *RequestLogger {
	if l == nil {
		l = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &RequestLogger{Logger: l}
}

// Handler wraps next.
func (rl *RequestLogger) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			id := chimiddleware.GetReqID(r.Context())
			if id == "" {
				id = "-"
			}
			rl.Logger.Printf("[%s] %s %s %d %dB %s", id, r.Method, r.URL.Path, status, ww.BytesWritten(), time.Since(start))
		}()

		next.ServeHTTP(ww, r)
	})
}

// Logger logs requests to stderr.
func Logger(next http.Handler) http.Handler {
	return NewRequestLogger(nil).Handler(next)
}
