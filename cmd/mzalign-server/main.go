// Command mzalign-server provides a REST API for peptide alignment.
//
// Usage:
//
//	mzalign-server [options]
//
// Options:
//
//	-port     Port to listen on (default: 8080)
//	-host     Host to bind to (default: localhost)
//	-config   YAML alignment profile
//	-library  Peptide list served by /api/search
//	-db       SQLite alignment store
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rusteomics/mzalign/api/handlers"
	"github.com/rusteomics/mzalign/api/middleware"
	"github.com/rusteomics/mzalign/internal/index"
	"github.com/rusteomics/mzalign/pkg/mzalign"
)

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	host := flag.String("host", "localhost", "Host to bind to")
	configFile := flag.String("config", "", "YAML alignment profile")
	library := flag.String("library", "", "Peptide list served by /api/search")
	database := flag.String("db", "", "SQLite alignment store")
	flag.Parse()

	cfg, err := mzalign.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Could not load config: %v\n", err)
	}
	if *database != "" {
		cfg.Database = *database
	}

	var store *mzalign.Store
	if cfg.Database != "" {
		store, err = mzalign.OpenStore(cfg.Database)
		if err != nil {
			log.Fatalf("Could not open store %s: %v\n", cfg.Database, err)
		}
		defer store.Close()
		log.Printf("Alignment store at %s\n", cfg.Database)
	}

	var ix *mzalign.Index
	if *library != "" {
		peptides, err := mzalign.ReadPeptides(*library)
		if err != nil {
			log.Fatalf("Could not read library: %v\n", err)
		}
		ix, err = index.New(peptides, cfg.Search.K)
		if err != nil {
			log.Fatalf("Could not index library: %v\n", err)
		}
		log.Printf("Indexed %d peptides from %s\n", ix.Len(), *library)
	}

	r, err := newRouter(cfg, store, ix, middleware.Logger)
	if err != nil {
		log.Fatalf("Could not build routes: %v\n", err)
	}

	addr := fmt.Sprintf("%s:%d", *host, *port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Could not gracefully shutdown: %v\n", err)
		}
		close(done)
	}()

	log.Printf("mzalign API server starting on http://%s\n", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %s: %v\n", addr, err)
	}

	<-done
	log.Println("Server stopped")
}

// newRouter wires the API. Search routes exist only with a library, stored
// alignment routes only with a store.
func newRouter(cfg *mzalign.Config, store *mzalign.Store, ix *mzalign.Index, logger func(http.Handler) http.Handler) (chi.Router, error) {
	alignments := handlers.NewAlignmentHandler(cfg, store)

	var search *handlers.SearchHandler
	if ix != nil {
		var err error
		if search, err = handlers.NewSearchHandler(ix, cfg); err != nil {
			return nil, err
		}
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if logger != nil {
		r.Use(logger)
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/peptide", func(r chi.Router) {
			r.Post("/mass", handlers.MassHandler)
			r.Post("/validate", handlers.ValidateHandler)
			r.Post("/stats", handlers.PeptideStatsHandler)
		})

		r.Route("/kmer", func(r chi.Router) {
			r.Post("/count", handlers.KMerCountHandler)
			r.Post("/most-frequent", handlers.MostFrequentKMersHandler)
			r.Post("/distance", handlers.KMerDistanceHandler)
		})

		r.Route("/alignment", func(r chi.Router) {
			r.Post("/", alignments.Align)
			r.Post("/score", alignments.Score)
			r.Post("/multi", alignments.Multi)
			if store != nil {
				r.Get("/", alignments.List)
				r.Get("/{id}", alignments.Get)
			}
		})

		r.Route("/quality", func(r chi.Router) {
			r.Post("/stats", handlers.QualityStatsHandler)
			r.Post("/classify", handlers.ClassifyHandler)
		})

		if search != nil {
			r.Post("/search", search.Search)
		}
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "%s\nPOST /api/alignment  {\"sequence_a\": \"WGGD\", \"sequence_b\": \"WND\"}\n", mzalign.Info())
	})

	return r, nil
}
