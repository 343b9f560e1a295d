// Package mzalign provides a high-level API for mass-aware peptide alignment.
//
// This package exposes the core functionality through a small API for the
// common operations.
//
// Example usage:
//
//	a, err := mzalign.NewPeptide("WGGD")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	b, _ := mzalign.NewPeptide("WND")
//
//	msa, err := mzalign.Align(a, b, mzalign.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(msa)              // WGGD 19 0.655
//	                            // WN·D 19 0.826
//	fmt.Println(msa.ShortPath()) // 1=2:1i1=
package mzalign

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rusteomics/mzalign/internal/alignment"
	"github.com/rusteomics/mzalign/internal/chemistry"
	"github.com/rusteomics/mzalign/internal/config"
	"github.com/rusteomics/mzalign/internal/index"
	"github.com/rusteomics/mzalign/internal/kmer"
	"github.com/rusteomics/mzalign/internal/multi"
	"github.com/rusteomics/mzalign/internal/quality"
	"github.com/rusteomics/mzalign/internal/sequence"
	"github.com/rusteomics/mzalign/internal/stats"
	"github.com/rusteomics/mzalign/internal/store"
)

// Re-export types for convenience
type (
	Peptide            = sequence.Peptide
	Residue            = sequence.Residue
	Alignable          = alignment.Alignable
	Alignment          = alignment.MultipleSequenceAlignment
	Placement          = alignment.MSAPlacement
	Piece              = alignment.Piece
	MatchType          = alignment.MatchType
	Options            = alignment.Options
	Scoring            = alignment.Scoring
	AlignType          = alignment.AlignType
	SubstitutionMatrix = alignment.SubstitutionMatrix
	Tolerance          = chemistry.Tolerance
	ModDatabase        = chemistry.ModDatabase
	Index              = index.Index
	Hit                = index.Hit
	SearchOptions      = index.SearchOptions
	MultiOptions       = multi.Options
	MultiResult        = multi.Result
	Filter             = quality.Filter
	Category           = quality.Category
	Config             = config.Config
	Store              = store.Store
	KMerCounter        = kmer.Counter
)

// Alignment types
var (
	Global  = alignment.Global
	Local   = alignment.Local
	GlobalA = alignment.GlobalA
	GlobalB = alignment.GlobalB
)

// NewPeptide parses a peptide in bracket notation, for example
// "PEPM[Oxidation]K" or "PEPT[+79.966]K".
func NewPeptide(definition string) (*Peptide, error) {
	return sequence.Parse(definition, nil)
}

// NewPeptideWithID parses a peptide and attaches an identifier.
func NewPeptideWithID(definition, id string) (*Peptide, error) {
	return sequence.WithID(definition, id, nil)
}

// DefaultOptions returns a global alignment scored with BLOSUM62 and a
// 10 ppm tolerance.
func DefaultOptions() Options {
	return alignment.DefaultOptions()
}

// PPM returns a relative tolerance.
func PPM(ppm float64) Tolerance {
	return chemistry.NewPPM(ppm)
}

// Dalton returns an absolute tolerance.
func Dalton(da float64) Tolerance {
	return chemistry.NewDalton(da)
}

// Align aligns two peptides.
func Align(a, b *Peptide, opts Options) (*Alignment, error) {
	return alignment.Align(alignment.NewSingle(a), alignment.NewSingle(b), opts)
}

// AlignProfiles aligns two alignables, each a single peptide or an earlier
// alignment.
func AlignProfiles(a, b Alignable, opts Options) (*Alignment, error) {
	return alignment.Align(a, b, opts)
}

// Single wraps a peptide for AlignProfiles.
func Single(p *Peptide) Alignable {
	return alignment.NewSingle(p)
}

// AlignMany builds progressive multiple alignments.
func AlignMany(peptides []*Peptide, opts MultiOptions) (*MultiResult, error) {
	return multi.Progressive(peptides, opts)
}

// DefaultMultiOptions merges all peptides into one alignment.
func DefaultMultiOptions() MultiOptions {
	return multi.DefaultOptions()
}

// NewIndex builds a searchable library.
func NewIndex(peptides []*Peptide) (*Index, error) {
	return index.New(peptides, index.DefaultK)
}

// DefaultSearchOptions returns the default search settings.
func DefaultSearchOptions() SearchOptions {
	return index.DefaultSearchOptions()
}

// DefaultFilter creates a hit filter with default settings.
func DefaultFilter() *Filter {
	return quality.DefaultFilter()
}

// StrictFilter creates a hit filter with strict settings.
func StrictFilter() *Filter {
	return quality.StrictFilter()
}

// LoadConfig reads an alignment profile, defaults when path is empty.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// DefaultConfig returns the default alignment profile.
func DefaultConfig() *Config {
	return config.Default()
}

// OpenStore opens a SQLite alignment store.
func OpenStore(path string) (*Store, error) {
	return store.Open(path, nil)
}

// PeptideStats calculates statistics for a peptide.
func PeptideStats(p *Peptide) *stats.PeptideStats {
	return stats.FromPeptide(p)
}

// AlignmentStats compares the first two placements of an alignment.
func AlignmentStats(msa *Alignment) (*stats.AlignmentStats, error) {
	return stats.FromAlignment(msa, 0, 1, nil)
}

// CountKMers counts k-mers in a peptide.
func CountKMers(p *Peptide, k int) (*KMerCounter, error) {
	return kmer.CountKMers(p, k)
}

// ReadPeptides reads a peptide list file.
func ReadPeptides(filename string) ([]*Peptide, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	return ParsePeptides(file)
}

// ParsePeptides reads one peptide per line in bracket notation. A line may
// start with an identifier followed by a tab. Empty lines and lines
// starting with '#' are skipped.
func ParsePeptides(r io.Reader) ([]*Peptide, error) {
	peptides := make([]*Peptide, 0)
	scanner := bufio.NewScanner(r)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		var (
			p   *Peptide
			err error
		)
		if id, definition, ok := strings.Cut(line, "\t"); ok {
			p, err = sequence.WithID(strings.TrimSpace(definition), strings.TrimSpace(id), nil)
		} else {
			p, err = sequence.Parse(line, nil)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		peptides = append(peptides, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	return peptides, nil
}

// Version returns the mzalign version.
func Version() string {
	return "0.1.0"
}

// Info returns information about mzalign.
func Info() string {
	return fmt.Sprintf(`mzalign v%s - Mass-aware Peptide Alignment

Features:
  - Peptides with named and mass-shift modifications
  - Alignment steps of up to N residues against up to M residues
  - Isobaric and rotated windows recognised by mass
  - Global, local and semi-global alignment
  - Profile against profile alignment
  - Progressive multiple alignment
  - Concurrent library search with a k-mer prefilter
  - SQLite storage of alignments
`, Version())
}
