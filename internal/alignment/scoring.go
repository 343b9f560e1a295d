// Package alignment provides mass-aware alignment of peptides and profiles.
//
// Besides single residue identity and mismatch steps, a step may consume
// several residues of either side when their summed masses agree within a
// tolerance (isobaric windows, rotations of the same residues). The result
// is a MultipleSequenceAlignment that can itself be aligned again to build
// a multiple alignment progressively.
package alignment

import (
	"fmt"
	"math"
	"strings"

	"github.com/rusteomics/mzalign/internal/chemistry"
)

// DefaultSteps is the default maximal number of residues in one step.
const DefaultSteps = 3

// AlignType selects which ends of both inputs must be part of the alignment.
type AlignType struct {
	BindStartA bool
	BindStartB bool
	BindEndA   bool
	BindEndB   bool
}

var (
	// Global binds all four ends
	Global = AlignType{true, true, true, true}
	// Local binds nothing and reports the best scoring region
	Local = AlignType{}
	// GlobalA aligns all of A somewhere inside B
	GlobalA = AlignType{BindStartA: true, BindEndA: true}
	// GlobalB aligns all of B somewhere inside A
	GlobalB = AlignType{BindStartB: true, BindEndB: true}
)

// IsGlobal reports whether all ends are bound.
func (t AlignType) IsGlobal() bool {
	return t == Global
}

// bindsStart reports whether any start is bound.
func (t AlignType) bindsStart() bool {
	return t.BindStartA || t.BindStartB
}

func (t AlignType) String() string {
	switch t {
	case Global:
		return "global"
	case Local:
		return "local"
	case GlobalA:
		return "global-a"
	case GlobalB:
		return "global-b"
	}
	flag := func(b bool) byte {
		if b {
			return '1'
		}
		return '0'
	}
	return string([]byte{flag(t.BindStartA), flag(t.BindStartB), flag(t.BindEndA), flag(t.BindEndB)})
}

// ParseAlignType accepts the names printed by String as well as a four
// digit flag string in the order start A, start B, end A, end B.
func ParseAlignType(s string) (AlignType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "global":
		return Global, nil
	case "local":
		return Local, nil
	case "global-a", "globala":
		return GlobalA, nil
	case "global-b", "globalb":
		return GlobalB, nil
	}
	if len(s) == 4 && strings.Trim(s, "01") == "" {
		return AlignType{s[0] == '1', s[1] == '1', s[2] == '1', s[3] == '1'}, nil
	}
	return AlignType{}, fmt.Errorf("invalid alignment type '%s'", s)
}

// Scoring holds the per step score deltas. The substitution matrix adds
// the base score for identity, mass mismatch and mismatch steps.
type Scoring struct {
	GapExtend    int
	GapStart     int
	MassMismatch int
	Isobaric     int
	Mismatch     int
	Rotated      int
	Identity     int

	Matrix    *SubstitutionMatrix
	Tolerance chemistry.Tolerance
}

// DefaultScoring returns BLOSUM62 with a 10 ppm tolerance.
func DefaultScoring() Scoring {
	return Scoring{
		GapExtend:    -1,
		GapStart:     -5,
		MassMismatch: -1,
		Isobaric:     2,
		Mismatch:     -1,
		Rotated:      3,
		Identity:     0,
		Matrix:       BLOSUM62(),
		Tolerance:    chemistry.NewPPM(10),
	}
}

// Validate checks the scoring for coherence.
func (s Scoring) Validate() error {
	if s.Matrix == nil {
		return &ConfigError{Field: "matrix", Reason: "must be set"}
	}
	if err := s.Tolerance.Validate(); err != nil {
		return &ConfigError{Field: "tolerance", Reason: err.Error()}
	}
	if s.GapStart > 0 {
		return &ConfigError{Field: "gap_start", Reason: "should be <= 0"}
	}
	if s.GapExtend > 0 {
		return &ConfigError{Field: "gap_extend", Reason: "should be <= 0"}
	}
	return nil
}

// SelfScore is the score of a residue aligned to itself.
func (s Scoring) SelfScore(aa chemistry.AminoAcid) int {
	return s.Matrix.Score(aa, aa) + s.Identity
}

func (s Scoring) String() string {
	return fmt.Sprintf("Scoring { matrix: %s, tolerance: %s, gap_start: %d, gap_extend: %d }",
		s.Matrix, s.Tolerance, s.GapStart, s.GapExtend)
}

// Options configures one call to Align.
type Options struct {
	Steps   int
	Scoring Scoring
	Type    AlignType
}

// DefaultOptions returns a global alignment with the default scoring.
func DefaultOptions() Options {
	return Options{
		Steps:   DefaultSteps,
		Scoring: DefaultScoring(),
		Type:    Global,
	}
}

// Validate rejects options that cannot drive an alignment.
func (o Options) Validate() error {
	if o.Steps < 1 {
		return &ConfigError{Field: "steps", Reason: "must be at least 1"}
	}
	if o.Steps > math.MaxUint16 {
		return &ConfigError{Field: "steps", Reason: fmt.Sprintf("must not exceed %d", math.MaxUint16)}
	}
	return o.Scoring.Validate()
}
