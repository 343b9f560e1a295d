// Package sequence provides peptide types built from modified residues.
//
// A Residue is an amino acid plus any number of mass-affecting
// modifications. A Peptide is a linear list of residues with optional
// identifier. Peptides can be written in a small bracket notation where
// modifications follow the residue they modify:
//
//	PEPM[Oxidation]TIDE
//	WGGN[+0.984016]
package sequence

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rusteomics/mzalign/internal/chemistry"
)

// Residue is a single amino acid with its modifications.
type Residue struct {
	AminoAcid     chemistry.AminoAcid
	Modifications []chemistry.Modification
}

// NewResidue creates an unmodified residue.
func NewResidue(aa rune) Residue {
	return Residue{AminoAcid: chemistry.AminoAcid(aa)}
}

// SameAminoAcid reports whether both residues carry the same amino acid,
// regardless of modifications.
func (r Residue) SameAminoAcid(other Residue) bool {
	return r.AminoAcid == other.AminoAcid
}

// Equal reports full identity: same amino acid and the same modifications
// in the same order.
func (r Residue) Equal(other Residue) bool {
	if r.AminoAcid != other.AminoAcid || len(r.Modifications) != len(other.Modifications) {
		return false
	}
	for i, m := range r.Modifications {
		if m != other.Modifications[i] {
			return false
		}
	}
	return true
}

// Formula returns the elemental composition of the residue including the
// formulas of its named modifications.
func (r Residue) Formula() chemistry.Formula {
	f, _ := r.AminoAcid.Formula()
	for _, m := range r.Modifications {
		f = f.Add(m.Formula)
	}
	return f
}

// MassDelta returns the summed mass of all mass-only modifications.
func (r Residue) MassDelta() float64 {
	delta := 0.0
	for _, m := range r.Modifications {
		delta += m.Delta
	}
	return delta
}

// Mass returns the monoisotopic residue mass.
func (r Residue) Mass() float64 {
	return r.Formula().MonoisotopicMass() + r.MassDelta()
}

// IsModified reports whether the residue carries any modification.
func (r Residue) IsModified() bool {
	return len(r.Modifications) > 0
}

func (r Residue) String() string {
	var b strings.Builder
	b.WriteRune(rune(r.AminoAcid))
	for _, m := range r.Modifications {
		b.WriteString("[" + m.String() + "]")
	}
	return b.String()
}

// WindowMass returns the monoisotopic mass of a run of residues, computed
// from the summed formula so no rounding accumulates across residues.
func WindowMass(residues []Residue) float64 {
	var f chemistry.Formula
	delta := 0.0
	for _, r := range residues {
		f = f.Add(r.Formula())
		delta += r.MassDelta()
	}
	return f.MonoisotopicMass() + delta
}

// Peptide is a linear sequence of residues.
type Peptide struct {
	Residues []Residue
	ID       string
}

// New creates a peptide from residues. An empty residue list is allowed and
// yields an empty peptide.
func New(residues []Residue) *Peptide {
	return &Peptide{Residues: residues}
}

// FromString creates an unmodified peptide from one-letter codes.
func FromString(residues string) (*Peptide, error) {
	normalized := strings.ToUpper(strings.TrimSpace(residues))

	if len(normalized) == 0 {
		return nil, &EmptySequenceError{}
	}

	if err := ValidateResidues(normalized); err != nil {
		return nil, err
	}

	p := &Peptide{Residues: make([]Residue, 0, len(normalized))}
	for _, aa := range normalized {
		p.Residues = append(p.Residues, NewResidue(aa))
	}
	return p, nil
}

// WithID creates a new peptide with an identifier.
func WithID(definition, id string, db *chemistry.ModDatabase) (*Peptide, error) {
	if len(id) == 0 {
		return nil, fmt.Errorf("ID cannot be empty")
	}

	p, err := Parse(definition, db)
	if err != nil {
		return nil, err
	}

	p.ID = id
	return p, nil
}

// Parse reads the bracket notation. Bracket contents are either a signed
// mass shift ("+15.9949") or a modification name looked up in db. A nil db
// uses chemistry.DefaultModDatabase.
func Parse(definition string, db *chemistry.ModDatabase) (*Peptide, error) {
	if db == nil {
		db = chemistry.DefaultModDatabase()
	}
	text := strings.TrimSpace(definition)
	if len(text) == 0 {
		return nil, &EmptySequenceError{}
	}

	p := &Peptide{}
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '[':
			if len(p.Residues) == 0 {
				return nil, &SyntaxError{Position: i, Reason: "modification without a preceding residue"}
			}
			end := i + 1
			for end < len(runes) && runes[end] != ']' {
				end++
			}
			if end == len(runes) {
				return nil, &SyntaxError{Position: i, Reason: "unclosed modification bracket"}
			}
			mod, err := parseModification(string(runes[i+1:end]), i, db)
			if err != nil {
				return nil, err
			}
			last := &p.Residues[len(p.Residues)-1]
			last.Modifications = append(last.Modifications, mod)
			i = end
		case c == ']':
			return nil, &SyntaxError{Position: i, Reason: "unexpected closing bracket"}
		default:
			upper := []rune(strings.ToUpper(string(c)))[0]
			if !IsValidAminoAcid(upper) {
				return nil, &InvalidResidueError{Position: i, Found: c}
			}
			p.Residues = append(p.Residues, NewResidue(upper))
		}
	}
	return p, nil
}

func parseModification(text string, position int, db *chemistry.ModDatabase) (chemistry.Modification, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return chemistry.Modification{}, &SyntaxError{Position: position, Reason: "empty modification"}
	}
	if text[0] == '+' || text[0] == '-' {
		delta, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return chemistry.Modification{}, &SyntaxError{Position: position, Reason: fmt.Sprintf("invalid mass shift '%s'", text)}
		}
		return chemistry.Modification{Delta: delta}, nil
	}
	mod, ok := db.Get(text)
	if !ok {
		return chemistry.Modification{}, &UnknownModificationError{Position: position, Name: text}
	}
	return mod, nil
}

// IsValidAminoAcid checks if a character is a known amino acid code.
func IsValidAminoAcid(c rune) bool {
	return chemistry.AminoAcid(c).IsValid()
}

// Len returns the number of residues.
func (p *Peptide) Len() int {
	return len(p.Residues)
}

// ResidueAt returns the residue at a specific index, or false if out of bounds.
func (p *Peptide) ResidueAt(index int) (Residue, bool) {
	if index < 0 || index >= len(p.Residues) {
		return Residue{}, false
	}
	return p.Residues[index], true
}

// Subsequence returns the residues in [start, end) as a new peptide.
func (p *Peptide) Subsequence(start, end int) (*Peptide, error) {
	if start < 0 {
		return nil, fmt.Errorf("start index must be non-negative")
	}
	if end < start {
		return nil, fmt.Errorf("end must not be smaller than start")
	}
	if end > len(p.Residues) {
		return nil, fmt.Errorf("end must not exceed peptide length")
	}

	return &Peptide{
		Residues: p.Residues[start:end],
		ID:       p.ID,
	}, nil
}

// Formula returns the full composition including water for the termini.
func (p *Peptide) Formula() chemistry.Formula {
	f := chemistry.Water
	for _, r := range p.Residues {
		f = f.Add(r.Formula())
	}
	return f
}

// MonoisotopicMass returns the neutral monoisotopic mass of the peptide.
func (p *Peptide) MonoisotopicMass() float64 {
	return WindowMass(p.Residues) + chemistry.Water.MonoisotopicMass()
}

// MZ returns the m/z of the peptide for the given charge.
func (p *Peptide) MZ(charge int) float64 {
	return chemistry.MZ(p.MonoisotopicMass(), charge)
}

// Composition counts the residues by amino acid.
func (p *Peptide) Composition() map[chemistry.AminoAcid]int {
	counts := make(map[chemistry.AminoAcid]int)
	for _, r := range p.Residues {
		counts[r.AminoAcid]++
	}
	return counts
}

// ModifiedCount returns the number of modified residues.
func (p *Peptide) ModifiedCount() int {
	count := 0
	for _, r := range p.Residues {
		if r.IsModified() {
			count++
		}
	}
	return count
}

// Plain returns the one-letter sequence without modifications.
func (p *Peptide) Plain() string {
	var b strings.Builder
	for _, r := range p.Residues {
		b.WriteRune(rune(r.AminoAcid))
	}
	return b.String()
}

// String returns the bracket notation of the peptide.
func (p *Peptide) String() string {
	var b strings.Builder
	for _, r := range p.Residues {
		b.WriteString(r.String())
	}
	return b.String()
}

// Equal checks if two peptides have identical residues.
func (p *Peptide) Equal(other *Peptide) bool {
	if other == nil || len(p.Residues) != len(other.Residues) {
		return false
	}
	for i, r := range p.Residues {
		if !r.Equal(other.Residues[i]) {
			return false
		}
	}
	return true
}
