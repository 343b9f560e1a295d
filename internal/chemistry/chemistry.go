// Package chemistry provides the elemental arithmetic needed for peptide
// mass calculations.
//
// Masses are always read from a summed Formula rather than summed from
// independently rounded residue masses, so windows of several residues carry
// no accumulated rounding drift.
package chemistry

import (
	"fmt"
	"strings"
)

// Atomic masses (monoisotopic)
const (
	MassH = 1.00782503207
	MassC = 12.0000000000
	MassN = 14.0030740048
	MassO = 15.99491461956
	MassS = 31.97207100
	MassP = 30.97376163

	// ProtonMass is used for charge state conversions
	ProtonMass = 1.007276466812
)

// Formula stores an elemental composition. Counts may be negative for
// modifications that remove atoms.
type Formula struct {
	C, H, N, O, S, P int
}

// Water is added once per peptide for the termini.
var Water = Formula{H: 2, O: 1}

// Add returns the sum of two formulas.
func (f Formula) Add(other Formula) Formula {
	return Formula{
		C: f.C + other.C,
		H: f.H + other.H,
		N: f.N + other.N,
		O: f.O + other.O,
		S: f.S + other.S,
		P: f.P + other.P,
	}
}

// IsZero reports whether the formula has no atoms at all.
func (f Formula) IsZero() bool {
	return f == Formula{}
}

// MonoisotopicMass returns the monoisotopic mass of the formula.
func (f Formula) MonoisotopicMass() float64 {
	return float64(f.C)*MassC +
		float64(f.H)*MassH +
		float64(f.N)*MassN +
		float64(f.O)*MassO +
		float64(f.S)*MassS +
		float64(f.P)*MassP
}

// String renders the formula in Hill-like order, e.g. "C2H3NO".
func (f Formula) String() string {
	var b strings.Builder
	write := func(symbol string, n int) {
		switch {
		case n == 0:
		case n == 1:
			b.WriteString(symbol)
		default:
			fmt.Fprintf(&b, "%s%d", symbol, n)
		}
	}
	write("C", f.C)
	write("H", f.H)
	write("N", f.N)
	write("O", f.O)
	write("S", f.S)
	write("P", f.P)
	return b.String()
}

// AminoAcid is a one-letter amino acid code.
type AminoAcid rune

// CanonicalAminoAcids lists the 20 standard residues in BLOSUM order.
const CanonicalAminoAcids = "ARNDCQEGHILKMFPSTWYV"

// residueFormulas maps amino acids to their residue composition (without water).
var residueFormulas = map[AminoAcid]Formula{
	'A': {C: 3, H: 5, N: 1, O: 1},
	'R': {C: 6, H: 12, N: 4, O: 1},
	'N': {C: 4, H: 6, N: 2, O: 2},
	'D': {C: 4, H: 5, N: 1, O: 3},
	'C': {C: 3, H: 5, N: 1, O: 1, S: 1},
	'E': {C: 5, H: 7, N: 1, O: 3},
	'Q': {C: 5, H: 8, N: 2, O: 2},
	'G': {C: 2, H: 3, N: 1, O: 1},
	'H': {C: 6, H: 7, N: 3, O: 1},
	'I': {C: 6, H: 11, N: 1, O: 1},
	'L': {C: 6, H: 11, N: 1, O: 1},
	'K': {C: 6, H: 12, N: 2, O: 1},
	'M': {C: 5, H: 9, N: 1, O: 1, S: 1},
	'F': {C: 9, H: 9, N: 1, O: 1},
	'P': {C: 5, H: 7, N: 1, O: 1},
	'S': {C: 3, H: 5, N: 1, O: 2},
	'T': {C: 4, H: 7, N: 1, O: 2},
	'W': {C: 11, H: 10, N: 2, O: 1},
	'Y': {C: 9, H: 9, N: 1, O: 2},
	'V': {C: 5, H: 9, N: 1, O: 1},
}

// Formula returns the residue composition of the amino acid.
func (a AminoAcid) Formula() (Formula, bool) {
	f, ok := residueFormulas[a]
	return f, ok
}

// IsValid reports whether the amino acid has a known composition.
func (a AminoAcid) IsValid() bool {
	_, ok := residueFormulas[a]
	return ok
}

func (a AminoAcid) String() string {
	return string(a)
}

// MZ converts a neutral mass into the m/z for the given charge.
func MZ(neutralMass float64, charge int) float64 {
	if charge == 0 {
		return neutralMass
	}
	return (neutralMass + float64(charge)*ProtonMass) / float64(charge)
}
