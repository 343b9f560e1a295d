package alignment

import "fmt"

// MatchType classifies one alignment step.
type MatchType uint8

const (
	// Gap is a residue aligned against nothing. It is also the type of the
	// free boundary cell.
	Gap MatchType = iota
	// FullIdentity is the same amino acid with the same mass
	FullIdentity
	// IdentityMassMismatch is the same amino acid with a different mass,
	// usually a modification on one side
	IdentityMassMismatch
	// Isobaric windows differ in identity but match in mass
	Isobaric
	// Rotation windows hold the same residues in a different order
	Rotation
	// Mismatch is a single residue pair differing in identity and mass
	Mismatch
)

var matchTypeNames = [...]string{
	Gap:                  "gap",
	FullIdentity:         "identity",
	IdentityMassMismatch: "mass-mismatch",
	Isobaric:             "isobaric",
	Rotation:             "rotation",
	Mismatch:             "mismatch",
}

func (t MatchType) String() string {
	if int(t) < len(matchTypeNames) {
		return matchTypeNames[t]
	}
	return "unknown"
}

// ParseMatchType is the inverse of MatchType.String.
func ParseMatchType(s string) (MatchType, error) {
	for i, name := range matchTypeNames {
		if name == s {
			return MatchType(i), nil
		}
	}
	return Gap, fmt.Errorf("unknown match type '%s'", s)
}

// Piece is the resolved state of one DP cell: the cumulative score reaching
// it, the score of the step itself and how many residues of each side the
// step consumed. The zero value is the free boundary state.
//
// A step never consumes zero residues on both sides, and when one side
// consumes zero the other consumes exactly one.
type Piece struct {
	Score      int
	LocalScore int
	MatchType  MatchType
	StepA      uint16
	StepB      uint16
}

// IsFree reports whether the piece consumed nothing.
func (p Piece) IsFree() bool {
	return p.StepA == 0 && p.StepB == 0
}

// steps returns the consumption of the given side followed by the other.
func (p Piece) steps(side Side) (own, other int) {
	if side == SideA {
		return int(p.StepA), int(p.StepB)
	}
	return int(p.StepB), int(p.StepA)
}

func (p Piece) String() string {
	return fmt.Sprintf("%s %d:%d (%+d, %d)", p.MatchType, p.StepA, p.StepB, p.LocalScore, p.Score)
}
