package alignment

import "github.com/rusteomics/mzalign/internal/sequence"

// Side names one of the two inputs of an alignment.
type Side int

const (
	SideA Side = iota
	SideB
)

func (s Side) String() string {
	if s == SideA {
		return "A"
	}
	return "B"
}

// Bounds is the half-open range [Start, End) of positions in which one
// parallel sequence has residues.
type Bounds struct {
	Start int
	End   int
}

// Contains reports whether position lies inside the bounds.
func (b Bounds) Contains(position int) bool {
	return position >= b.Start && position < b.End
}

// Alignable is anything that can be fed into Align: a single peptide or a
// profile of several peptides sharing one coordinate space.
type Alignable interface {
	// TotalLength is the number of positions in the coordinate space.
	TotalLength() int
	// NumberOfSequences is the number of parallel sequences.
	NumberOfSequences() int
	// Index returns the residue of a sequence at a position, if any.
	Index(position, sequenceIndex int) (sequence.Residue, bool)
	// IndexSlice returns the residues of a sequence in positions [from, to).
	IndexSlice(from, to, sequenceIndex int) []sequence.Residue
	// SequenceBounds returns the bounds of every parallel sequence.
	SequenceBounds() []Bounds
	// CalculateMasses returns the window masses for windows up to steps
	// positions long.
	CalculateMasses(steps int) *WindowMasses
	// SequencesWithPath turns a shared alignment path into one placement per
	// parallel sequence. start is the first position on this side covered
	// by the path.
	SequencesWithPath(side Side, start int, path []Piece) ([]MSAPlacement, error)
}

// shapeValidator is implemented by inputs that can be malformed.
type shapeValidator interface {
	Validate() error
}

func validateShape(a Alignable) error {
	if v, ok := a.(shapeValidator); ok {
		return v.Validate()
	}
	return nil
}

// placementPath maps a shared path onto one parallel sequence. residues
// reports how many residues of the sequence lie in the own positions of a
// step, given the first such position and their count.
func placementPath(side Side, start int, path []Piece, residues func(from, count int) int) []MSAPosition {
	positions := make([]MSAPosition, 0, len(path))
	cursor := start
	for _, piece := range path {
		own, other := piece.steps(side)
		switch {
		case own == 0:
			positions = append(positions, GapPosition())
		case other == 0:
			if residues(cursor, own) == 1 {
				positions = append(positions, Placed(Gap, 1, 1))
			} else {
				positions = append(positions, GapPosition())
			}
		default:
			width := min(own, other)
			if count := residues(cursor, own); count > 0 {
				positions = append(positions, Placed(piece.MatchType, count, width))
			} else {
				for i := 0; i < width; i++ {
					positions = append(positions, GapPosition())
				}
			}
		}
		cursor += own
	}
	return positions
}
