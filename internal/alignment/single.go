package alignment

import (
	"fmt"

	"github.com/rusteomics/mzalign/internal/sequence"
)

// Single adapts one peptide to the Alignable interface.
type Single struct {
	Peptide *sequence.Peptide
}

// NewSingle wraps a peptide. A nil peptide is treated as empty.
func NewSingle(p *sequence.Peptide) *Single {
	if p == nil {
		p = sequence.New(nil)
	}
	return &Single{Peptide: p}
}

func (s *Single) TotalLength() int {
	return s.Peptide.Len()
}

func (s *Single) NumberOfSequences() int {
	return 1
}

func (s *Single) Index(position, sequenceIndex int) (sequence.Residue, bool) {
	if sequenceIndex != 0 {
		return sequence.Residue{}, false
	}
	return s.Peptide.ResidueAt(position)
}

func (s *Single) IndexSlice(from, to, sequenceIndex int) []sequence.Residue {
	if sequenceIndex != 0 {
		return nil
	}
	from = max(from, 0)
	to = min(to, s.Peptide.Len())
	if from >= to {
		return nil
	}
	return s.Peptide.Residues[from:to]
}

func (s *Single) SequenceBounds() []Bounds {
	return []Bounds{{Start: 0, End: s.Peptide.Len()}}
}

func (s *Single) CalculateMasses(steps int) *WindowMasses {
	return computeWindowMasses(s, steps)
}

// SequencesWithPath places every consumed residue of the peptide. A step
// consuming several residues is given the width of the shorter side and is
// widened later by Normalise.
func (s *Single) SequencesWithPath(side Side, start int, path []Piece) ([]MSAPlacement, error) {
	consumed := 0
	for _, p := range path {
		own, _ := p.steps(side)
		consumed += own
	}
	if start < 0 || start+consumed > s.Peptide.Len() {
		return nil, &UnsupportedShapeError{Reason: fmt.Sprintf(
			"path consumes %d residues from position %d of a peptide of length %d", consumed, start, s.Peptide.Len())}
	}
	positions := placementPath(side, start, path, func(_, count int) int { return count })
	return []MSAPlacement{{
		Sequence: s.Peptide,
		Start:    start,
		Path:     positions,
	}}, nil
}
