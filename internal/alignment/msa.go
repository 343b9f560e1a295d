package alignment

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rusteomics/mzalign/internal/sequence"
)

// PaddingRune fills the columns of a step that are wider than the residues
// the step placed.
const PaddingRune = '·'

// GapRune marks a column in which a sequence has no residue.
const GapRune = '-'

// MSAPosition is one step of one sequence in a multiple alignment: either a
// gap occupying one column or a number of placed residues rendered over
// Width columns.
type MSAPosition struct {
	Placed   bool
	Type     MatchType
	Consumed int
	Width    int
}

// GapPosition returns a single gap column.
func GapPosition() MSAPosition {
	return MSAPosition{Type: Gap, Width: 1}
}

// Placed returns a step placing consumed residues over width columns.
func Placed(t MatchType, consumed, width int) MSAPosition {
	return MSAPosition{Placed: true, Type: t, Consumed: consumed, Width: width}
}

// Columns returns the number of columns the position occupies.
func (p MSAPosition) Columns() int {
	if !p.Placed {
		return 1
	}
	return p.Width
}

func (p MSAPosition) String() string {
	if !p.Placed {
		return "gap"
	}
	return fmt.Sprintf("%s(%d/%d)", p.Type, p.Consumed, p.Width)
}

// MSAPlacement is the participation of one sequence in a multiple alignment.
type MSAPlacement struct {
	Sequence        *sequence.Peptide
	Start           int
	Path            []MSAPosition
	Score           int
	NormalisedScore float64
}

// Columns returns the rendered width of the placement.
func (p *MSAPlacement) Columns() int {
	total := 0
	for _, pos := range p.Path {
		total += pos.Columns()
	}
	return total
}

// Consumed returns the number of residues the placement covers.
func (p *MSAPlacement) Consumed() int {
	total := 0
	for _, pos := range p.Path {
		if pos.Placed {
			total += pos.Consumed
		}
	}
	return total
}

// Residues returns the aligned residues of the placement.
func (p *MSAPlacement) Residues() []sequence.Residue {
	return p.Sequence.Residues[p.Start : p.Start+p.Consumed()]
}

// End returns the position after the last aligned residue.
func (p *MSAPlacement) End() int {
	return p.Start + p.Consumed()
}

func (p *MSAPlacement) selfScore(sc Scoring) int {
	total := 0
	for _, r := range p.Residues() {
		total += sc.SelfScore(r.AminoAcid)
	}
	return total
}

// columnResidues maps each column to the index of the residue shown in it,
// or -1. A placed step fills its first Consumed columns.
func (p *MSAPlacement) columnResidues() []int {
	cols := make([]int, 0, p.Columns())
	cursor := p.Start
	for _, pos := range p.Path {
		if !pos.Placed {
			cols = append(cols, -1)
			continue
		}
		for c := 0; c < pos.Width; c++ {
			if c < pos.Consumed {
				cols = append(cols, cursor)
				cursor++
			} else {
				cols = append(cols, -1)
			}
		}
	}
	return cols
}

// Render draws the placement with one character per column.
func (p *MSAPlacement) Render() string {
	var b strings.Builder
	cursor := p.Start
	for _, pos := range p.Path {
		if !pos.Placed {
			b.WriteRune(GapRune)
			continue
		}
		for c := 0; c < pos.Width; c++ {
			if c < pos.Consumed {
				b.WriteRune(rune(p.Sequence.Residues[cursor].AminoAcid))
				cursor++
			} else {
				b.WriteRune(PaddingRune)
			}
		}
	}
	return b.String()
}

// widenAt widens the step covering column by delta columns. Gap steps are
// widened by inserting further gaps.
func (p *MSAPlacement) widenAt(column, delta int) {
	start := 0
	for k, pos := range p.Path {
		if column < start+pos.Columns() {
			if pos.Placed {
				p.Path[k].Width += delta
				return
			}
			gaps := make([]MSAPosition, delta)
			for i := range gaps {
				gaps[i] = GapPosition()
			}
			p.Path = append(p.Path[:k], append(gaps, p.Path[k:]...)...)
			return
		}
		start += pos.Columns()
	}
	for i := 0; i < delta; i++ {
		p.Path = append(p.Path, GapPosition())
	}
}

// MultipleSequenceAlignment is the result of Align. It is itself Alignable:
// its coordinates are columns and every placement is a parallel sequence.
type MultipleSequenceAlignment struct {
	Sequences []MSAPlacement
	Type      AlignType
	// Path is the shared path of the alignment that produced this result.
	Path    []Piece
	Score   int
	MaxStep int

	mu     sync.Mutex
	layout *profileLayout
}

type profileLayout struct {
	width    int
	residues [][]int
	bounds   []Bounds
}

// Normalise widens steps so that every placement spans the same number of
// columns. Whenever a placed step consumes more residues than its width,
// its width grows to the consumed count and every other placement is
// widened by the same amount at that column. Running it twice changes
// nothing.
func (m *MultipleSequenceAlignment) Normalise() {
	for i := range m.Sequences {
		column := 0
		for k := 0; k < len(m.Sequences[i].Path); k++ {
			pos := m.Sequences[i].Path[k]
			if pos.Placed && pos.Consumed > pos.Width {
				delta := pos.Consumed - pos.Width
				m.Sequences[i].Path[k].Width = pos.Consumed
				for j := range m.Sequences {
					if j != i {
						m.Sequences[j].widenAt(column, delta)
					}
				}
			}
			column += m.Sequences[i].Path[k].Columns()
		}
	}
	m.mu.Lock()
	m.layout = nil
	m.mu.Unlock()
}

// Clone returns a deep copy of the placements and path.
func (m *MultipleSequenceAlignment) Clone() *MultipleSequenceAlignment {
	c := &MultipleSequenceAlignment{
		Sequences: make([]MSAPlacement, len(m.Sequences)),
		Type:      m.Type,
		Path:      append([]Piece(nil), m.Path...),
		Score:     m.Score,
		MaxStep:   m.MaxStep,
	}
	for i, p := range m.Sequences {
		p.Path = append([]MSAPosition(nil), p.Path...)
		c.Sequences[i] = p
	}
	return c
}

// Validate checks that the alignment can be used as a profile: every
// placement is normalised, stays inside its peptide and all placements
// share one column count.
func (m *MultipleSequenceAlignment) Validate() error {
	if len(m.Sequences) == 0 {
		return &UnsupportedShapeError{Reason: "profile has no sequences"}
	}
	width := -1
	for i := range m.Sequences {
		p := &m.Sequences[i]
		if p.Sequence == nil {
			return &UnsupportedShapeError{Reason: fmt.Sprintf("placement %d has no sequence", i)}
		}
		for k, pos := range p.Path {
			if pos.Placed && (pos.Consumed < 1 || pos.Consumed > pos.Width) {
				return &UnsupportedShapeError{Reason: fmt.Sprintf(
					"placement %d step %d places %d residues in %d columns", i, k, pos.Consumed, pos.Width)}
			}
		}
		if p.Start < 0 || p.End() > p.Sequence.Len() {
			return &UnsupportedShapeError{Reason: fmt.Sprintf("placement %d leaves its peptide", i)}
		}
		if width >= 0 && p.Columns() != width {
			return &UnsupportedShapeError{Reason: fmt.Sprintf(
				"placement %d spans %d columns, expected %d", i, p.Columns(), width)}
		}
		width = p.Columns()
	}
	return nil
}

func (m *MultipleSequenceAlignment) getLayout() *profileLayout {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.layout != nil {
		return m.layout
	}
	l := &profileLayout{
		residues: make([][]int, len(m.Sequences)),
		bounds:   make([]Bounds, len(m.Sequences)),
	}
	for s := range m.Sequences {
		cols := m.Sequences[s].columnResidues()
		l.residues[s] = cols
		l.width = max(l.width, len(cols))
		first, last := -1, -1
		for c, r := range cols {
			if r >= 0 {
				if first < 0 {
					first = c
				}
				last = c
			}
		}
		if first >= 0 {
			l.bounds[s] = Bounds{Start: first, End: last + 1}
		}
	}
	m.layout = l
	return l
}

func (m *MultipleSequenceAlignment) TotalLength() int {
	return m.getLayout().width
}

func (m *MultipleSequenceAlignment) NumberOfSequences() int {
	return len(m.Sequences)
}

func (m *MultipleSequenceAlignment) Index(position, sequenceIndex int) (sequence.Residue, bool) {
	l := m.getLayout()
	if sequenceIndex < 0 || sequenceIndex >= len(l.residues) {
		return sequence.Residue{}, false
	}
	cols := l.residues[sequenceIndex]
	if position < 0 || position >= len(cols) || cols[position] < 0 {
		return sequence.Residue{}, false
	}
	return m.Sequences[sequenceIndex].Sequence.Residues[cols[position]], true
}

func (m *MultipleSequenceAlignment) IndexSlice(from, to, sequenceIndex int) []sequence.Residue {
	var residues []sequence.Residue
	for c := from; c < to; c++ {
		if r, ok := m.Index(c, sequenceIndex); ok {
			residues = append(residues, r)
		}
	}
	return residues
}

func (m *MultipleSequenceAlignment) SequenceBounds() []Bounds {
	return append([]Bounds(nil), m.getLayout().bounds...)
}

func (m *MultipleSequenceAlignment) CalculateMasses(steps int) *WindowMasses {
	return computeWindowMasses(m, steps)
}

// SequencesWithPath maps the shared path onto every placement of the
// profile. Each placement starts after the residues it shows before the
// first column of the path; a step covering none of its residues becomes
// gaps.
func (m *MultipleSequenceAlignment) SequencesWithPath(side Side, start int, path []Piece) ([]MSAPlacement, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	l := m.getLayout()
	consumed := 0
	for _, p := range path {
		own, _ := p.steps(side)
		consumed += own
	}
	if start < 0 || start+consumed > l.width {
		return nil, &UnsupportedShapeError{Reason: fmt.Sprintf(
			"path covers columns %d to %d of a profile %d columns wide", start, start+consumed, l.width)}
	}

	placements := make([]MSAPlacement, len(m.Sequences))
	for s, original := range m.Sequences {
		cols := l.residues[s]
		count := func(from, n int) int {
			total := 0
			for c := from; c < from+n && c < len(cols); c++ {
				if cols[c] >= 0 {
					total++
				}
			}
			return total
		}
		placements[s] = MSAPlacement{
			Sequence: original.Sequence,
			Start:    original.Start + count(0, start),
			Path:     placementPath(side, start, path, count),
		}
	}
	return placements, nil
}

// Lines renders every placement, one line each.
func (m *MultipleSequenceAlignment) Lines() []string {
	lines := make([]string, len(m.Sequences))
	for i := range m.Sequences {
		lines[i] = m.Sequences[i].Render()
	}
	return lines
}

// String renders every placement followed by its score and normalised score.
func (m *MultipleSequenceAlignment) String() string {
	var b strings.Builder
	for i := range m.Sequences {
		p := &m.Sequences[i]
		fmt.Fprintf(&b, "%s %d %.3f\n", p.Render(), p.Score, p.NormalisedScore)
	}
	return b.String()
}
