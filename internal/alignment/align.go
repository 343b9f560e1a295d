package alignment

import (
	"math"

	"github.com/rusteomics/mzalign/internal/sequence"
)

// Align aligns a against b. Both inputs may be single peptides or profiles
// produced by earlier calls. The options are validated before any work is
// done.
func Align(a, b Alignable, opts Options) (*MultipleSequenceAlignment, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := validateShape(a); err != nil {
		return nil, err
	}
	if err := validateShape(b); err != nil {
		return nil, err
	}
	if a.TotalLength() > math.MaxInt32 || b.TotalLength() > math.MaxInt32 {
		return nil, &ConfigError{Field: "length", Reason: "exceeds the supported index range"}
	}

	m, err := fill(a, b, opts)
	if err != nil {
		return nil, err
	}
	row, col := m.end(opts.Type)
	path, startA, startB := m.traceback(row, col)

	placementsA, err := a.SequencesWithPath(SideA, startA, path)
	if err != nil {
		return nil, err
	}
	placementsB, err := b.SequencesWithPath(SideB, startB, path)
	if err != nil {
		return nil, err
	}

	score := 0
	if len(path) > 0 {
		score = path[len(path)-1].Score
	}
	msa := &MultipleSequenceAlignment{
		Sequences: append(placementsA, placementsB...),
		Type:      opts.Type,
		Path:      path,
		Score:     score,
		MaxStep:   opts.Steps,
	}
	for i := range msa.Sequences {
		msa.Sequences[i].Score = score
		msa.Sequences[i].NormalisedScore = normalisedScore(score, msa.Sequences[i].selfScore(opts.Scoring))
	}
	msa.Normalise()
	return msa, nil
}

func normalisedScore(score, self int) float64 {
	if self <= 0 {
		return 0
	}
	return math.Min(float64(score)/float64(self), 1)
}

// dpMatrix is the flat (lenA+1)*(lenB+1) grid of resolved cells.
type dpMatrix struct {
	rows    int
	cols    int
	cells   []Piece
	bestRow int
	bestCol int
}

func newMatrix(lenA, lenB int) *dpMatrix {
	return &dpMatrix{
		rows:  lenA + 1,
		cols:  lenB + 1,
		cells: make([]Piece, (lenA+1)*(lenB+1)),
	}
}

func (m *dpMatrix) at(row, col int) Piece {
	return m.cells[row*m.cols+col]
}

func (m *dpMatrix) set(row, col int, p Piece) {
	m.cells[row*m.cols+col] = p
}

// choice keeps the highest scoring candidate; a later candidate wins ties.
type choice struct {
	piece Piece
	found bool
}

func (c *choice) offer(p Piece) {
	if !c.found || p.Score >= c.piece.Score {
		c.piece = p
		c.found = true
	}
}

// fill resolves every cell. Candidates are offered in a fixed order: gap in
// B, gap in A, then for every pair of active parallel sequences (A index
// ascending, then B index) every window length pair (A length ascending,
// then B length).
func fill(a, b Alignable, opts Options) (*dpMatrix, error) {
	lenA, lenB := a.TotalLength(), b.TotalLength()
	sc := opts.Scoring
	m := newMatrix(lenA, lenB)

	if opts.Type.BindStartA {
		for i := 1; i <= lenA; i++ {
			m.set(i, 0, ladder(sc, i, 1, 0))
		}
	}
	if opts.Type.BindStartB {
		for j := 1; j <= lenB; j++ {
			m.set(0, j, ladder(sc, j, 0, 1))
		}
	}

	s := &scorer{
		a:       a,
		b:       b,
		massesA: a.CalculateMasses(opts.Steps),
		massesB: b.CalculateMasses(opts.Steps),
		scoring: sc,
		steps:   opts.Steps,
	}
	boundsA, boundsB := a.SequenceBounds(), b.SequenceBounds()
	reset := !opts.Type.IsGlobal() && !opts.Type.bindsStart()
	bestScore := 0

	for i := 0; i < lenA; i++ {
		for j := 0; j < lenB; j++ {
			row, col := i+1, j+1
			var c choice
			c.offer(gapStep(sc, m.at(row-1, col), 1, 0))
			c.offer(gapStep(sc, m.at(row, col-1), 0, 1))

			for sa, ba := range boundsA {
				if !ba.Contains(i) {
					continue
				}
				for sb, bb := range boundsB {
					if !bb.Contains(j) {
						continue
					}
					for la := 1; la <= s.steps && la <= row; la++ {
						for lb := 1; lb <= s.steps && lb <= col; lb++ {
							pred := m.at(row-la, col-lb)
							var p Piece
							var ok bool
							if la == 1 && lb == 1 {
								p, ok = s.single(pred, i, j, sa, sb)
							} else {
								p, ok = s.multi(pred, i, j, sa, sb, la, lb)
							}
							if ok {
								c.offer(p)
							}
						}
					}
				}
			}

			if !c.found {
				return nil, &InvariantError{Row: row, Column: col, Reason: "no candidate step"}
			}
			cleared := reset && c.piece.Score <= 0
			if cleared {
				c.piece = Piece{}
			}
			m.set(row, col, c.piece)
			// a cleared cell never becomes the best cell, so a local
			// alignment without any positive cell ends at the origin
			if !cleared && c.piece.Score >= bestScore {
				bestScore = c.piece.Score
				m.bestRow, m.bestCol = row, col
			}
		}
	}
	return m, nil
}

// ladder is the boundary cell after n leading gap steps.
func ladder(sc Scoring, n int, stepA, stepB uint16) Piece {
	local := sc.GapExtend
	if n == 1 {
		local = sc.GapStart
	}
	return Piece{
		Score:      sc.GapStart + (n-1)*sc.GapExtend,
		LocalScore: local,
		MatchType:  Gap,
		StepA:      stepA,
		StepB:      stepB,
	}
}

// gapStep extends a gap when the predecessor already gapped the same side,
// otherwise it opens one. A free predecessor always opens.
func gapStep(sc Scoring, pred Piece, stepA, stepB uint16) Piece {
	var extend bool
	if stepB == 0 {
		extend = pred.StepB == 0 && pred.StepA != 0
	} else {
		extend = pred.StepA == 0 && pred.StepB != 0
	}
	local := sc.GapStart
	if extend {
		local = sc.GapExtend
	}
	return Piece{
		Score:      pred.Score + local,
		LocalScore: local,
		MatchType:  Gap,
		StepA:      stepA,
		StepB:      stepB,
	}
}

type scorer struct {
	a, b             Alignable
	massesA, massesB *WindowMasses
	scoring          Scoring
	steps            int
}

// single classifies one residue against one residue.
func (s *scorer) single(pred Piece, i, j, sa, sb int) (Piece, bool) {
	ra, okA := s.a.Index(i, sa)
	rb, okB := s.b.Index(j, sb)
	if !okA || !okB {
		return Piece{}, false
	}
	ma, okA := s.massesA.Get(sa, i, 1)
	mb, okB := s.massesB.Get(sb, j, 1)
	if !okA || !okB {
		return Piece{}, false
	}

	sc := s.scoring
	within := sc.Tolerance.Within(ma, mb)
	var t MatchType
	var local int
	switch {
	case ra.SameAminoAcid(rb) && within:
		t, local = FullIdentity, sc.Matrix.Score(ra.AminoAcid, ra.AminoAcid)+sc.Identity
	case ra.SameAminoAcid(rb):
		t, local = IdentityMassMismatch, sc.Matrix.Score(ra.AminoAcid, ra.AminoAcid)+sc.MassMismatch
	case within:
		t, local = Isobaric, sc.Isobaric
	default:
		t, local = Mismatch, sc.Matrix.Score(ra.AminoAcid, rb.AminoAcid)+sc.Mismatch
	}
	return Piece{
		Score:      pred.Score + local,
		LocalScore: local,
		MatchType:  t,
		StepA:      1,
		StepB:      1,
	}, true
}

// multi scores windows of la and lb positions ending at i and j. Only
// windows with matching masses produce a candidate.
func (s *scorer) multi(pred Piece, i, j, sa, sb, la, lb int) (Piece, bool) {
	ma, okA := s.massesA.Get(sa, i, la)
	mb, okB := s.massesB.Get(sb, j, lb)
	if !okA || !okB || !s.scoring.Tolerance.Within(ma, mb) {
		return Piece{}, false
	}

	t, local := Isobaric, s.scoring.Isobaric*((la+lb)/2)
	if la == lb {
		wa := s.a.IndexSlice(i+1-la, i+1, sa)
		wb := s.b.IndexSlice(j+1-lb, j+1, sb)
		if isRotation(wa, wb) {
			t, local = Rotation, s.scoring.Rotated*la
		}
	}
	return Piece{
		Score:      pred.Score + local,
		LocalScore: local,
		MatchType:  t,
		StepA:      uint16(la),
		StepB:      uint16(lb),
	}, true
}

// isRotation reports whether both windows hold the same residues in a
// different order.
func isRotation(a, b []sequence.Residue) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	sameOrder := true
	for i := range a {
		if !a[i].Equal(b[i]) {
			sameOrder = false
			break
		}
	}
	if sameOrder {
		return false
	}
	used := make([]bool, len(b))
	for _, r := range a {
		matched := false
		for k, other := range b {
			if !used[k] && r.Equal(other) {
				used[k] = true
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// end selects the cell the traceback starts from.
func (m *dpMatrix) end(t AlignType) (int, int) {
	lastRow, lastCol := m.rows-1, m.cols-1
	switch {
	case t.BindEndA && t.BindEndB:
		return lastRow, lastCol
	case t.BindEndA:
		best := 0
		for col := 1; col <= lastCol; col++ {
			if m.at(lastRow, col).Score >= m.at(lastRow, best).Score {
				best = col
			}
		}
		return lastRow, best
	case t.BindEndB:
		best := 0
		for row := 1; row <= lastRow; row++ {
			if m.at(row, lastCol).Score >= m.at(best, lastCol).Score {
				best = row
			}
		}
		return best, lastCol
	default:
		return m.bestRow, m.bestCol
	}
}

// traceback walks from (row, col) to the origin or the first free cell and
// returns the path oldest first together with the start positions.
func (m *dpMatrix) traceback(row, col int) ([]Piece, int, int) {
	var path []Piece
	for row > 0 || col > 0 {
		p := m.at(row, col)
		if p.IsFree() {
			break
		}
		path = append(path, p)
		row -= int(p.StepA)
		col -= int(p.StepB)
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path, row, col
}
