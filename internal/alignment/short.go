package alignment

import (
	"fmt"
	"strconv"
	"strings"
)

// ShortPath writes a path in a CIGAR-like notation. Runs of single residue
// steps are counted: '=' identity, 'X' mismatch, 'm' identity with a mass
// difference, 'D' a residue of A against a gap, 'I' a residue of B against
// a gap. Multi residue steps are written one by one: "a:bi" for an
// isobaric step of a residues of A and b of B, "ar" for a rotation.
func ShortPath(path []Piece) string {
	var b strings.Builder
	var currentOp byte
	count := 0

	flush := func() {
		if count > 0 {
			fmt.Fprintf(&b, "%d%c", count, currentOp)
		}
		count = 0
	}

	for _, p := range path {
		op := simpleOp(p)
		if op == 0 {
			flush()
			currentOp = 0
			if p.MatchType == Rotation {
				fmt.Fprintf(&b, "%dr", p.StepA)
			} else {
				fmt.Fprintf(&b, "%d:%di", p.StepA, p.StepB)
			}
			continue
		}
		if op != currentOp {
			flush()
			currentOp = op
		}
		count++
	}
	flush()
	return b.String()
}

func simpleOp(p Piece) byte {
	switch {
	case p.MatchType == Gap && p.StepA == 1 && p.StepB == 0:
		return 'D'
	case p.MatchType == Gap && p.StepA == 0 && p.StepB == 1:
		return 'I'
	case p.StepA != 1 || p.StepB != 1:
		return 0
	case p.MatchType == FullIdentity:
		return '='
	case p.MatchType == Mismatch:
		return 'X'
	case p.MatchType == IdentityMassMismatch:
		return 'm'
	default:
		return 0
	}
}

// ParseShortPath reads the notation written by ShortPath. Scores of the
// returned pieces are zero.
func ParseShortPath(s string) ([]Piece, error) {
	var path []Piece
	i := 0
	readNumber := func() (int, error) {
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if start == i {
			return 0, fmt.Errorf("expected a number at position %d of '%s'", start, s)
		}
		n, err := strconv.Atoi(s[start:i])
		if err != nil || n < 1 || n > 0xFFFF {
			return 0, fmt.Errorf("invalid count '%s' at position %d", s[start:i], start)
		}
		return n, nil
	}

	for i < len(s) {
		n, err := readNumber()
		if err != nil {
			return nil, err
		}
		if i >= len(s) {
			return nil, fmt.Errorf("missing operation at end of '%s'", s)
		}
		if s[i] == ':' {
			i++
			m, err := readNumber()
			if err != nil {
				return nil, err
			}
			if i >= len(s) || s[i] != 'i' {
				return nil, fmt.Errorf("expected 'i' at position %d of '%s'", i, s)
			}
			i++
			path = append(path, Piece{MatchType: Isobaric, StepA: uint16(n), StepB: uint16(m)})
			continue
		}
		op := s[i]
		i++
		var piece Piece
		switch op {
		case '=':
			piece = Piece{MatchType: FullIdentity, StepA: 1, StepB: 1}
		case 'X':
			piece = Piece{MatchType: Mismatch, StepA: 1, StepB: 1}
		case 'm':
			piece = Piece{MatchType: IdentityMassMismatch, StepA: 1, StepB: 1}
		case 'D':
			piece = Piece{MatchType: Gap, StepA: 1}
		case 'I':
			piece = Piece{MatchType: Gap, StepB: 1}
		case 'r':
			path = append(path, Piece{MatchType: Rotation, StepA: uint16(n), StepB: uint16(n)})
			continue
		case 'i':
			path = append(path, Piece{MatchType: Isobaric, StepA: uint16(n), StepB: uint16(n)})
			continue
		default:
			return nil, fmt.Errorf("unknown operation '%c' at position %d", op, i-1)
		}
		for k := 0; k < n; k++ {
			path = append(path, piece)
		}
	}
	return path, nil
}

// ShortPath returns the notation of the path that produced the alignment.
func (m *MultipleSequenceAlignment) ShortPath() string {
	return ShortPath(m.Path)
}
