package alignment

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/cablastp/blosum"
	"github.com/rusteomics/mzalign/internal/chemistry"
)

// SubstitutionMatrix scores pairs of amino acids. Codes outside A-Z score 0.
type SubstitutionMatrix struct {
	Name   string
	scores [26][26]int
}

// Score returns the substitution score of two amino acids.
func (m *SubstitutionMatrix) Score(a, b chemistry.AminoAcid) int {
	i, j := int(a-'A'), int(b-'A')
	if i < 0 || i >= 26 || j < 0 || j >= 26 {
		return 0
	}
	return m.scores[i][j]
}

func (m *SubstitutionMatrix) String() string {
	return m.Name
}

// IdentityMatrix scores equal amino acids with match and everything else
// with mismatch.
func IdentityMatrix(match, mismatch int) *SubstitutionMatrix {
	m := &SubstitutionMatrix{Name: fmt.Sprintf("identity(%d,%d)", match, mismatch)}
	for i := range m.scores {
		for j := range m.scores[i] {
			if i == j {
				m.scores[i][j] = match
			} else {
				m.scores[i][j] = mismatch
			}
		}
	}
	return m
}

// ParseSubstitutionMatrix reads a matrix in the NCBI text layout: a header
// line of one-letter codes followed by one row per code. Lines starting with
// '#' are ignored.
func ParseSubstitutionMatrix(name, text string) (*SubstitutionMatrix, error) {
	m := &SubstitutionMatrix{Name: name}
	var header []int
	rows := 0
	scanner := bufio.NewScanner(strings.NewReader(text))
	for line := 1; scanner.Scan(); line++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if header == nil {
			for _, f := range fields {
				idx, err := matrixIndex(f)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				header = append(header, idx)
			}
			continue
		}
		row, err := matrixIndex(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(fields)-1 != len(header) {
			return nil, fmt.Errorf("line %d: expected %d scores, got %d", line, len(header), len(fields)-1)
		}
		for i, f := range fields[1:] {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid score '%s'", line, f)
			}
			m.scores[row][header[i]] = v
		}
		rows++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if header == nil || rows == 0 {
		return nil, fmt.Errorf("substitution matrix %s is empty", name)
	}
	return m, nil
}

func matrixIndex(code string) (int, error) {
	if len(code) != 1 || code[0] < 'A' || code[0] > 'Z' {
		return 0, fmt.Errorf("invalid amino acid code '%s'", code)
	}
	return int(code[0] - 'A'), nil
}

var blosum62 = newBLOSUM62()

// newBLOSUM62 fills the lookup from the cablastp table. Codes of its
// alphabet outside A-Z (the stop column) are skipped.
func newBLOSUM62() *SubstitutionMatrix {
	m := &SubstitutionMatrix{Name: "BLOSUM62"}
	for i, a := range blosum.Alphabet62 {
		if a < 'A' || a > 'Z' {
			continue
		}
		for j, b := range blosum.Alphabet62 {
			if b < 'A' || b > 'Z' {
				continue
			}
			m.scores[a-'A'][b-'A'] = blosum.Matrix62[i][j]
		}
	}
	return m
}

// BLOSUM62 returns the BLOSUM62 matrix.
func BLOSUM62() *SubstitutionMatrix {
	return blosum62
}

// MatrixByName returns a built-in matrix: "blosum62" or "identity".
func MatrixByName(name string) (*SubstitutionMatrix, error) {
	switch strings.ToLower(name) {
	case "", "blosum62":
		return BLOSUM62(), nil
	case "identity":
		return IdentityMatrix(1, -1), nil
	default:
		return nil, fmt.Errorf("unknown substitution matrix '%s'", name)
	}
}
