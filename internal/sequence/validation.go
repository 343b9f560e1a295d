package sequence

import "fmt"

// SequenceError is the base error type for sequence operations.
type SequenceError interface {
	error
	IsSequenceError()
}

// EmptySequenceError is returned when a peptide definition is empty.
type EmptySequenceError struct{}

func (e *EmptySequenceError) Error() string {
	return "peptide must have at least one residue"
}

func (e *EmptySequenceError) IsSequenceError() {}

// InvalidResidueError is returned when an unknown amino acid is encountered.
type InvalidResidueError struct {
	Position int
	Found    rune
}

func (e *InvalidResidueError) Error() string {
	return fmt.Sprintf("invalid amino acid '%c' at position %d", e.Found, e.Position)
}

func (e *InvalidResidueError) IsSequenceError() {}

// UnknownModificationError is returned when a bracketed modification name is
// not present in the modification database.
type UnknownModificationError struct {
	Position int
	Name     string
}

func (e *UnknownModificationError) Error() string {
	return fmt.Sprintf("unknown modification '%s' at position %d", e.Name, e.Position)
}

func (e *UnknownModificationError) IsSequenceError() {}

// SyntaxError is returned for malformed modification brackets.
type SyntaxError struct {
	Position int
	Reason   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: %s", e.Position, e.Reason)
}

func (e *SyntaxError) IsSequenceError() {}

// ValidateResidues validates that a string contains only known amino acids.
func ValidateResidues(residues string) error {
	for i, r := range residues {
		if !IsValidAminoAcid(r) {
			return &InvalidResidueError{Position: i, Found: r}
		}
	}
	return nil
}
