package alignment

import "fmt"

// AlignmentError is the base error type for alignment operations.
type AlignmentError interface {
	error
	IsAlignmentError()
}

// ConfigError is returned when alignment options are rejected before any
// work is done.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid alignment configuration: %s %s", e.Field, e.Reason)
}

func (e *ConfigError) IsAlignmentError() {}

// UnsupportedShapeError is returned when a profile cannot be used as an
// alignment input, for example because its placements do not share one
// column count.
type UnsupportedShapeError struct {
	Reason string
}

func (e *UnsupportedShapeError) Error() string {
	return "unsupported alignment shape: " + e.Reason
}

func (e *UnsupportedShapeError) IsAlignmentError() {}

// InvariantError signals an internal inconsistency of the DP matrix. It is
// never caused by user input.
type InvariantError struct {
	Row    int
	Column int
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("alignment invariant violated at (%d, %d): %s", e.Row, e.Column, e.Reason)
}

func (e *InvariantError) IsAlignmentError() {}
