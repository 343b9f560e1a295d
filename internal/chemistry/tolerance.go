package chemistry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ToleranceUnit selects how a Tolerance value is interpreted.
type ToleranceUnit int

const (
	// PPM is a relative tolerance in parts per million
	PPM ToleranceUnit = iota
	// Dalton is an absolute tolerance
	Dalton
)

func (u ToleranceUnit) String() string {
	switch u {
	case PPM:
		return "ppm"
	case Dalton:
		return "Da"
	default:
		return "unknown"
	}
}

// Tolerance is a mass equality predicate, either absolute or relative.
type Tolerance struct {
	Value float64
	Unit  ToleranceUnit
}

// NewPPM creates a relative tolerance.
func NewPPM(ppm float64) Tolerance {
	return Tolerance{Value: ppm, Unit: PPM}
}

// NewDalton creates an absolute tolerance.
func NewDalton(da float64) Tolerance {
	return Tolerance{Value: da, Unit: Dalton}
}

// Validate rejects negative, NaN or infinite tolerances and unknown units.
func (t Tolerance) Validate() error {
	if math.IsNaN(t.Value) || math.IsInf(t.Value, 0) {
		return fmt.Errorf("tolerance must be a finite number, got %v", t.Value)
	}
	if t.Value < 0 {
		return fmt.Errorf("tolerance must not be negative, got %v", t.Value)
	}
	if t.Unit != PPM && t.Unit != Dalton {
		return fmt.Errorf("unknown tolerance unit %d", int(t.Unit))
	}
	return nil
}

// Within reports whether the two masses are equal within the tolerance.
// A relative tolerance is taken relative to the larger mass so the
// predicate is symmetric.
func (t Tolerance) Within(a, b float64) bool {
	diff := math.Abs(a - b)
	switch t.Unit {
	case Dalton:
		return diff <= t.Value
	default:
		return diff <= math.Max(math.Abs(a), math.Abs(b))*t.Value*1e-6
	}
}

func (t Tolerance) String() string {
	return fmt.Sprintf("%g %s", t.Value, t.Unit)
}

// PPMError returns the relative difference of b to a in ppm.
func PPMError(a, b float64) float64 {
	if a == 0 {
		return math.Inf(1)
	}
	return math.Abs(a-b) / math.Abs(a) * 1e6
}

// ParseTolerance parses strings like "10ppm", "10 ppm", "0.02da" or "0.02 Da".
func ParseTolerance(s string) (Tolerance, error) {
	text := strings.ToLower(strings.TrimSpace(s))
	var unit ToleranceUnit
	switch {
	case strings.HasSuffix(text, "ppm"):
		unit = PPM
		text = strings.TrimSuffix(text, "ppm")
	case strings.HasSuffix(text, "da"):
		unit = Dalton
		text = strings.TrimSuffix(text, "da")
	default:
		return Tolerance{}, fmt.Errorf("invalid tolerance '%s', expected a 'ppm' or 'da' suffix", s)
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return Tolerance{}, fmt.Errorf("invalid tolerance value '%s': %w", s, err)
	}
	t := Tolerance{Value: value, Unit: unit}
	if err := t.Validate(); err != nil {
		return Tolerance{}, err
	}
	return t, nil
}
