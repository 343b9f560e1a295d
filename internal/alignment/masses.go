package alignment

import (
	"math"

	"github.com/rusteomics/mzalign/internal/chemistry"
)

// WindowMasses holds, per parallel sequence and position, the masses of the
// windows of 1..Steps positions ending at that position (inclusive).
type WindowMasses struct {
	sequences int
	length    int
	steps     int
	values    []float64 // NaN marks an absent window
}

func newWindowMasses(sequences, length, steps int) *WindowMasses {
	values := make([]float64, sequences*length*steps)
	for i := range values {
		values[i] = math.NaN()
	}
	return &WindowMasses{sequences: sequences, length: length, steps: steps, values: values}
}

// Steps returns the longest window stored.
func (w *WindowMasses) Steps() int {
	return w.steps
}

// Get returns the mass of the window of the given length ending at
// position. The window is absent when it leaves the sequence bounds or
// covers no residue.
func (w *WindowMasses) Get(sequenceIndex, position, length int) (float64, bool) {
	if sequenceIndex < 0 || sequenceIndex >= w.sequences ||
		position < 0 || position >= w.length ||
		length < 1 || length > w.steps {
		return 0, false
	}
	v := w.values[w.offset(sequenceIndex, position)+length-1]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func (w *WindowMasses) offset(sequenceIndex, position int) int {
	return (sequenceIndex*w.length + position) * w.steps
}

// computeWindowMasses walks each window backwards from its end position,
// summing elemental formulas and taking one mass reading per window.
func computeWindowMasses(a Alignable, steps int) *WindowMasses {
	bounds := a.SequenceBounds()
	w := newWindowMasses(len(bounds), a.TotalLength(), steps)
	for s, b := range bounds {
		for pos := b.Start; pos < b.End; pos++ {
			var formula chemistry.Formula
			delta := 0.0
			seen := 0
			base := w.offset(s, pos)
			for k := 0; k < steps && pos-k >= b.Start; k++ {
				if r, ok := a.Index(pos-k, s); ok {
					formula = formula.Add(r.Formula())
					delta += r.MassDelta()
					seen++
				}
				if seen > 0 {
					w.values[base+k] = formula.MonoisotopicMass() + delta
				}
			}
		}
	}
	return w
}
