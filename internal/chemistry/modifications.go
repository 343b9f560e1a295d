package chemistry

import (
	"fmt"
	"sort"
	"strings"
)

// Modification is a mass shift attached to a residue. Named modifications
// carry an elemental Formula; mass-only modifications carry a Delta instead.
type Modification struct {
	Name    string
	Formula Formula
	Delta   float64
}

// Mass returns the monoisotopic mass shift of the modification.
func (m Modification) Mass() float64 {
	return m.Formula.MonoisotopicMass() + m.Delta
}

func (m Modification) String() string {
	if m.Name != "" {
		return m.Name
	}
	return fmt.Sprintf("%+.4f", m.Delta)
}

// ModDatabase stores modification definitions by name
type ModDatabase struct {
	mods map[string]Modification
}

// NewModDatabase creates an empty modification database
func NewModDatabase() *ModDatabase {
	return &ModDatabase{
		mods: make(map[string]Modification),
	}
}

// Add adds or updates a modification
func (db *ModDatabase) Add(name string, formula Formula) {
	db.mods[strings.ToLower(name)] = Modification{Name: name, Formula: formula}
}

// Get returns the modification registered under name (case insensitive).
func (db *ModDatabase) Get(name string) (Modification, bool) {
	m, ok := db.mods[strings.ToLower(name)]
	return m, ok
}

// Names returns the registered names in sorted order.
func (db *ModDatabase) Names() []string {
	names := make([]string, 0, len(db.mods))
	for _, m := range db.mods {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return names
}

// DefaultModDatabase returns a ModDatabase pre-loaded with common modifications
func DefaultModDatabase() *ModDatabase {
	db := NewModDatabase()

	// Common modifications from unimod
	db.Add("Acetyl", Formula{C: 2, H: 2, O: 1})
	db.Add("Amidated", Formula{H: 1, N: 1, O: -1})
	db.Add("Carbamidomethyl", Formula{C: 2, H: 3, N: 1, O: 1})
	db.Add("Carbamyl", Formula{C: 1, H: 1, N: 1, O: 1})
	db.Add("Carboxymethyl", Formula{C: 2, H: 2, O: 2})
	db.Add("Deamidated", Formula{H: -1, N: -1, O: 1})
	db.Add("Dehydrated", Formula{H: -2, O: -1})
	db.Add("Dimethyl", Formula{C: 2, H: 4})
	db.Add("Gln->pyro-Glu", Formula{H: -3, N: -1})
	db.Add("Glu->pyro-Glu", Formula{H: -2, O: -1})
	db.Add("Methyl", Formula{C: 1, H: 2})
	db.Add("Oxidation", Formula{O: 1})
	db.Add("Phospho", Formula{H: 1, O: 3, P: 1})
	db.Add("Propionamide", Formula{C: 3, H: 5, N: 1, O: 1})
	db.Add("Sulfo", Formula{O: 3, S: 1})
	db.Add("Trimethyl", Formula{C: 3, H: 6})

	return db
}
