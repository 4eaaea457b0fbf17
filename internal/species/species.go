// Package species models the fixed catalog of emitting species and their
// atomic transition data. A species is one element in one ionization stage
// (neutral or singly ionized). The catalog is built once at startup and is
// immutable afterwards; bin labels in generated samples index into it.
package species

import (
	"fmt"
	"math"
)

// Stages covered by the catalog: neutral (1) and singly ionized (2).
const (
	StageNeutral = 1
	StageIon     = 2
)

// Key identifies one species by element symbol and ionization stage.
type Key struct {
	Element string
	Stage   int
}

// String returns the compact form used in composition maps and data files,
// e.g. "Si_1".
func (k Key) String() string {
	return fmt.Sprintf("%s_%d", k.Element, k.Stage)
}

// SpectroscopicName returns the "Si I" / "Si II" form used by the ionization
// energy table.
func (k Key) SpectroscopicName() string {
	numeral := "I"
	if k.Stage == StageIon {
		numeral = "II"
	}
	return fmt.Sprintf("%s %s", k.Element, numeral)
}

// Transition is one cleaned spectral line record. All fields are finite and
// within the configured instrument wavelength range after cleaning.
type Transition struct {
	WavelengthNM    float64 // ritz wavelength in air, nm
	EinsteinCoeff   float64 // transition rate A_ki, s^-1
	UpperEnergy     float64 // E_k, eV
	LowerEnergy     float64 // E_i, eV
	LowerDegeneracy float64 // g_i
	UpperDegeneracy float64 // g_k
}

// Species owns the transition set for one catalog entry.
type Species struct {
	Key              Key
	Transitions      []Transition
	IonizationEnergy float64 // eV, first ionization energy of the element
	DeltaEMax        float64 // max |E_k - E_i| over the transitions, eV
}

// HasData reports whether the species carries any usable transitions.
func (s *Species) HasData() bool {
	return len(s.Transitions) > 0
}

// EnergyLevels deduplicates the upper and lower level energies across the
// species' transitions. The first-seen degeneracy wins per distinct energy
// value. Returned slices are index-aligned.
func (s *Species) EnergyLevels() (energies, degeneracies []float64) {
	seen := make(map[float64]bool, len(s.Transitions)*2)
	for _, tr := range s.Transitions {
		if !seen[tr.LowerEnergy] {
			seen[tr.LowerEnergy] = true
			energies = append(energies, tr.LowerEnergy)
			degeneracies = append(degeneracies, tr.LowerDegeneracy)
		}
		if !seen[tr.UpperEnergy] {
			seen[tr.UpperEnergy] = true
			energies = append(energies, tr.UpperEnergy)
			degeneracies = append(degeneracies, tr.UpperDegeneracy)
		}
	}
	return energies, degeneracies
}

// Catalog is the fixed enumerable set of species for one run. Labels in
// generated samples are catalog indices plus one; zero means background.
type Catalog struct {
	keys  []Key
	index map[Key]int
}

// NewCatalog builds the catalog from the base element list, one neutral and
// one singly ionized entry per element, in element order.
func NewCatalog(baseElements []string) *Catalog {
	c := &Catalog{index: make(map[Key]int, len(baseElements)*2)}
	for _, elem := range baseElements {
		for _, stage := range []int{StageNeutral, StageIon} {
			k := Key{Element: elem, Stage: stage}
			c.index[k] = len(c.keys)
			c.keys = append(c.keys, k)
		}
	}
	return c
}

// Keys returns the catalog entries in index order.
func (c *Catalog) Keys() []Key {
	return c.keys
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.keys)
}

// Index returns the catalog position of the key, or -1 when the key is not
// part of the catalog.
func (c *Catalog) Index(k Key) int {
	if i, ok := c.index[k]; ok {
		return i
	}
	return -1
}

// MaxDeltaE returns the largest positive transition energy gap across the
// given species, or the fallback when none is positive.
func MaxDeltaE(all []*Species, fallback float64) float64 {
	maxGap := math.Inf(-1)
	for _, sp := range all {
		if sp.DeltaEMax > 0 && sp.DeltaEMax > maxGap {
			maxGap = sp.DeltaEMax
		}
	}
	if math.IsInf(maxGap, -1) {
		return fallback
	}
	return maxGap
}
