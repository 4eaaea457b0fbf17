// Package synth implements the spectral synthesis core: per-species line
// spectra from Boltzmann statistics, multi-species mixtures weighted by the
// Saha ionization equilibrium, instrument convolution, peak normalization and
// per-bin dominant-species labeling.
package synth

import "sort"

// NewGrid returns the shared wavelength grid: resolution evenly spaced points
// over [wlMin, wlMax]. The grid is a process-wide constant; every dataset
// append must use a byte-identical grid.
func NewGrid(wlMin, wlMax float64, resolution int) []float64 {
	grid := make([]float64, resolution)
	step := (wlMax - wlMin) / float64(resolution-1)
	for i := range grid {
		grid[i] = wlMin + float64(i)*step
	}
	grid[resolution-1] = wlMax
	return grid
}

// BinFor returns the insertion index of the wavelength in the grid. The
// result equals len(grid) for wavelengths beyond the upper bound; callers
// treat that as "outside the grid".
func BinFor(grid []float64, wavelength float64) int {
	return sort.SearchFloat64s(grid, wavelength)
}
