package synth

import (
	"log/slog"

	"github.com/spectralab/plasmaspec/internal/logging"
	"github.com/spectralab/plasmaspec/internal/physics"
	"github.com/spectralab/plasmaspec/internal/species"
)

// LineRecord captures per-line diagnostics produced during synthesis.
type LineRecord struct {
	Wavelength float64 // nm
	Intensity  float64 // Boltzmann intensity scaled by atom fraction
	Species    string  // species key, e.g. "Si_1"
	Bin        int     // grid bin index
}

// SpeciesResult holds the discretized spectra of one species across the
// configured temperature set. Outer slices are index-aligned with
// Temperatures; all are empty when the species has no usable data.
type SpeciesResult struct {
	Grid          []float64
	Temperatures  []float64
	Spectra       [][]float64
	BinIndices    [][]int
	LabelIndices  [][]int
	Lines         [][]LineRecord
	Contributions [][]float64
}

// SpeciesSynthesizer turns one species' transition set into discretized
// emission spectra using Boltzmann population statistics and the shared
// profile cache.
type SpeciesSynthesizer struct {
	Species *species.Species

	catalog      *species.Catalog
	temperatures []float64
	grid         []float64
	profiles     *ProfileCache
	log          *slog.Logger
}

// NewSpeciesSynthesizer builds a synthesizer for one catalog species.
func NewSpeciesSynthesizer(sp *species.Species, catalog *species.Catalog, temperatures, grid []float64, profiles *ProfileCache) *SpeciesSynthesizer {
	return &SpeciesSynthesizer{
		Species:      sp,
		catalog:      catalog,
		temperatures: temperatures,
		grid:         grid,
		profiles:     profiles,
		log:          logging.ForService("synth").With("species", sp.Key.String()),
	}
}

// Simulate computes the species spectrum at every configured temperature,
// scaled by the given atom fraction. A species without usable transition data
// yields empty per-temperature slices and a warning; mixture synthesis
// excludes it. Results are recomputed on every call; only broadening profiles
// are memoized.
func (ss *SpeciesSynthesizer) Simulate(atomFraction float64) SpeciesResult {
	result := SpeciesResult{Grid: ss.grid}

	if !ss.Species.HasData() {
		ss.log.Warn("no transition data, skipping synthesis")
		return result
	}

	energies, degeneracies := ss.Species.EnergyLevels()
	if len(energies) == 0 {
		ss.log.Warn("no valid energy levels, skipping synthesis")
		return result
	}

	resolution := len(ss.grid)
	label := ss.Species.Key.String()
	labelIndex := ss.catalog.Index(ss.Species.Key)
	if labelIndex < 0 {
		labelIndex = ss.catalog.Len()
	}

	for _, temp := range ss.temperatures {
		z := physics.PartitionFunction(energies, degeneracies, temp)

		intensities := make([]float64, resolution)
		contributions := make([]float64, resolution)
		var binIndices, labelIndices []int
		var lines []LineRecord

		for _, tr := range ss.Species.Transitions {
			intensity := physics.LineIntensity(tr.UpperDegeneracy, tr.EinsteinCoeff, tr.UpperEnergy, temp, z)
			bin := BinFor(ss.grid, tr.WavelengthNM)
			if bin < 0 || bin >= resolution {
				continue
			}

			profile := ss.profiles.Profile(tr.WavelengthNM)
			// Accumulate over the profile's support window clipped to grid
			// bounds. The profile spans the whole grid, so the window starts
			// at most half a grid below the line bin.
			start := bin - len(profile)/2
			if start < 0 {
				start = 0
			}
			end := start + len(profile)
			if end > resolution {
				end = resolution
			}
			for i := start; i < end; i++ {
				v := intensity * atomFraction * profile[i-start]
				intensities[i] += v
				contributions[i] += v
			}

			lines = append(lines, LineRecord{
				Wavelength: tr.WavelengthNM,
				Intensity:  intensity * atomFraction,
				Species:    label,
				Bin:        bin,
			})
			binIndices = append(binIndices, bin)
			labelIndices = append(labelIndices, labelIndex)
		}

		result.Temperatures = append(result.Temperatures, temp)
		result.Spectra = append(result.Spectra, intensities)
		result.BinIndices = append(result.BinIndices, binIndices)
		result.LabelIndices = append(result.LabelIndices, labelIndices)
		result.Lines = append(result.Lines, lines)
		result.Contributions = append(result.Contributions, contributions)
	}

	return result
}
