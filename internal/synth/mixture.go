package synth

import (
	"errors"
	"log/slog"
	"math/rand"

	"github.com/spectralab/plasmaspec/internal/conf"
	"github.com/spectralab/plasmaspec/internal/logging"
	"github.com/spectralab/plasmaspec/internal/physics"
	"github.com/spectralab/plasmaspec/internal/species"
)

// DefaultDeltaEMax is the fallback transition energy gap when none of the
// selected species carries a positive gap, eV.
const DefaultDeltaEMax = 4.0

// Generation failures are ordinary negative results: the driver inspects them
// and retries with a fresh random draw. No partial Sample is ever returned.
var (
	ErrZeroComposition   = errors.New("total composition is zero")
	ErrNoEligibleSpecies = errors.New("no eligible species for composition")
	ErrNoSpectrum        = errors.New("no spectrum generated")
)

// MixtureSynthesizer realizes full samples for (temperature, electron
// density) targets by combining species spectra weighted with
// Saha-equilibrium atomic fractions.
type MixtureSynthesizer struct {
	catalog      *species.Catalog
	synthesizers map[species.Key]*SpeciesSynthesizer
	ionEnergies  map[string]float64
	baseElements []string
	grid         []float64
	cfg          *conf.SynthesisSettings
	rng          *rand.Rand
	log          *slog.Logger
}

// NewMixtureSynthesizer wires the per-species synthesizers into a mixture
// model. ionEnergies is keyed by spectroscopic name ("Si I").
func NewMixtureSynthesizer(
	catalog *species.Catalog,
	synthesizers map[species.Key]*SpeciesSynthesizer,
	ionEnergies map[string]float64,
	grid []float64,
	cfg *conf.SynthesisSettings,
	rng *rand.Rand,
) *MixtureSynthesizer {
	return &MixtureSynthesizer{
		catalog:      catalog,
		synthesizers: synthesizers,
		ionEnergies:  ionEnergies,
		baseElements: cfg.BaseElements,
		grid:         grid,
		cfg:          cfg,
		rng:          rng,
		log:          logging.ForService("synth.mixture"),
	}
}

// GenerateSample realizes one Sample at the given conditions, or reports a
// generation failure for the caller to retry.
func (m *MixtureSynthesizer) GenerateSample(temp, electronDensity float64) (*Sample, error) {
	if physics.SelfAbsorptionRisk(temp, electronDensity) {
		m.log.Warn("high n_e at low T may cause self-absorption",
			"temperature_k", temp, "electron_density_cm3", electronDensity)
	}

	selected := m.selectBaseElements()
	deltaEMax := m.maxDeltaE(selected)

	// Saha split of a random total percentage into neutral/ion fractions,
	// per selected element. Fractions are kept on a 0..1 scale until the
	// sample is emitted.
	fractions := make(map[species.Key]float64, len(selected)*2)
	var totalPercentage float64
	for _, elem := range selected {
		neutral := species.Key{Element: elem, Stage: species.StageNeutral}
		ionEnergy := m.ionEnergies[neutral.SpectroscopicName()]
		if ionEnergy == 0.0 {
			m.log.Warn("no ionization energy for element, excluding from sample",
				"element", elem)
			continue
		}

		saha := physics.SahaRatio(ionEnergy, temp, electronDensity)
		percentage := m.cfg.PercentageMin + m.rng.Float64()*(m.cfg.PercentageMax-m.cfg.PercentageMin)

		fractions[neutral] = percentage * (1 / (1 + saha)) / 100.0
		fractions[species.Key{Element: elem, Stage: species.StageIon}] = percentage * (saha / (1 + saha)) / 100.0
		totalPercentage += percentage
	}

	if totalPercentage == 0 {
		return nil, ErrZeroComposition
	}
	scale := 100.0 / totalPercentage
	for k := range fractions {
		fractions[k] *= scale
	}

	// Only species with transition data contribute to the spectrum.
	// Catalog order keeps the first-maximum label tie-break reproducible.
	var eligible []species.Key
	for _, key := range m.catalog.Keys() {
		if _, ok := fractions[key]; !ok {
			continue
		}
		if ss, ok := m.synthesizers[key]; ok && ss.Species.HasData() {
			eligible = append(eligible, key)
		}
	}
	if len(eligible) == 0 {
		m.log.Warn("no eligible species for selected composition",
			"temperature_k", temp)
		return nil, ErrNoEligibleSpecies
	}

	resolution := len(m.grid)
	mixed := make([]float64, resolution)
	perSpecies := make([][]float64, len(eligible))

	for i, key := range eligible {
		result := m.synthesizers[key].Simulate(fractions[key])
		for ti, t := range result.Temperatures {
			if t == temp {
				for j, v := range result.Spectra[ti] {
					mixed[j] += v
				}
				perSpecies[i] = result.Contributions[ti]
				break
			}
		}
		if perSpecies[i] == nil {
			perSpecies[i] = make([]float64, resolution)
		}
	}

	if maxValue(mixed) == 0 {
		m.log.Warn("no spectrum generated", "temperature_k", temp)
		return nil, ErrNoSpectrum
	}

	convolved := Convolve(mixed, m.grid, m.cfg.ConvolutionSigma)
	normalized := Normalize(convolved, m.cfg.TargetMaxIntensity)

	labels, contributions := m.assignLabels(normalized, eligible, perSpecies)

	percentages := make(map[string]float64, len(fractions))
	for key, fraction := range fractions {
		percentages[key.String()] = fraction * 100.0
	}

	return &Sample{
		Temperature:     temp,
		ElectronDensity: electronDensity,
		DeltaEMax:       deltaEMax,
		Percentages:     percentages,
		Spectrum:        normalized,
		Labels:          labels,
		Contributions:   contributions,
	}, nil
}

// assignLabels computes the per-bin dominant species. A bin is labeled when
// the total contribution across species reaches the intensity threshold; ties
// resolve to the first maximum for reproducibility. Labels are catalog
// indices plus one; zero means background.
func (m *MixtureSynthesizer) assignLabels(normalized []float64, eligible []species.Key, perSpecies [][]float64) ([]int32, [][]float64) {
	resolution := len(normalized)
	labels := make([]int32, resolution)
	contributions := make([][]float64, resolution)
	for i := range contributions {
		contributions[i] = make([]float64, m.catalog.Len())
	}

	for bin := 0; bin < resolution; bin++ {
		var total float64
		dominant := 0
		for si := range eligible {
			v := perSpecies[si][bin]
			total += v
			if v > perSpecies[dominant][bin] {
				dominant = si
			}
		}
		if total < m.cfg.IntensityThreshold {
			continue
		}
		catalogIndex := m.catalog.Index(eligible[dominant])
		if catalogIndex < 0 {
			continue
		}
		labels[bin] = int32(catalogIndex + 1)
		contributions[bin][catalogIndex] = normalized[bin]
	}

	return labels, contributions
}

// selectBaseElements draws a fixed-size random subset of the base elements
// without replacement.
func (m *MixtureSynthesizer) selectBaseElements() []string {
	perm := m.rng.Perm(len(m.baseElements))
	n := m.cfg.ElementsPerSample
	if n > len(perm) {
		n = len(perm)
	}
	selected := make([]string, n)
	for i := 0; i < n; i++ {
		selected[i] = m.baseElements[perm[i]]
	}
	return selected
}

// maxDeltaE returns the largest positive transition energy gap across the
// selected element pairs, or the fallback constant.
func (m *MixtureSynthesizer) maxDeltaE(selected []string) float64 {
	var pairs []*species.Species
	for _, elem := range selected {
		for _, stage := range []int{species.StageNeutral, species.StageIon} {
			if ss, ok := m.synthesizers[species.Key{Element: elem, Stage: stage}]; ok {
				pairs = append(pairs, ss.Species)
			}
		}
	}
	return species.MaxDeltaE(pairs, DefaultDeltaEMax)
}

func maxValue(values []float64) float64 {
	var max float64
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}
