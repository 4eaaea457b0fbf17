package atomicdata

import (
	"github.com/spectralab/plasmaspec/internal/species"
)

// IonizationEnergies loads the full ionization energy table and guarantees an
// entry for every required species. Missing entries default to 0.0 eV with a
// warning; the mixture synthesizer skips elements without a valid energy.
func (s *Store) IonizationEnergies(required []species.Key) map[string]float64 {
	var rows []IonizationEnergy
	if err := s.db.Find(&rows).Error; err != nil {
		s.log.Error("failed to query ionization energies", "error", err)
	}

	energies := make(map[string]float64, len(rows))
	for i := range rows {
		energies[rows[i].SpeciesName] = rows[i].EnergyEV
	}

	for _, key := range required {
		name := key.SpectroscopicName()
		if _, ok := energies[name]; !ok {
			s.log.Warn("no ionization energy for species, defaulting to 0.0 eV",
				"species", name)
			energies[name] = 0.0
		}
	}

	return energies
}
