package synth

import "encoding/json"

// Sample is one labeled dataset entry. It is created by the mixture
// synthesizer and never mutated afterwards.
type Sample struct {
	Temperature     float64            // K
	ElectronDensity float64            // cm^-3
	DeltaEMax       float64            // eV, diagnostic for the LTE floor
	Percentages     map[string]float64 // species key -> atomic percent, sums to 100
	Spectrum        []float64          // normalized intensity per grid bin
	Labels          []int32            // dominant species per bin, 0 = background
	Contributions   [][]float64        // per bin, per catalog species normalized intensity
}

// CompositionJSON serializes the sample's composition metadata in the flat
// form stored in the dataset container: element percentages plus the physical
// condition keys.
func (s *Sample) CompositionJSON() ([]byte, error) {
	flat := make(map[string]float64, len(s.Percentages)+3)
	for k, v := range s.Percentages {
		flat[k] = v
	}
	flat["temperature"] = s.Temperature
	flat["electron_density"] = s.ElectronDensity
	flat["delta_E_max"] = s.DeltaEMax
	return json.Marshal(flat)
}
