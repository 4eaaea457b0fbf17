package physics

import "math"

// PartitionFunction computes Z(T) = sum g*exp(-E/(k_B*T)) over the given
// energy levels. Slices must be index-aligned: degeneracies[i] belongs to
// energies[i]. A degenerate or empty level set yields 1.0 so that intensity
// calculations never divide by zero.
func PartitionFunction(energies, degeneracies []float64, temperature float64) float64 {
	var z float64
	for i, e := range energies {
		z += degeneracies[i] * math.Exp(-e/(BoltzmannEV*temperature))
	}
	if z == 0 {
		return 1.0
	}
	return z
}

// LineIntensity computes the emission line intensity from the Boltzmann
// population of the upper level:
//
//	I = g_k * A_ki * exp(-E_k/(k_B*T)) / Z
func LineIntensity(upperDegeneracy, einsteinCoeff, upperEnergy, temperature, partition float64) float64 {
	return upperDegeneracy * einsteinCoeff * math.Exp(-upperEnergy/(BoltzmannEV*temperature)) / partition
}
