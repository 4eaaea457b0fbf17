package physics

import "math"

// energy unit conversions used to express the thermal de Broglie factor in
// cm^-3 with eV-based constants
const (
	jouleFactor = 1.60217662e-16 // k_B*T term, eV*K -> J scale used below
	evFactor    = 1.60217662e-19 // Planck constant scale
	m3ToCm3     = 1e6
)

// SahaRatio returns the population ratio n_II/n_I between the singly ionized
// and neutral stages at the given temperature and electron density:
//
//	S = (2*U_II/U_I) * (2*pi*m_e*k_B*T/h^2)^(3/2) / n_e * exp(-E_ion/(k_B*T))
//
// Both stage partition functions are taken as 1.0; excited ion states are not
// modeled.
func SahaRatio(ionizationEnergy, temperature, electronDensity float64) float64 {
	thermal := math.Pow(2*math.Pi*ElectronMassKG*(BoltzmannEV*temperature*jouleFactor)/
		math.Pow(PlanckEVS*evFactor, 2), 1.5)
	thermal /= m3ToCm3

	const uNeutral, uIon = 1.0, 1.0
	sahaFactor := (2 * uIon / uNeutral) * thermal / electronDensity
	return sahaFactor * math.Exp(-ionizationEnergy/(BoltzmannEV*temperature))
}
