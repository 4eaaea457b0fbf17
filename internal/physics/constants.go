// Package physics holds the plasma physics relations used by the spectral
// synthesis: Boltzmann level populations, the Saha ionization equilibrium and
// the LTE validity criterion. Energies are in eV, temperatures in K and
// electron densities in cm^-3 throughout.
package physics

// Physical constants in the unit system of the synthesis.
const (
	// BoltzmannEV is the Boltzmann constant in eV/K.
	BoltzmannEV = 8.617333262145e-5

	// ElectronMassKG is the electron rest mass in kg.
	ElectronMassKG = 9.1093837e-31

	// PlanckEVS is the Planck constant in eV*s.
	PlanckEVS = 4.135667696e-15
)
