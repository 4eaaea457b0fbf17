package physics

import "math"

// lteCalibration is the McWhirter criterion prefactor, cm^-3 K^-1/2 eV^-3.
const lteCalibration = 1.6e12

// Self-absorption risk thresholds. High density combined with a cool plasma
// makes optically thick lines likely; generation continues but warns.
const (
	SelfAbsorptionDensity     = 5e16 // cm^-3
	SelfAbsorptionTemperature = 8000 // K
)

// LTEDensityFloor returns the minimum electron density for the local
// thermodynamic equilibrium assumption to hold at the given temperature and
// maximum transition energy gap:
//
//	n_e_min = 1.6e12 * sqrt(T) * deltaE^3
func LTEDensityFloor(temperature, deltaE float64) float64 {
	return lteCalibration * math.Sqrt(temperature) * math.Pow(deltaE, 3)
}

// SelfAbsorptionRisk reports whether the condition pair is prone to
// self-absorption effects that the synthesis does not model.
func SelfAbsorptionRisk(temperature, electronDensity float64) bool {
	return electronDensity > SelfAbsorptionDensity && temperature < SelfAbsorptionTemperature
}
