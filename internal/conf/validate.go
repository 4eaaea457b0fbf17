package conf

import (
	"github.com/spectralab/plasmaspec/internal/errors"
)

// ValidateSettings checks structural consistency of the loaded configuration.
// It is called once at load time; later stages may assume these invariants.
func ValidateSettings(settings *Settings) error {
	s := &settings.Synthesis
	switch {
	case s.Resolution < 2:
		return validationError("synthesis.resolution must be at least 2", "resolution", s.Resolution)
	case s.WavelengthMin >= s.WavelengthMax:
		return validationError("synthesis wavelength range is empty", "wavelengthmin", s.WavelengthMin)
	case s.Sigma <= 0:
		return validationError("synthesis.sigma must be positive", "sigma", s.Sigma)
	case s.ConvolutionSigma <= 0:
		return validationError("synthesis.convolutionsigma must be positive", "convolutionsigma", s.ConvolutionSigma)
	case s.TargetMaxIntensity <= 0:
		return validationError("synthesis.targetmaxintensity must be positive", "targetmaxintensity", s.TargetMaxIntensity)
	case len(s.BaseElements) == 0:
		return validationError("synthesis.baseelements must not be empty", "baseelements", s.BaseElements)
	case s.ElementsPerSample <= 0 || s.ElementsPerSample > len(s.BaseElements):
		return validationError("synthesis.elementspersample out of range", "elementspersample", s.ElementsPerSample)
	case s.PercentageMin <= 0 || s.PercentageMin >= s.PercentageMax:
		return validationError("synthesis percentage range is invalid", "percentagemin", s.PercentageMin)
	case len(s.Temperatures) == 0:
		return validationError("synthesis.temperatures must not be empty", "temperatures", s.Temperatures)
	case len(s.ElectronDensities) == 0:
		return validationError("synthesis.electrondensities must not be empty", "electrondensities", s.ElectronDensities)
	}

	d := &settings.Dataset
	switch {
	case d.NumSamples <= 0:
		return validationError("dataset.numsamples must be positive", "numsamples", d.NumSamples)
	case d.MaxAttempts <= 0:
		return validationError("dataset.maxattempts must be positive", "maxattempts", d.MaxAttempts)
	case d.TrainFraction <= 0 || d.ValidationFraction < 0 ||
		d.TrainFraction+d.ValidationFraction >= 1.0:
		return validationError("dataset split fractions must leave room for a test split", "trainfraction", d.TrainFraction)
	}

	return nil
}

func validationError(msg, key string, value any) error {
	return errors.Newf("%s", msg).
		Component("conf").
		Category(errors.CategoryConfiguration).
		Context(key, value).
		Build()
}
