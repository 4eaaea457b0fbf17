package conf

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultSettings(t *testing.T) *Settings {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	setDefaultConfig()

	settings := &Settings{}
	require.NoError(t, viper.Unmarshal(settings))
	return settings
}

func TestDefaultsAreValid(t *testing.T) {
	settings := defaultSettings(t)
	assert.NoError(t, ValidateSettings(settings))
}

func TestDefaultValues(t *testing.T) {
	settings := defaultSettings(t)

	assert.Equal(t, 4096, settings.Synthesis.Resolution)
	assert.Equal(t, 200.0, settings.Synthesis.WavelengthMin)
	assert.Equal(t, 900.0, settings.Synthesis.WavelengthMax)
	assert.Equal(t, 0.1, settings.Synthesis.Sigma)
	assert.Equal(t, 0.8, settings.Synthesis.TargetMaxIntensity)
	assert.Equal(t, 7, settings.Synthesis.ElementsPerSample)
	assert.Len(t, settings.Synthesis.BaseElements, 10)
	assert.Len(t, settings.Synthesis.Temperatures, 6)
	assert.Len(t, settings.Synthesis.ElectronDensities, 10)

	assert.Equal(t, 500, settings.Dataset.NumSamples)
	assert.Equal(t, int64(42), settings.Dataset.Seed)
	assert.Equal(t, 5, settings.Dataset.MaxAttempts)
	assert.Equal(t, 0.70, settings.Dataset.TrainFraction)
	assert.Equal(t, 0.15, settings.Dataset.ValidationFraction)

	assert.False(t, settings.Telemetry.Enabled)
}

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"resolution too small", func(s *Settings) { s.Synthesis.Resolution = 1 }},
		{"empty wavelength range", func(s *Settings) { s.Synthesis.WavelengthMin = 900; s.Synthesis.WavelengthMax = 200 }},
		{"zero sigma", func(s *Settings) { s.Synthesis.Sigma = 0 }},
		{"zero convolution sigma", func(s *Settings) { s.Synthesis.ConvolutionSigma = 0 }},
		{"zero target intensity", func(s *Settings) { s.Synthesis.TargetMaxIntensity = 0 }},
		{"no base elements", func(s *Settings) { s.Synthesis.BaseElements = nil }},
		{"too many elements per sample", func(s *Settings) { s.Synthesis.ElementsPerSample = 99 }},
		{"inverted percentage range", func(s *Settings) { s.Synthesis.PercentageMin = 30 }},
		{"no temperatures", func(s *Settings) { s.Synthesis.Temperatures = nil }},
		{"no densities", func(s *Settings) { s.Synthesis.ElectronDensities = nil }},
		{"zero samples", func(s *Settings) { s.Dataset.NumSamples = 0 }},
		{"zero attempts", func(s *Settings) { s.Dataset.MaxAttempts = 0 }},
		{"fractions leave no test split", func(s *Settings) { s.Dataset.TrainFraction = 0.9; s.Dataset.ValidationFraction = 0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := defaultSettings(t)
			tt.mutate(settings)
			assert.Error(t, ValidateSettings(settings))
		})
	}
}
