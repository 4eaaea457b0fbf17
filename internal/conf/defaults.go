// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "plasmaspec")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/plasmaspec.log")

	viper.SetDefault("synthesis.resolution", 4096)
	viper.SetDefault("synthesis.wavelengthmin", 200.0)
	viper.SetDefault("synthesis.wavelengthmax", 900.0)
	viper.SetDefault("synthesis.sigma", 0.1)
	viper.SetDefault("synthesis.convolutionsigma", 0.1)
	viper.SetDefault("synthesis.targetmaxintensity", 0.8)
	viper.SetDefault("synthesis.intensitythreshold", 0.01)
	viper.SetDefault("synthesis.elementspersample", 7)
	viper.SetDefault("synthesis.percentagemin", 5.0)
	viper.SetDefault("synthesis.percentagemax", 20.0)
	viper.SetDefault("synthesis.baseelements", []string{
		"Si", "Al", "Fe", "Ca", "O", "Na", "N", "Ni", "Cr", "Cl",
	})
	viper.SetDefault("synthesis.temperatures", []float64{
		6000, 8000, 10000, 12000, 14000, 15000,
	})
	// Log-spaced candidates over 1e15..1e17 cm^-3, 10 points
	viper.SetDefault("synthesis.electrondensities", []float64{
		1.0e15, 1.668101e15, 2.782559e15, 4.641589e15, 7.742637e15,
		1.291550e16, 2.154435e16, 3.593814e16, 5.994843e16, 1.0e17,
	})

	viper.SetDefault("dataset.numsamples", 500)
	viper.SetDefault("dataset.outputdir", "output/")
	viper.SetDefault("dataset.filename", "spectral_dataset.spd")
	viper.SetDefault("dataset.combinationlog", "combinations.json")
	viper.SetDefault("dataset.seed", 42)
	viper.SetDefault("dataset.maxattempts", 5)
	viper.SetDefault("dataset.trainfraction", 0.70)
	viper.SetDefault("dataset.validationfraction", 0.15)

	viper.SetDefault("input.atomicdb", "data/atomic.db")
	viper.SetDefault("input.elementmap", "data/element_map.json")

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.listen", "0.0.0.0:8090")
}
