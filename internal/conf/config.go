// config.go: settings struct and functions to load and save the settings.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

//go:embed config.yaml
var configFiles embed.FS

// LogConfig contains settings for a service log file.
type LogConfig struct {
	Enabled bool   // true to enable file logging
	Path    string // path to log file
}

// MainSettings contains top-level application settings.
type MainSettings struct {
	Name string    // name of the node/run, used in logs
	Log  LogConfig // log file settings
}

// SynthesisSettings controls the spectral synthesis stage.
type SynthesisSettings struct {
	Resolution         int       // number of wavelength grid points
	WavelengthMin      float64   // lower bound of instrument range, nm
	WavelengthMax      float64   // upper bound of instrument range, nm
	Sigma              float64   // per-line Gaussian broadening sigma, nm
	ConvolutionSigma   float64   // instrument response sigma, nm
	TargetMaxIntensity float64   // peak value of the normalized spectrum
	IntensityThreshold float64   // minimum total contribution for a bin label
	ElementsPerSample  int       // number of base elements drawn per sample
	PercentageMin      float64   // lower bound of per-element percentage draw
	PercentageMax      float64   // upper bound of per-element percentage draw
	BaseElements       []string  // element symbols making up the species catalog
	Temperatures       []float64 // plasma temperature set, K
	ElectronDensities  []float64 // electron density candidates, cm^-3
}

// DatasetSettings controls dataset generation and persistence.
type DatasetSettings struct {
	NumSamples         int     // target number of samples per run
	OutputDir          string  // directory for dataset, backups and combination log
	FileName           string  // dataset container file name
	CombinationLog     string  // combination log file name
	Seed               int64   // random seed for reproducible runs
	MaxAttempts        int     // generation attempts per scheduled slot
	TrainFraction      float64 // fraction of samples assigned to the train split
	ValidationFraction float64 // fraction of samples assigned to the validation split
}

// InputSettings points at the reference data collaborators.
type InputSettings struct {
	AtomicDB   string // path to the SQLite atomic line store
	ElementMap string // path to the element composition prior map (JSON)
}

// TelemetrySettings controls the optional Prometheus endpoint.
type TelemetrySettings struct {
	Enabled bool   // true to expose metrics over HTTP
	Listen  string // listen address, e.g. "0.0.0.0:8090"
}

// Settings is the root configuration structure.
type Settings struct {
	Debug bool // true to enable debug level logging

	Main      MainSettings
	Synthesis SynthesisSettings
	Dataset   DatasetSettings
	Input     InputSettings
	Telemetry TelemetrySettings
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AddConfigPath(".")
	if configDir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(configDir, "plasmaspec"))
	}

	// function defined in defaults.go
	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create config with defaults
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the embedded default config to the working directory.
func createDefaultConfig() error {
	configPath := "config.yaml"
	defaultConfig := getDefaultConfig()

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}
	return string(data)
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the current settings instance, initializing it if necessary
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}
