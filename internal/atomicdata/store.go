// Package atomicdata provides the reference data collaborators for spectral
// synthesis: the SQLite-backed atomic line store, the ionization energy table
// and the element composition prior map.
package atomicdata

import (
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strconv"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/spectralab/plasmaspec/internal/errors"
	"github.com/spectralab/plasmaspec/internal/logging"
	"github.com/spectralab/plasmaspec/internal/species"
)

// maxMissingWarnings caps repeated warnings per species key so a fully absent
// element does not flood the log.
const maxMissingWarnings = 3

var nonNumeric = regexp.MustCompile(`[^\d.eE+-]`)

// Store reads atomic reference data from a SQLite database.
type Store struct {
	db           *gorm.DB
	log          *slog.Logger
	missingCount map[string]int
}

// Open opens the atomic reference database at the given path.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.New(err).
			Component("atomicdata").
			Category(errors.CategoryDatabase).
			Context("path", path).
			Build()
	}

	if err := db.AutoMigrate(&SpectralLine{}, &IonizationEnergy{}); err != nil {
		return nil, errors.New(err).
			Component("atomicdata").
			Category(errors.CategoryDatabase).
			Context("operation", "migrate").
			Build()
	}

	return &Store{
		db:           db,
		log:          logging.ForService("atomicdata"),
		missingCount: make(map[string]int),
	}, nil
}

// Lines returns the cleaned transition records for one species, restricted to
// the configured wavelength range and ordered by transition rate descending,
// along with the maximum |Ek-Ei| gap across the kept records. A species with
// no usable rows yields an empty slice and a gap of 0.0; this is not an error.
func (s *Store) Lines(key species.Key, wlMin, wlMax float64) ([]species.Transition, float64) {
	var rows []SpectralLine
	if err := s.db.Where("element = ? AND sp_num = ?", key.Element, key.Stage).Find(&rows).Error; err != nil {
		s.log.Error("failed to query line store",
			"species", key.String(), "error", err)
		return nil, 0.0
	}

	transitions := make([]species.Transition, 0, len(rows))
	deltaEMax := 0.0
	for i := range rows {
		tr, ok := cleanRow(&rows[i], wlMin, wlMax)
		if !ok {
			continue
		}
		transitions = append(transitions, tr)
		if gap := math.Abs(tr.UpperEnergy - tr.LowerEnergy); gap > deltaEMax {
			deltaEMax = gap
		}
	}

	if len(transitions) == 0 {
		s.warnMissing(key)
		return nil, 0.0
	}

	sort.Slice(transitions, func(i, j int) bool {
		return transitions[i].EinsteinCoeff > transitions[j].EinsteinCoeff
	})

	return transitions, deltaEMax
}

// warnMissing logs a missing-data warning, capped per species key.
func (s *Store) warnMissing(key species.Key) {
	k := key.String()
	s.missingCount[k]++
	if s.missingCount[k] <= maxMissingWarnings {
		s.log.Warn("no usable transition data for species", "species", k)
	}
}

// cleanRow coerces one raw line row into a transition record. Rows with any
// missing or unparseable field, or a wavelength outside the instrument range,
// are dropped.
func cleanRow(row *SpectralLine, wlMin, wlMax float64) (species.Transition, bool) {
	wl, ok := coerceFloat(row.WavelengthNM)
	if !ok || wl < wlMin || wl > wlMax {
		return species.Transition{}, false
	}
	aki, ok := coerceFloat(row.Aki)
	if !ok {
		return species.Transition{}, false
	}
	ek, ok := coerceFloat(row.Ek)
	if !ok {
		return species.Transition{}, false
	}
	ei, ok := coerceFloat(row.Ei)
	if !ok {
		return species.Transition{}, false
	}
	gi, ok := coerceFloat(row.Gi)
	if !ok {
		return species.Transition{}, false
	}
	gk, ok := coerceFloat(row.Gk)
	if !ok {
		return species.Transition{}, false
	}

	return species.Transition{
		WavelengthNM:    wl,
		EinsteinCoeff:   aki,
		UpperEnergy:     ek,
		LowerEnergy:     ei,
		LowerDegeneracy: gi,
		UpperDegeneracy: gk,
	}, true
}

// coerceFloat strips annotation characters from a raw column value and parses
// the remainder. Values that parse to NaN or Inf are rejected.
func coerceFloat(raw string) (float64, bool) {
	cleaned := nonNumeric.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
