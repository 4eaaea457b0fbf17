// Package scheduler produces the stratified workload of (temperature,
// electron density) targets for the dataset driver.
package scheduler

import (
	"log/slog"
	"math/rand"

	"github.com/spectralab/plasmaspec/internal/logging"
	"github.com/spectralab/plasmaspec/internal/physics"
)

// maxDensitiesPerTemperature caps how many distinct density values one
// temperature draws before resampling with replacement.
const maxDensitiesPerTemperature = 5

// Target is one scheduled generation slot.
type Target struct {
	Temperature     float64 // K
	ElectronDensity float64 // cm^-3
}

// Scheduler balances sample counts across the fixed temperature set while
// honoring the LTE electron-density floor per temperature.
type Scheduler struct {
	temperatures []float64
	densities    []float64
	rng          *rand.Rand
	log          *slog.Logger
}

// New creates a scheduler over the configured temperature and density
// candidate lists.
func New(temperatures, densities []float64, rng *rand.Rand) *Scheduler {
	return &Scheduler{
		temperatures: temperatures,
		densities:    densities,
		rng:          rng,
		log:          logging.ForService("scheduler"),
	}
}

// Schedule returns exactly total targets, stratified evenly across the
// temperature set with the remainder going to the first temperatures, and
// interleaved round-robin so consecutive targets span different temperatures.
// deltaEMax is the largest transition energy gap across the species catalog,
// used for the LTE density floor.
func (s *Scheduler) Schedule(total int, deltaEMax float64) []Target {
	perTemperature := total / len(s.temperatures)
	remainder := total % len(s.temperatures)

	buckets := make([][]Target, len(s.temperatures))
	for i, temp := range s.temperatures {
		quota := perTemperature
		if i < remainder {
			quota++
		}
		buckets[i] = s.scheduleTemperature(temp, quota, deltaEMax)
	}

	// Round-robin interleave: one target per temperature per round.
	targets := make([]Target, 0, total)
	for round := 0; ; round++ {
		advanced := false
		for i := range buckets {
			if round < len(buckets[i]) {
				targets = append(targets, buckets[i][round])
				advanced = true
			}
		}
		if !advanced {
			break
		}
	}

	// Rounding may leave the list short; pad with random duplicates.
	if len(targets) < total {
		s.log.Warn("scheduled fewer targets than requested, padding with duplicates",
			"scheduled", len(targets), "requested", total)
		for len(targets) < total {
			targets = append(targets, targets[s.rng.Intn(len(targets))])
		}
	} else if len(targets) > total {
		targets = targets[:total]
	}

	return targets
}

// scheduleTemperature picks quota density targets for one temperature. The
// candidate pool is the configured density list filtered to the LTE floor;
// when nothing qualifies the full range is used. Up to five distinct values
// are drawn, then resampled with replacement to fill the quota.
func (s *Scheduler) scheduleTemperature(temp float64, quota int, deltaEMax float64) []Target {
	floor := physics.LTEDensityFloor(temp, deltaEMax)

	var valid []float64
	for _, ne := range s.densities {
		if ne >= floor {
			valid = append(valid, ne)
		}
	}
	if len(valid) == 0 {
		s.log.Warn("no electron density above the LTE floor, using full candidate range",
			"temperature_k", temp, "floor_cm3", floor)
		valid = s.densities
	}

	distinct := len(valid)
	if distinct > maxDensitiesPerTemperature {
		distinct = maxDensitiesPerTemperature
	}

	perm := s.rng.Perm(len(valid))
	selected := make([]float64, 0, quota)
	for i := 0; i < distinct; i++ {
		selected = append(selected, valid[perm[i]])
	}
	for len(selected) < quota {
		selected = append(selected, selected[s.rng.Intn(distinct)])
	}

	targets := make([]Target, 0, quota)
	for _, ne := range selected[:quota] {
		targets = append(targets, Target{Temperature: temp, ElectronDensity: ne})
	}
	return targets
}

// Distribution counts scheduled targets per temperature, for logging.
func Distribution(targets []Target) map[float64]int {
	counts := make(map[float64]int)
	for _, target := range targets {
		counts[target.Temperature]++
	}
	return counts
}
