package scheduler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spectralab/plasmaspec/internal/physics"
)

var testTemperatures = []float64{6000, 8000, 10000, 12000, 14000, 15000}

var testDensities = []float64{
	1.0e15, 1.668101e15, 2.782559e15, 4.641589e15, 7.742637e15,
	1.291550e16, 2.154435e16, 3.593814e16, 5.994843e16, 1.0e17,
}

func TestScheduleQuotaPerTemperature(t *testing.T) {
	s := New(testTemperatures, testDensities, rand.New(rand.NewSource(42)))
	targets := s.Schedule(500, 4.0)
	require.Len(t, targets, 500)

	counts := Distribution(targets)
	expected := 500.0 / 6.0
	for _, temp := range testTemperatures {
		assert.InDelta(t, expected, float64(counts[temp]), 1.0,
			"temperature %v quota out of range", temp)
	}
}

func TestScheduleExactTotals(t *testing.T) {
	s := New(testTemperatures, testDensities, rand.New(rand.NewSource(1)))
	for _, total := range []int{1, 6, 7, 100, 499} {
		targets := s.Schedule(total, 4.0)
		assert.Len(t, targets, total)
	}
}

func TestScheduleInterleavesTemperatures(t *testing.T) {
	s := New(testTemperatures, testDensities, rand.New(rand.NewSource(2)))
	targets := s.Schedule(60, 4.0)

	// The first round covers every temperature once before any repeats.
	seen := map[float64]bool{}
	for _, target := range targets[:6] {
		seen[target.Temperature] = true
	}
	assert.Len(t, seen, 6)
}

func TestScheduleHonorsDensityFloor(t *testing.T) {
	s := New([]float64{10000}, testDensities, rand.New(rand.NewSource(3)))
	deltaE := 4.0
	floor := physics.LTEDensityFloor(10000, deltaE)
	require.Less(t, floor, 1e17, "test assumes some candidates qualify")

	targets := s.Schedule(50, deltaE)
	for _, target := range targets {
		assert.GreaterOrEqual(t, target.ElectronDensity, floor)
	}
}

func TestScheduleFallsBackWhenFloorExcludesAll(t *testing.T) {
	// A huge energy gap pushes the floor beyond every candidate.
	s := New([]float64{6000}, testDensities, rand.New(rand.NewSource(4)))
	targets := s.Schedule(20, 100.0)
	require.Len(t, targets, 20)

	// Targets still come from the configured candidate range.
	candidates := map[float64]bool{}
	for _, ne := range testDensities {
		candidates[ne] = true
	}
	for _, target := range targets {
		assert.True(t, candidates[target.ElectronDensity])
	}
}

func TestScheduleAtMostFiveDistinctDensities(t *testing.T) {
	s := New([]float64{15000}, testDensities, rand.New(rand.NewSource(5)))
	targets := s.Schedule(200, 0.1)

	distinct := map[float64]bool{}
	for _, target := range targets {
		distinct[target.ElectronDensity] = true
	}
	assert.LessOrEqual(t, len(distinct), 5)
}

func TestScheduleDeterministicGivenSeed(t *testing.T) {
	a := New(testTemperatures, testDensities, rand.New(rand.NewSource(7))).Schedule(100, 4.0)
	b := New(testTemperatures, testDensities, rand.New(rand.NewSource(7))).Schedule(100, 4.0)
	assert.Equal(t, a, b)
}
