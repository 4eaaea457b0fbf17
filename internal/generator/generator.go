// Package generator drives a full dataset generation run: it loads the
// reference data, schedules plasma conditions, synthesizes samples with
// retry and duplicate rejection, and merges the batch into the dataset file.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/spectralab/plasmaspec/internal/atomicdata"
	"github.com/spectralab/plasmaspec/internal/conf"
	"github.com/spectralab/plasmaspec/internal/dataset"
	"github.com/spectralab/plasmaspec/internal/errors"
	"github.com/spectralab/plasmaspec/internal/logging"
	"github.com/spectralab/plasmaspec/internal/physics"
	"github.com/spectralab/plasmaspec/internal/scheduler"
	"github.com/spectralab/plasmaspec/internal/species"
	"github.com/spectralab/plasmaspec/internal/synth"
	"github.com/spectralab/plasmaspec/internal/telemetry"
)

// RunSummary reports the outcome of one generation run.
type RunSummary struct {
	RunID        string
	Requested    int
	Generated    int
	Duplicates   int
	Failures     int
	TotalSamples int
	DatasetPath  string
	Elapsed      time.Duration
}

// Generator owns the collaborators of one generation run.
type Generator struct {
	settings *conf.Settings
	metrics  *telemetry.Metrics
	rng      *rand.Rand
	log      *slog.Logger
}

// New creates a generator for the given settings. metrics may be nil when
// telemetry is disabled.
func New(settings *conf.Settings, metrics *telemetry.Metrics) *Generator {
	return &Generator{
		settings: settings,
		metrics:  metrics,
		rng:      rand.New(rand.NewSource(settings.Dataset.Seed)),
		log:      logging.ForService("generator"),
	}
}

// Run executes the full generation pipeline. It returns an error when no
// sample at all could be generated or when the dataset cannot be persisted.
func (g *Generator) Run(ctx context.Context) (*RunSummary, error) {
	start := time.Now()
	runID := uuid.New().String()
	cfg := g.settings

	g.log.Info("starting generation run",
		"run_id", runID,
		"samples", cfg.Dataset.NumSamples,
		"seed", cfg.Dataset.Seed)

	if err := os.MkdirAll(cfg.Dataset.OutputDir, 0o755); err != nil {
		return nil, errors.New(err).
			Component("generator").
			Category(errors.CategoryFileIO).
			Context("path", cfg.Dataset.OutputDir).
			Build()
	}

	mixture, grid, deltaEMax, err := g.buildSynthesizer()
	if err != nil {
		return nil, err
	}

	comboLog, err := dataset.LoadCombinationLog(filepath.Join(cfg.Dataset.OutputDir, cfg.Dataset.CombinationLog))
	if err != nil {
		return nil, err
	}
	g.log.Info("combination log loaded", "known_combinations", comboLog.Len())

	sched := scheduler.New(cfg.Synthesis.Temperatures, cfg.Synthesis.ElectronDensities, g.rng)
	targets := sched.Schedule(cfg.Dataset.NumSamples, deltaEMax)
	g.log.Info("scheduled targets",
		"total", len(targets),
		"temperature_distribution", formatDistribution(scheduler.Distribution(targets)))

	samples, summary, err := g.generateBatch(ctx, targets, mixture, comboLog)
	if err != nil {
		return nil, err
	}
	summary.RunID = runID

	if len(samples) == 0 {
		return nil, errors.Newf("no samples generated, %d targets all failed or duplicated", len(targets)).
			Component("generator").
			Category(errors.CategoryDataset).
			Build()
	}

	configSnapshot, err := json.Marshal(cfg)
	if err != nil {
		return nil, errors.New(err).
			Component("generator").
			Category(errors.CategoryDataset).
			Build()
	}

	datasetPath := filepath.Join(cfg.Dataset.OutputDir, cfg.Dataset.FileName)
	store := dataset.NewStore(datasetPath, cfg.Dataset.TrainFraction, cfg.Dataset.ValidationFraction, g.rng)

	mergeStart := time.Now()
	container, err := store.Merge(grid, samples, runID, configSnapshot)
	if err != nil {
		return nil, err
	}
	if g.metrics != nil {
		g.metrics.Generator.RecordMergeDuration(time.Since(mergeStart).Seconds())
		for _, name := range dataset.SplitNames {
			g.metrics.Generator.UpdateDatasetSize(name, container.Splits[name].Len())
		}
		g.metrics.Generator.UpdateKnownCombinations(comboLog.Len())
	}

	summary.TotalSamples = container.Attrs.TotalSamples
	summary.DatasetPath = datasetPath
	summary.Elapsed = time.Since(start)

	g.log.Info("generation run finished",
		"run_id", runID,
		"generated", summary.Generated,
		"duplicates", summary.Duplicates,
		"failures", summary.Failures,
		"total_samples", summary.TotalSamples,
		"elapsed", summary.Elapsed.Round(time.Millisecond))
	return summary, nil
}

// buildSynthesizer loads the line store and assembles the mixture model.
func (g *Generator) buildSynthesizer() (*synth.MixtureSynthesizer, []float64, float64, error) {
	cfg := g.settings

	store, err := atomicdata.Open(cfg.Input.AtomicDB)
	if err != nil {
		return nil, nil, 0, err
	}

	catalog := species.NewCatalog(cfg.Synthesis.BaseElements)
	ionEnergies := store.IonizationEnergies(catalog.Keys())

	if cfg.Input.ElementMap == "" {
		g.log.Warn("no element map configured, composition prior validation disabled")
	} else {
		priors, err := atomicdata.LoadElementMap(cfg.Input.ElementMap, catalog.Keys())
		if err != nil {
			return nil, nil, 0, err
		}
		g.log.Info("element map validated", "species", len(priors))
	}

	grid := synth.NewGrid(cfg.Synthesis.WavelengthMin, cfg.Synthesis.WavelengthMax, cfg.Synthesis.Resolution)
	profiles := synth.NewProfileCache(grid, cfg.Synthesis.Sigma)

	all := make([]*species.Species, 0, catalog.Len())
	synthesizers := make(map[species.Key]*synth.SpeciesSynthesizer, catalog.Len())
	for _, key := range catalog.Keys() {
		transitions, gap := store.Lines(key, cfg.Synthesis.WavelengthMin, cfg.Synthesis.WavelengthMax)
		sp := &species.Species{
			Key:              key,
			Transitions:      transitions,
			IonizationEnergy: ionEnergies[species.Key{Element: key.Element, Stage: species.StageNeutral}.SpectroscopicName()],
			DeltaEMax:        gap,
		}
		all = append(all, sp)
		synthesizers[key] = synth.NewSpeciesSynthesizer(sp, catalog, cfg.Synthesis.Temperatures, grid, profiles)
		if g.metrics != nil {
			g.metrics.Generator.RecordLinesLoaded(key.String(), len(transitions))
		}
	}

	deltaEMax := species.MaxDeltaE(all, synth.DefaultDeltaEMax)
	g.log.Info("line store loaded",
		"species", catalog.Len(),
		"delta_e_max_ev", deltaEMax)

	mixture := synth.NewMixtureSynthesizer(catalog, synthesizers, ionEnergies, grid, &cfg.Synthesis, g.rng)
	return mixture, grid, deltaEMax, nil
}

// generateBatch works through the scheduled targets, retrying failed or
// duplicated attempts up to the configured limit per target.
func (g *Generator) generateBatch(
	ctx context.Context,
	targets []scheduler.Target,
	mixture *synth.MixtureSynthesizer,
	comboLog *dataset.CombinationLog,
) ([]*synth.Sample, *RunSummary, error) {
	summary := &RunSummary{Requested: len(targets)}
	samples := make([]*synth.Sample, 0, len(targets))
	tempCounts := make(map[float64]int)
	nextProgress := len(targets) / 5

	for i, target := range targets {
		if err := ctx.Err(); err != nil {
			return nil, nil, errors.New(err).
				Component("generator").
				Category(errors.CategoryState).
				Context("completed", fmt.Sprintf("%d/%d", i, len(targets))).
				Build()
		}

		sample, duplicates := g.generateOne(target, mixture, comboLog)
		summary.Duplicates += duplicates
		if sample == nil {
			summary.Failures++
			continue
		}
		samples = append(samples, sample)
		summary.Generated++
		tempCounts[target.Temperature]++

		if nextProgress > 0 && (i+1)%nextProgress == 0 {
			g.log.Info("generation progress",
				"completed", i+1,
				"total", len(targets),
				"generated", summary.Generated,
				"temperature_distribution", formatDistribution(tempCounts))
		}
	}

	return samples, summary, nil
}

// generateOne attempts one scheduled target. A duplicate combination counts
// as a failed attempt and re-rolls the composition. Returns a nil sample when
// all attempts are exhausted, and the number of duplicate hits along the way.
func (g *Generator) generateOne(
	target scheduler.Target,
	mixture *synth.MixtureSynthesizer,
	comboLog *dataset.CombinationLog,
) (*synth.Sample, int) {
	if physics.SelfAbsorptionRisk(target.Temperature, target.ElectronDensity) {
		g.recordWarning("self_absorption")
	}

	duplicates := 0
	for attempt := 1; attempt <= g.settings.Dataset.MaxAttempts; attempt++ {
		attemptStart := time.Now()
		sample, err := mixture.GenerateSample(target.Temperature, target.ElectronDensity)
		if g.metrics != nil {
			g.metrics.Generator.RecordSampleDuration(time.Since(attemptStart).Seconds())
		}
		if err != nil {
			g.log.Warn("sample generation attempt failed",
				"attempt", attempt,
				"temperature_k", target.Temperature,
				"electron_density_cm3", target.ElectronDensity,
				"error", err)
			g.recordAttempt("retry")
			continue
		}

		hash := dataset.HashCombination(sample.Temperature, sample.ElectronDensity, sample.Percentages)
		if comboLog.Contains(hash) {
			g.log.Debug("duplicate combination, re-rolling",
				"attempt", attempt,
				"hash", hash[:12])
			duplicates++
			g.recordSample("duplicate")
			g.recordAttempt("retry")
			continue
		}

		record := dataset.CombinationRecord{
			SampleID:        fmt.Sprintf("sample_%d", comboLog.Len()+1),
			Hash:            hash,
			Temperature:     sample.Temperature,
			ElectronDensity: sample.ElectronDensity,
			Elements:        sample.Percentages,
			DeltaEMax:       sample.DeltaEMax,
		}
		if err := comboLog.Append(record); err != nil {
			g.log.Error("failed to persist combination record", "error", err)
			return nil, duplicates
		}
		g.recordSample("accepted")
		g.recordAttempt("success")
		return sample, duplicates
	}

	g.log.Warn("target exhausted all attempts",
		"attempts", g.settings.Dataset.MaxAttempts,
		"temperature_k", target.Temperature,
		"electron_density_cm3", target.ElectronDensity)
	g.recordSample("failed")
	g.recordAttempt("exhausted")
	return nil, duplicates
}

func (g *Generator) recordSample(status string) {
	if g.metrics != nil {
		g.metrics.Generator.RecordSample(status)
	}
}

func (g *Generator) recordAttempt(outcome string) {
	if g.metrics != nil {
		g.metrics.Generator.RecordAttempt(outcome)
	}
}

func (g *Generator) recordWarning(kind string) {
	if g.metrics != nil {
		g.metrics.Generator.RecordWarning(kind)
	}
}

// formatDistribution renders a temperature histogram in ascending key order
// for log output.
func formatDistribution(counts map[float64]int) string {
	keys := make([]float64, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	out := ""
	for i, k := range keys {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%gK:%d", k, counts[k])
	}
	return out
}
