// Package telemetry provides Prometheus metrics for the dataset generator.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the metric collectors for a generation run.
type Metrics struct {
	registry  *prometheus.Registry
	Generator *GeneratorMetrics
}

// NewMetrics creates a new Metrics instance with its own registry.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	generatorMetrics, err := NewGeneratorMetrics(registry)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		registry:  registry,
		Generator: generatorMetrics,
	}, nil
}

// GeneratorMetrics contains Prometheus metrics for sample generation.
type GeneratorMetrics struct {
	registry *prometheus.Registry

	samplesTotal      *prometheus.CounterVec
	sampleDuration    prometheus.Histogram
	attemptsTotal     *prometheus.CounterVec
	warningsTotal     *prometheus.CounterVec
	datasetSizeGauge  *prometheus.GaugeVec
	mergeDuration     prometheus.Histogram
	linesLoadedTotal  *prometheus.CounterVec
	combinationsGauge prometheus.Gauge

	collectors []prometheus.Collector
}

// NewGeneratorMetrics creates and registers new generator metrics.
func NewGeneratorMetrics(registry *prometheus.Registry) (*GeneratorMetrics, error) {
	m := &GeneratorMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *GeneratorMetrics) initMetrics() {
	m.samplesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generator_samples_total",
			Help: "Total number of sample generation outcomes",
		},
		[]string{"status"}, // status: accepted, duplicate, failed
	)

	m.sampleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "generator_sample_duration_seconds",
			Help:    "Time taken to synthesize one sample",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)

	m.attemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generator_attempts_total",
			Help: "Total number of synthesis attempts per target",
		},
		[]string{"outcome"}, // outcome: success, retry, exhausted
	)

	m.warningsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generator_warnings_total",
			Help: "Total number of physics warnings raised during synthesis",
		},
		[]string{"kind"}, // kind: self_absorption, lte_fallback, missing_data
	)

	m.datasetSizeGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "generator_dataset_samples",
			Help: "Number of samples per dataset split after merging",
		},
		[]string{"split"},
	)

	m.mergeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "generator_dataset_merge_duration_seconds",
			Help:    "Time taken to merge a batch into the dataset file",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
	)

	m.linesLoadedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generator_lines_loaded_total",
			Help: "Number of spectral lines loaded per species",
		},
		[]string{"species"},
	)

	m.combinationsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "generator_known_combinations",
		Help: "Number of combinations recorded in the combination log",
	})

	m.collectors = []prometheus.Collector{
		m.samplesTotal,
		m.sampleDuration,
		m.attemptsTotal,
		m.warningsTotal,
		m.datasetSizeGauge,
		m.mergeDuration,
		m.linesLoadedTotal,
		m.combinationsGauge,
	}
}

// Describe implements the Collector interface
func (m *GeneratorMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *GeneratorMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordSample records a sample generation outcome.
func (m *GeneratorMetrics) RecordSample(status string) {
	m.samplesTotal.WithLabelValues(status).Inc()
}

// RecordSampleDuration records the duration of one sample synthesis.
func (m *GeneratorMetrics) RecordSampleDuration(seconds float64) {
	m.sampleDuration.Observe(seconds)
}

// RecordAttempt records one synthesis attempt.
func (m *GeneratorMetrics) RecordAttempt(outcome string) {
	m.attemptsTotal.WithLabelValues(outcome).Inc()
}

// RecordWarning records a physics warning.
func (m *GeneratorMetrics) RecordWarning(kind string) {
	m.warningsTotal.WithLabelValues(kind).Inc()
}

// UpdateDatasetSize updates the per-split sample gauges.
func (m *GeneratorMetrics) UpdateDatasetSize(split string, samples int) {
	m.datasetSizeGauge.WithLabelValues(split).Set(float64(samples))
}

// RecordMergeDuration records the duration of a dataset merge.
func (m *GeneratorMetrics) RecordMergeDuration(seconds float64) {
	m.mergeDuration.Observe(seconds)
}

// RecordLinesLoaded records the number of lines loaded for a species.
func (m *GeneratorMetrics) RecordLinesLoaded(species string, count int) {
	m.linesLoadedTotal.WithLabelValues(species).Add(float64(count))
}

// UpdateKnownCombinations updates the combination log size gauge.
func (m *GeneratorMetrics) UpdateKnownCombinations(count int) {
	m.combinationsGauge.Set(float64(count))
}
