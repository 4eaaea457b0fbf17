package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/spectralab/plasmaspec/internal/errors"
	"github.com/spectralab/plasmaspec/internal/logging"
	"github.com/spectralab/plasmaspec/internal/synth"
)

// Store merges freshly generated samples into the dataset container on disk.
// Existing samples are preserved, the new batch is split and appended to the
// existing splits.
type Store struct {
	path               string
	trainFraction      float64
	validationFraction float64
	rng                *rand.Rand
	log                *slog.Logger
}

// NewStore creates a store for the container at path. trainFraction and
// validationFraction control the split of each merged batch, the remainder
// goes to the test split.
func NewStore(path string, trainFraction, validationFraction float64, rng *rand.Rand) *Store {
	return &Store{
		path:               path,
		trainFraction:      trainFraction,
		validationFraction: validationFraction,
		rng:                rng,
		log:                logging.ForService("dataset.store"),
	}
}

// Merge splits samples, appends them to the container at the store path and
// writes the result back atomically. When a container already exists its
// wavelength grid must match grid exactly; a mismatch fails before anything
// is written. The previous file is kept as a timestamped backup.
func (s *Store) Merge(grid []float64, samples []*synth.Sample, runID string, config json.RawMessage) (*Container, error) {
	batch, err := s.splitSamples(samples)
	if err != nil {
		return nil, err
	}

	container := NewContainer(grid)
	existing, err := s.loadExisting()
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := checkGrid(existing.Wavelengths, grid); err != nil {
			return nil, err
		}
		container = existing
	}

	for _, name := range SplitNames {
		container.Splits[name].Append(batch[name])
	}
	container.Attrs = Attrs{
		UpdatedAt:    time.Now().UTC().Format(time.RFC3339),
		TotalSamples: container.TotalSamples(),
		RunID:        runID,
		Config:       config,
	}

	if existing != nil {
		backup, err := s.backupExisting()
		if err != nil {
			return nil, err
		}
		s.log.Info("backed up existing dataset", "path", s.path, "backup", backup)
	}

	if err := WriteContainer(s.path, container); err != nil {
		return nil, err
	}
	s.log.Info("dataset written",
		"path", s.path,
		"added", len(samples),
		"total", container.Attrs.TotalSamples,
		"train", container.Splits[SplitTrain].Len(),
		"validation", container.Splits[SplitValidation].Len(),
		"test", container.Splits[SplitTest].Len())
	return container, nil
}

// splitSamples shuffles the batch and assigns each sample to a split.
func (s *Store) splitSamples(samples []*synth.Sample) (map[string]*SplitData, error) {
	batch := make(map[string]*SplitData, len(SplitNames))
	for _, name := range SplitNames {
		batch[name] = &SplitData{}
	}

	n := len(samples)
	perm := s.rng.Perm(n)
	nTrain := int(float64(n) * s.trainFraction)
	nValidation := int(float64(n) * s.validationFraction)

	for i, idx := range perm {
		sample := samples[idx]
		composition, err := sample.CompositionJSON()
		if err != nil {
			return nil, errors.New(err).
				Component("dataset").
				Category(errors.CategoryDataset).
				Build()
		}

		var name string
		switch {
		case i < nTrain:
			name = SplitTrain
		case i < nTrain+nValidation:
			name = SplitValidation
		default:
			name = SplitTest
		}
		sd := batch[name]
		sd.Spectra = append(sd.Spectra, sample.Spectrum)
		sd.Labels = append(sd.Labels, sample.Labels)
		sd.Compositions = append(sd.Compositions, composition)
	}
	return batch, nil
}

func (s *Store) loadExisting() (*Container, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, containerError(err, s.path)
	}
	return ReadContainer(s.path)
}

// checkGrid rejects a merge whose wavelength axis differs from the stored one.
func checkGrid(existing, incoming []float64) error {
	mismatch := len(existing) != len(incoming)
	if !mismatch {
		for i := range existing {
			if existing[i] != incoming[i] {
				mismatch = true
				break
			}
		}
	}
	if mismatch {
		return errors.Newf("wavelength grid mismatch: existing dataset has %d points, run produces %d", len(existing), len(incoming)).
			Component("dataset").
			Category(errors.CategoryDataset).
			Build()
	}
	return nil
}

func (s *Store) backupExisting() (string, error) {
	backup := fmt.Sprintf("%s.bak-%s", s.path, time.Now().UTC().Format("20060102T150405"))
	if err := copyFile(s.path, backup); err != nil {
		return "", containerError(err, s.path)
	}
	return backup, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
