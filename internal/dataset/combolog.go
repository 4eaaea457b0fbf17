package dataset

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/spectralab/plasmaspec/internal/errors"
	"github.com/spectralab/plasmaspec/internal/logging"
)

// CombinationRecord is one entry of the append-only combination log.
type CombinationRecord struct {
	SampleID        string             `json:"sample_id"`
	Hash            string             `json:"hash"`
	Temperature     float64            `json:"temperature"`
	ElectronDensity float64            `json:"electron_density"`
	Elements        map[string]float64 `json:"elements"`
	DeltaEMax       float64            `json:"delta_E_max"`
}

// CombinationLog tracks the set of previously used physical scenarios. The
// log file is a JSON array, read fully at startup and rewritten in full on
// each append. It is independent of the main dataset file.
type CombinationLog struct {
	path    string
	records []CombinationRecord
	hashes  map[string]struct{}
	log     *slog.Logger
}

// LoadCombinationLog reads the log at path. A missing file yields an empty
// log; a corrupt file is an error.
func LoadCombinationLog(path string) (*CombinationLog, error) {
	cl := &CombinationLog{
		path:   path,
		hashes: make(map[string]struct{}),
		log:    logging.ForService("dataset.combolog"),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cl, nil
		}
		return nil, errors.New(err).
			Component("dataset").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	if err := json.Unmarshal(data, &cl.records); err != nil {
		return nil, errors.New(err).
			Component("dataset").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	for i := range cl.records {
		cl.hashes[cl.records[i].Hash] = struct{}{}
	}

	cl.log.Info("loaded combination log", "path", path, "combinations", len(cl.records))
	return cl, nil
}

// Contains reports whether the hash is already used.
func (cl *CombinationLog) Contains(hash string) bool {
	_, ok := cl.hashes[hash]
	return ok
}

// Len returns the number of recorded combinations.
func (cl *CombinationLog) Len() int {
	return len(cl.records)
}

// Append records a new combination and rewrites the log file.
func (cl *CombinationLog) Append(record CombinationRecord) error {
	cl.records = append(cl.records, record)
	cl.hashes[record.Hash] = struct{}{}

	data, err := json.MarshalIndent(cl.records, "", "    ")
	if err != nil {
		return errors.New(err).
			Component("dataset").
			Category(errors.CategoryFileIO).
			Build()
	}
	if err := os.WriteFile(cl.path, data, 0o644); err != nil {
		return errors.New(err).
			Component("dataset").
			Category(errors.CategoryFileIO).
			Context("path", cl.path).
			Build()
	}
	return nil
}
