package atomicdata

import (
	"encoding/json"
	"math"
	"os"

	"github.com/spectralab/plasmaspec/internal/errors"
	"github.com/spectralab/plasmaspec/internal/species"
)

// priorSumTolerance is the allowed deviation of a prior list from 1.0.
const priorSumTolerance = 1e-6

// LoadElementMap reads and validates the element composition prior map. Every
// required species must be present with a probability list summing to 1.0;
// malformed entries are fatal at load time.
func LoadElementMap(path string, required []species.Key) (map[string][]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(err).
			Component("atomicdata").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	elementMap := make(map[string][]float64)
	if err := json.Unmarshal(data, &elementMap); err != nil {
		return nil, errors.New(err).
			Component("atomicdata").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	for _, key := range required {
		k := key.String()
		priors, ok := elementMap[k]
		if !ok || len(priors) == 0 {
			return nil, errors.Newf("element map entry missing for %s", k).
				Component("atomicdata").
				Category(errors.CategoryValidation).
				Context("species", k).
				Build()
		}
		var sum float64
		for _, p := range priors {
			sum += p
		}
		if math.Abs(sum-1.0) > priorSumTolerance {
			return nil, errors.Newf("element map entry for %s sums to %g, want 1.0", k, sum).
				Component("atomicdata").
				Category(errors.CategoryValidation).
				Context("species", k).
				Context("sum", sum).
				Build()
		}
	}

	return elementMap, nil
}
