// Package dataset deduplicates, partitions and durably persists generated
// samples: content hashing of physical scenarios, the append-only combination
// log, and the split-aware container file with backup-before-overwrite merge.
package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// HashCombination computes the stable content hash of one physical scenario:
// temperature rounded to two decimals, electron density in scientific
// notation, and the sorted composition rounded to six decimals. Two samples
// with the same hash describe the same scenario and the second is rejected.
func HashCombination(temperature, electronDensity float64, percentages map[string]float64) string {
	keys := make([]string, 0, len(percentages))
	for k := range percentages {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%.2f_%.2e_", temperature, electronDensity)
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s=%.6f;", k, percentages[k])
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
