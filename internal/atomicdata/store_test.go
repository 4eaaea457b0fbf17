package atomicdata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spectralab/plasmaspec/internal/species"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "atomic.db")
	store, err := Open(path)
	require.NoError(t, err)
	return store
}

func seedLines(t *testing.T, store *Store, rows ...SpectralLine) {
	t.Helper()
	for i := range rows {
		require.NoError(t, store.db.Create(&rows[i]).Error)
	}
}

func TestLinesCleaningAndOrdering(t *testing.T) {
	store := openTestStore(t)
	seedLines(t, store,
		SpectralLine{Element: "Si", SpNum: 1, WavelengthNM: "390.552", Aki: "1.2e7", Ek: "5.08", Ei: "1.91", Gi: "3", Gk: "5"},
		// Annotated values must survive coercion.
		SpectralLine{Element: "Si", SpNum: 1, WavelengthNM: "251.432", Aki: "7.4e7?", Ek: "4.95", Ei: "0.01", Gi: "[3]", Gk: "5"},
		// Out of the instrument range.
		SpectralLine{Element: "Si", SpNum: 1, WavelengthNM: "150.0", Aki: "1e8", Ek: "8.0", Ei: "0.0", Gi: "1", Gk: "3"},
		// Unparseable rate.
		SpectralLine{Element: "Si", SpNum: 1, WavelengthNM: "500.0", Aki: "n/a", Ek: "3.0", Ei: "0.0", Gi: "1", Gk: "3"},
		// Different species, must not leak in.
		SpectralLine{Element: "Fe", SpNum: 1, WavelengthNM: "400.0", Aki: "2e8", Ek: "3.0", Ei: "0.0", Gi: "1", Gk: "3"},
	)

	transitions, deltaEMax := store.Lines(species.Key{Element: "Si", Stage: 1}, 200, 900)
	require.Len(t, transitions, 2)

	// Ordered by Einstein coefficient descending.
	assert.Equal(t, 251.432, transitions[0].WavelengthNM)
	assert.Equal(t, 7.4e7, transitions[0].EinsteinCoeff)
	assert.Equal(t, 3.0, transitions[0].LowerDegeneracy)
	assert.Equal(t, 390.552, transitions[1].WavelengthNM)

	assert.InDelta(t, 4.94, deltaEMax, 1e-9)
}

func TestLinesMissingSpecies(t *testing.T) {
	store := openTestStore(t)
	transitions, deltaEMax := store.Lines(species.Key{Element: "Cl", Stage: 2}, 200, 900)
	assert.Empty(t, transitions)
	assert.Equal(t, 0.0, deltaEMax)
}

func TestIonizationEnergies(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.db.Create(&IonizationEnergy{SpeciesName: "Si I", EnergyEV: 8.1517}).Error)

	required := []species.Key{
		{Element: "Si", Stage: species.StageNeutral},
		{Element: "Si", Stage: species.StageIon},
	}
	energies := store.IonizationEnergies(required)

	assert.Equal(t, 8.1517, energies["Si I"])
	// Missing entry defaults to zero.
	assert.Equal(t, 0.0, energies["Si II"])
}

func writeElementMap(t *testing.T, m map[string][]float64) string {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "element_map.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadElementMap(t *testing.T) {
	required := []species.Key{{Element: "Si", Stage: 1}, {Element: "Si", Stage: 2}}

	path := writeElementMap(t, map[string][]float64{
		"Si_1": {0.3, 0.7},
		"Si_2": {1.0},
	})
	m, err := LoadElementMap(path, required)
	require.NoError(t, err)
	assert.Len(t, m, 2)
}

func TestLoadElementMapBadSum(t *testing.T) {
	required := []species.Key{{Element: "Si", Stage: 1}}
	path := writeElementMap(t, map[string][]float64{"Si_1": {0.3, 0.3}})
	_, err := LoadElementMap(path, required)
	require.Error(t, err)
}

func TestLoadElementMapMissingEntry(t *testing.T) {
	required := []species.Key{{Element: "Fe", Stage: 1}}
	path := writeElementMap(t, map[string][]float64{"Si_1": {1.0}})
	_, err := LoadElementMap(path, required)
	require.Error(t, err)
}

func TestLoadElementMapMissingFile(t *testing.T) {
	_, err := LoadElementMap(filepath.Join(t.TempDir(), "nope.json"), nil)
	require.Error(t, err)
}

func TestCoerceFloat(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"1.5", 1.5, true},
		{"7.4e7", 7.4e7, true},
		{"7.4e7?", 7.4e7, true},
		{"[12]", 12, true},
		{"", 0, false},
		{"n/a", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := coerceFloat(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("coerceFloat(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("coerceFloat(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
