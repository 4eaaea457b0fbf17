package species

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyForms(t *testing.T) {
	k := Key{Element: "Si", Stage: StageNeutral}
	assert.Equal(t, "Si_1", k.String())
	assert.Equal(t, "Si I", k.SpectroscopicName())

	k2 := Key{Element: "Fe", Stage: StageIon}
	assert.Equal(t, "Fe_2", k2.String())
	assert.Equal(t, "Fe II", k2.SpectroscopicName())
}

func TestCatalogOrdering(t *testing.T) {
	c := NewCatalog([]string{"Si", "Al"})
	require.Equal(t, 4, c.Len())

	keys := c.Keys()
	assert.Equal(t, Key{"Si", StageNeutral}, keys[0])
	assert.Equal(t, Key{"Si", StageIon}, keys[1])
	assert.Equal(t, Key{"Al", StageNeutral}, keys[2])
	assert.Equal(t, Key{"Al", StageIon}, keys[3])

	assert.Equal(t, 2, c.Index(Key{"Al", StageNeutral}))
	assert.Equal(t, -1, c.Index(Key{"Cu", StageNeutral}))
}

func TestEnergyLevelsFirstSeenWins(t *testing.T) {
	sp := &Species{
		Key: Key{"Si", StageNeutral},
		Transitions: []Transition{
			{LowerEnergy: 0.0, LowerDegeneracy: 1, UpperEnergy: 4.9, UpperDegeneracy: 3},
			// Same upper energy, different degeneracy: must not override.
			{LowerEnergy: 0.5, LowerDegeneracy: 5, UpperEnergy: 4.9, UpperDegeneracy: 7},
		},
	}

	energies, degeneracies := sp.EnergyLevels()
	require.Len(t, energies, 3)
	require.Len(t, degeneracies, 3)

	byEnergy := map[float64]float64{}
	for i, e := range energies {
		byEnergy[e] = degeneracies[i]
	}
	assert.Equal(t, 1.0, byEnergy[0.0])
	assert.Equal(t, 3.0, byEnergy[4.9])
	assert.Equal(t, 5.0, byEnergy[0.5])
}

func TestMaxDeltaE(t *testing.T) {
	all := []*Species{
		{Key: Key{"Si", StageNeutral}, DeltaEMax: 3.0},
		{Key: Key{"Al", StageNeutral}, DeltaEMax: 5.5},
		{Key: Key{"O", StageNeutral}, DeltaEMax: 0.0},
	}
	assert.Equal(t, 5.5, MaxDeltaE(all, 4.0))
	assert.Equal(t, 4.0, MaxDeltaE(nil, 4.0))
	assert.Equal(t, 4.0, MaxDeltaE([]*Species{{DeltaEMax: 0}}, 4.0))
}
