package cmd

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spectralab/plasmaspec/internal/conf"
)

func TestRootCommandWiring(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	rootCmd := RootCommand(&conf.Settings{})

	for _, name := range []string{"debug", "atomicdb", "output", "filename"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing persistent flag %s", name)
	}

	subcommands := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		subcommands[sub.Name()] = true
	}
	assert.True(t, subcommands["generate"])
	assert.True(t, subcommands["inspect"])
}

func TestGenerateFlagsOverrideSettings(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	settings := &conf.Settings{}
	rootCmd := RootCommand(settings)

	generateCmd, _, err := rootCmd.Find([]string{"generate"})
	require.NoError(t, err)
	require.NoError(t, generateCmd.Flags().Set("samples", "25"))
	require.NoError(t, generateCmd.Flags().Set("seed", "7"))

	assert.Equal(t, 25, settings.Dataset.NumSamples)
	assert.Equal(t, int64(7), settings.Dataset.Seed)
}
