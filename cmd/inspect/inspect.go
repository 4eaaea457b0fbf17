// Package inspect implements the subcommand that summarizes an existing
// dataset file.
package inspect

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spectralab/plasmaspec/internal/conf"
	"github.com/spectralab/plasmaspec/internal/dataset"
)

// Command creates the inspect subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var showCompositions bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize the dataset file and combination log",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(settings, showCompositions)
		},
	}

	cmd.Flags().BoolVar(&showCompositions, "compositions", false, "Print the composition of every sample")
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		fmt.Printf("error binding flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

func runInspect(settings *conf.Settings, showCompositions bool) error {
	path := filepath.Join(settings.Dataset.OutputDir, settings.Dataset.FileName)
	container, err := dataset.ReadContainer(path)
	if err != nil {
		return err
	}

	fmt.Printf("Dataset: %s\n", path)
	fmt.Printf("  Updated:       %s\n", container.Attrs.UpdatedAt)
	fmt.Printf("  Last run:      %s\n", container.Attrs.RunID)
	fmt.Printf("  Total samples: %d\n", container.Attrs.TotalSamples)
	if n := len(container.Wavelengths); n > 0 {
		fmt.Printf("  Grid:          %d points, %.2f-%.2f nm\n",
			n, container.Wavelengths[0], container.Wavelengths[n-1])
	}
	for _, name := range dataset.SplitNames {
		fmt.Printf("  %-12s %d samples\n", name+":", container.Splits[name].Len())
	}

	comboPath := filepath.Join(settings.Dataset.OutputDir, settings.Dataset.CombinationLog)
	comboLog, err := dataset.LoadCombinationLog(comboPath)
	if err != nil {
		return err
	}
	fmt.Printf("Combination log: %s (%d entries)\n", comboPath, comboLog.Len())

	if showCompositions {
		for _, name := range dataset.SplitNames {
			sd := container.Splits[name]
			for i, composition := range sd.Compositions {
				fmt.Printf("%s[%d]: %s\n", name, i, composition)
			}
		}
	}

	return nil
}
