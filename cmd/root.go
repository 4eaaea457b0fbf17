package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spectralab/plasmaspec/cmd/generate"
	"github.com/spectralab/plasmaspec/cmd/inspect"
	"github.com/spectralab/plasmaspec/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "plasmaspec",
		Short: "Plasma emission spectrum dataset generator",
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(
		generate.Command(settings),
		inspect.Command(settings),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := cmd.Flags().Parse(args); err != nil {
			return err
		}
		return conf.ValidateSettings(settings)
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Input.AtomicDB, "atomicdb", viper.GetString("input.atomicdb"), "Path to the SQLite atomic line store")
	rootCmd.PersistentFlags().StringVar(&settings.Dataset.OutputDir, "output", viper.GetString("dataset.outputdir"), "Directory for the dataset, backups and combination log")
	rootCmd.PersistentFlags().StringVar(&settings.Dataset.FileName, "filename", viper.GetString("dataset.filename"), "Dataset container file name")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}
