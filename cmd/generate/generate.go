// Package generate implements the subcommand that runs a dataset
// generation pass.
package generate

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spectralab/plasmaspec/internal/conf"
	"github.com/spectralab/plasmaspec/internal/generator"
	"github.com/spectralab/plasmaspec/internal/telemetry"
)

// Command creates the generate subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate synthetic emission spectra and merge them into the dataset",
		Long: "Schedule plasma conditions over the configured temperature and density sets, " +
			"synthesize labeled emission spectra and merge the batch into the dataset file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

func runGenerate(settings *conf.Settings) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metrics *telemetry.Metrics
	var wg sync.WaitGroup
	quit := make(chan struct{})

	if settings.Telemetry.Enabled {
		var err error
		metrics, err = telemetry.NewMetrics()
		if err != nil {
			return err
		}
		telemetry.NewEndpoint(settings.Telemetry.Listen, metrics).Start(&wg, quit)
	}

	summary, err := generator.New(settings, metrics).Run(ctx)

	close(quit)
	wg.Wait()

	if err != nil {
		return err
	}

	fmt.Printf("Generated %d/%d samples (%d duplicates, %d failures) in %s\n",
		summary.Generated, summary.Requested, summary.Duplicates, summary.Failures,
		summary.Elapsed.Round(time.Millisecond))
	fmt.Printf("Dataset now holds %d samples: %s\n", summary.TotalSamples, summary.DatasetPath)
	return nil
}

// setupFlags configures flags specific to the generate command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().IntVar(&settings.Dataset.NumSamples, "samples", viper.GetInt("dataset.numsamples"), "Number of samples to generate")
	cmd.Flags().Int64Var(&settings.Dataset.Seed, "seed", viper.GetInt64("dataset.seed"), "Random seed for a reproducible run")
	cmd.Flags().IntVar(&settings.Dataset.MaxAttempts, "attempts", viper.GetInt("dataset.maxattempts"), "Generation attempts per scheduled condition")
	cmd.Flags().BoolVar(&settings.Telemetry.Enabled, "telemetry", viper.GetBool("telemetry.enabled"), "Enable Prometheus telemetry endpoint")
	cmd.Flags().StringVar(&settings.Telemetry.Listen, "listen", viper.GetString("telemetry.listen"), "Listen address and port of telemetry endpoint")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}
