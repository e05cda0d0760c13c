package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/deal-risk/internal/config"
	"github.com/iwvelando/deal-risk/internal/engine"
	"github.com/iwvelando/deal-risk/internal/logging"
	"github.com/iwvelando/deal-risk/internal/server"
	"github.com/iwvelando/deal-risk/pkg/constants"
	"github.com/iwvelando/deal-risk/pkg/format"
	"github.com/iwvelando/deal-risk/pkg/genre"
	"github.com/iwvelando/deal-risk/pkg/output"
	"github.com/iwvelando/deal-risk/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Build information - set via ldflags
var Version = "dev"

type rootOptions struct {
	configLocation string
	logLevel       string
}

type runOptions struct {
	genre        string
	iterations   int
	seed         uint64
	workers      int
	outputFormat string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"error\": %q}\n", err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "deal-risk",
		Short:         "Monte Carlo risk analysis for artist investment deals",
		Long:          `Simulates thousands of possible outcomes for an artist deal and reports break-even probability, value at risk and tail insights.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configLocation, "config", "c", constants.DefaultConfigFile, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(
		newSimulateCmd(opts),
		newOptimizeCmd(opts),
		newGenresCmd(),
		newServeCmd(opts),
	)
	return rootCmd
}

func addRunFlags(cmd *cobra.Command, run *runOptions) {
	cmd.Flags().StringVarP(&run.genre, "genre", "g", "", "genre profile override (pop, hiphop, rock, indie, custom)")
	cmd.Flags().IntVarP(&run.iterations, "iterations", "n", 0, "number of Monte Carlo trials override")
	cmd.Flags().Uint64Var(&run.seed, "seed", 0, "random seed override (0 seeds from the clock)")
	cmd.Flags().IntVar(&run.workers, "workers", 0, "number of parallel workers override")
	cmd.Flags().StringVarP(&run.outputFormat, "output-format", "o", "", "type of output override: pretty, csv, json")
}

func newSimulateCmd(opts *rootOptions) *cobra.Command {
	run := &runOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the Monte Carlo simulation for the configured deal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return evaluate(cmd, opts, run, false)
		},
	}
	addRunFlags(cmd, run)
	return cmd
}

func newOptimizeCmd(opts *rootOptions) *cobra.Command {
	run := &runOptions{}
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Search for the largest deal term that satisfies the optimizer directive",
		RunE: func(cmd *cobra.Command, args []string) error {
			return evaluate(cmd, opts, run, true)
		},
	}
	addRunFlags(cmd, run)
	return cmd
}

func newGenresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List the genre profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(w, "%-8s| %-9s| %-7s| %-11s| %s\n", "Genre", "Mu", "Sigma", "Marketing", "Viral"); err != nil {
				return err
			}
			for _, p := range genre.All() {
				if _, err := fmt.Fprintf(w, "%-8s| %-9.2f| %-7.2f| %-11.1f| %s\n",
					p.Key, p.MultiplierMean, p.MultiplierSigma, p.MarketingEfficiency,
					format.Percent(p.ViralProbability*constants.PercentageMultiplier)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var serverConfigLocation, maxUploadSize string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulation API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			serverCfg, err := server.LoadConfig(serverConfigLocation)
			if err != nil {
				return err
			}
			if maxUploadSize != "" {
				size, err := server.ParseSize(maxUploadSize)
				if err != nil {
					return err
				}
				serverCfg.SetUploadSizeBytes(size)
			}

			logger, err := logging.New(serverCfg.Logging, opts.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			handler := server.NewHandler(logger, serverCfg.Options(), Version)
			return server.ListenAndServe(cmd.Context(), logger, serverCfg.Address, handler)
		},
	}
	cmd.Flags().StringVar(&serverConfigLocation, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&maxUploadSize, "max-upload-size", "", "maximum request body size override (e.g. 512K, 1M)")
	return cmd
}

func evaluate(cmd *cobra.Command, opts *rootOptions, run *runOptions, optimize bool) error {
	conf, err := config.LoadConfiguration(opts.configLocation)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", opts.configLocation, err)
	}
	run.apply(conf)

	logger, err := logging.New(conf.Logging, opts.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	outputFormat := conf.Output.Format
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	if err := conf.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Validate configuration and display any warnings
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	report, err := engine.Evaluate(cmd.Context(), logger, conf, optimize)
	if err != nil {
		return err
	}

	return output.Write(cmd.OutOrStdout(), outputFormat, *report)
}

// apply layers command-line overrides on top of the loaded configuration.
func (r *runOptions) apply(conf *config.Configuration) {
	if r.genre != "" {
		conf.Genre = r.genre
	}
	if r.iterations != 0 {
		conf.Simulation.Iterations = r.iterations
	}
	if r.seed != 0 {
		conf.Simulation.Seed = r.seed
	}
	if r.workers != 0 {
		conf.Simulation.Workers = r.workers
	}
	if r.outputFormat != "" {
		conf.Output.Format = r.outputFormat
	}
}
