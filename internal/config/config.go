// Package config defines the data structures related to configuration and
// includes functions for loading and checking the config.
package config

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/iwvelando/deal-risk/internal/simulation"
	"github.com/iwvelando/deal-risk/pkg/constants"
	"github.com/iwvelando/deal-risk/pkg/genre"
	"github.com/iwvelando/deal-risk/pkg/mathutil"
	"github.com/iwvelando/deal-risk/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for deal-risk.
type Configuration struct {
	Deal       DealConfig
	Genre      string
	Simulation SimulationConfig
	Optimizer  *OptimizerConfig `yaml:"optimizer,omitempty"`
	Logging    LoggingConfig    `yaml:"logging,omitempty"`
	Output     OutputConfig     `yaml:"output,omitempty"`
}

// DealConfig holds the deal terms and the artist's audience.
type DealConfig struct {
	SocialFollowers float64 `yaml:"socialFollowers" validate:"gte=0"`
	PrevStreams     float64 `yaml:"prevStreams" validate:"gte=0"`
	Advance         float64 `yaml:"advance" validate:"gte=0"`
	Marketing       float64 `yaml:"marketing" validate:"gte=0"`
	ContentBudget   float64 `yaml:"contentBudget" validate:"gte=0"`
}

// SimulationConfig controls the Monte Carlo run.
type SimulationConfig struct {
	Iterations int    `yaml:"iterations" validate:"gt=0"`
	Seed       uint64 `yaml:"seed,omitempty"`
	Workers    int    `yaml:"workers,omitempty" validate:"gte=0,lte=256"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" validate:"loglevel"`                      // debug, info, warn, error
	Format     string `yaml:"format,omitempty" validate:"omitempty,oneof=json console"` // json, console
	OutputFile string `yaml:"outputFile,omitempty"`                                     // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format        string `yaml:"format,omitempty" validate:"omitempty,oneof=pretty csv json"` // pretty, csv, json
	HistogramBins int    `yaml:"histogramBins,omitempty" validate:"gte=0"`
	ScatterPoints int    `yaml:"scatterPoints,omitempty" validate:"gte=0"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("genre", constants.DefaultGenre)
	v.SetDefault("simulation.iterations", constants.DefaultIterations)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.workers", constants.DefaultWorkers)
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("output.histogramBins", constants.DefaultHistogramBins)
	v.SetDefault("output.scatterPoints", constants.DefaultScatterPoints)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// DealInputs converts the configuration into simulator inputs.
func (c *Configuration) DealInputs() simulation.DealInputs {
	return simulation.DealInputs{
		SocialFollowers: c.Deal.SocialFollowers,
		PrevStreams:     c.Deal.PrevStreams,
		Advance:         c.Deal.Advance,
		Marketing:       c.Deal.Marketing,
		ContentBudget:   c.Deal.ContentBudget,
		Iterations:      c.Simulation.Iterations,
	}
}

// SimulationOptions returns the runner options described by the configuration.
func (c *Configuration) SimulationOptions() simulation.Options {
	return simulation.Options{
		Workers: c.Simulation.Workers,
		Seed:    c.Simulation.Seed,
	}
}

// Validate returns an error for configuration that cannot be run.
func (c *Configuration) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	if err := c.DealInputs().Validate(); err != nil {
		return err
	}
	if c.Optimizer != nil {
		if err := c.Optimizer.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if strings.TrimSpace(c.Genre) != "" && !genre.Known(c.Genre) {
		warnings = append(warnings, fmt.Sprintf("Genre '%s' is not recognized - using the %s profile",
			c.Genre, genre.Custom))
	}

	if c.Deal.SocialFollowers == 0 {
		warnings = append(warnings, fmt.Sprintf("Artist has no social followers - using fallback conversion of %.0f streams per follower",
			constants.FallbackStreamsPerFollower))
	} else if mathutil.IsZero(c.Deal.PrevStreams) {
		warnings = append(warnings, "Artist has no previous streams - every trial will produce zero streams")
	}

	if c.Simulation.Iterations > constants.LargeIterationWarning {
		warnings = append(warnings, fmt.Sprintf("Iteration count %d is very large - runs may be slow",
			c.Simulation.Iterations))
	}

	if c.Simulation.Workers > runtime.NumCPU() {
		warnings = append(warnings, fmt.Sprintf("Worker count %d exceeds available CPUs (%d)",
			c.Simulation.Workers, runtime.NumCPU()))
	}

	return warnings
}
