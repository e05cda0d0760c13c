// Package constants provides shared constants for the deal-risk application.
package constants

// Model constants
const (
	// FallbackStreamsPerFollower is the conversion used when an artist has no
	// followers to derive one from.
	FallbackStreamsPerFollower = 20.0

	// RevenuePerStream is the average payout per stream in currency units.
	RevenuePerStream = 0.004

	// MarketingEfficiencyStdDev is the spread applied around a genre's
	// marketing efficiency.
	MarketingEfficiencyStdDev = 5.0

	// OrganicReachMean and OrganicReachStdDev shape the organic reach factor
	// applied to the follower count.
	OrganicReachMean   = 1.0
	OrganicReachStdDev = 0.2

	// ViralMultiplierMean and ViralMultiplierStdDev shape the stream
	// multiplier applied on a viral event.
	ViralMultiplierMean   = 5.0
	ViralMultiplierStdDev = 1.0

	// AncillaryMean and AncillaryStdDev shape merch/sync revenue as a share of
	// stream revenue.
	AncillaryMean   = 0.10
	AncillaryStdDev = 0.05

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Risk percentiles
const (
	MedianFraction    = 0.50
	VaRFraction       = 0.05
	UpsideFraction    = 0.95
	TailUpperFraction = 0.99
)

// Simulation defaults
const (
	// DefaultIterations is the trial count used when none is configured.
	DefaultIterations = 5000

	// DefaultGenre is the profile selected when none is configured.
	DefaultGenre = "custom"

	// DefaultWorkers runs trials on a single goroutine.
	DefaultWorkers = 1

	// MaxWorkers bounds the worker pool size.
	MaxWorkers = 256

	// LargeIterationWarning is the trial count above which a configuration
	// warning is emitted.
	LargeIterationWarning = 1_000_000

	// DefaultHistogramBins is the number of profit bins in chart output.
	DefaultHistogramBins = 30

	// DefaultScatterPoints caps the number of (streams, roi) points in chart
	// output.
	DefaultScatterPoints = 500
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix scopes environment overrides, e.g. DEALRISK_GENRE.
	EnvPrefix = "DEALRISK"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultMaxIterations caps iterations accepted by the API
	DefaultMaxIterations = 200_000

	// DefaultRateLimit is the sustained simulation requests per second
	DefaultRateLimit = 5.0

	// DefaultRateBurst is the simulation request burst size
	DefaultRateBurst = 10
)

// Validation constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100
)
