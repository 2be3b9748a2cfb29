// Package constants provides shared constants for the strategy-simulator application.
package constants

// Pricing defaults, in dollars per job.
const (
	// DefaultZoneAPrice is the base price of a Zone A delivery
	DefaultZoneAPrice = 25.0

	// DefaultZoneBPrice is the base price of a Zone B delivery
	DefaultZoneBPrice = 35.0

	// DefaultZoneCPrice is the base price of a Zone C delivery
	DefaultZoneCPrice = 45.0

	// DefaultASAPAddon is the surcharge for ASAP urgency
	DefaultASAPAddon = 25.0

	// DefaultExpressAddon is the surcharge for express urgency
	DefaultExpressAddon = 15.0
)

// Operating calendar
const (
	// OperatingDaysPerWeek is the number of days the business runs each week
	OperatingDaysPerWeek = 4

	// WeeksPerYear is the number of weeks in a year
	WeeksPerYear = 52

	// OperatingDaysPerYear is the number of operating days in a year (4 * 52)
	OperatingDaysPerYear = OperatingDaysPerWeek * WeeksPerYear

	// OperatingHoursPerDay is the length of an operating day
	OperatingHoursPerDay = 10

	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12
)

// Targets
const (
	// RevenueTarget is the annual revenue goal in dollars
	RevenueTarget = 150000.0

	// ProfitMarginTarget is the profit margin goal in percent
	ProfitMarginTarget = 30.0
)

// Mix constants
const (
	// FullMix is the total share available to a mix (100%)
	FullMix = 100.0

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
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

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024
)

// Guidance defaults
const (
	// DefaultGuidanceEndpoint is the base URL of the generative language API
	DefaultGuidanceEndpoint = "https://generativelanguage.googleapis.com"

	// DefaultGuidanceModel is the model used for advisory text
	DefaultGuidanceModel = "gemini-2.5-flash"

	// DefaultGuidanceAPIKeyEnv is the environment variable holding the API key
	DefaultGuidanceAPIKeyEnv = "API_KEY"

	// DefaultGuidanceTemperature is the sampling temperature for advisory text
	DefaultGuidanceTemperature = 0.5

	// DefaultGuidanceTopP is the nucleus sampling cutoff for advisory text
	DefaultGuidanceTopP = 0.95

	// DefaultGuidanceTimeoutSeconds bounds a single guidance request
	DefaultGuidanceTimeoutSeconds = 30
)

// Validation constants
const (
	// Tolerance is the tolerance for floating point lever comparisons
	Tolerance = 1e-9
)
