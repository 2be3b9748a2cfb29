// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/iwvelando/strategy-simulator/internal/guidance"
	"github.com/iwvelando/strategy-simulator/internal/kpi"
	"github.com/iwvelando/strategy-simulator/internal/levers"
	"github.com/iwvelando/strategy-simulator/pkg/constants"
	"github.com/iwvelando/strategy-simulator/pkg/validation"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variable overrides, e.g. SIMULATOR_TARGETS_REVENUE.
const EnvPrefix = "SIMULATOR"

// Configuration holds all configuration for strategy-simulator.
type Configuration struct {
	Logging    LoggingConfig  `yaml:"logging,omitempty" mapstructure:"logging"`
	Output     OutputConfig   `yaml:"output,omitempty" mapstructure:"output"`
	Pricing    kpi.Pricing    `yaml:"pricing" mapstructure:"pricing"`
	Operations kpi.Operations `yaml:"operations" mapstructure:"operations"`
	Targets    kpi.Targets    `yaml:"targets" mapstructure:"targets"`
	Levers     levers.Model   `yaml:"levers" mapstructure:"levers"`
	Guidance   GuidanceConfig `yaml:"guidance,omitempty" mapstructure:"guidance"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json
}

// GuidanceConfig holds the advisory text generator settings.
type GuidanceConfig struct {
	Endpoint    string        `yaml:"endpoint,omitempty" mapstructure:"endpoint"`
	Model       string        `yaml:"model,omitempty" mapstructure:"model"`
	APIKey      string        `yaml:"apiKey,omitempty" mapstructure:"apiKey"`
	APIKeyEnv   string        `yaml:"apiKeyEnv,omitempty" mapstructure:"apiKeyEnv"`
	Temperature float64       `yaml:"temperature,omitempty" mapstructure:"temperature"`
	TopP        float64       `yaml:"topP,omitempty" mapstructure:"topP"`
	Timeout     time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
}

// Default returns the configuration used when no file is given.
func Default() Configuration {
	c := kpi.DefaultConstants()
	return Configuration{
		Pricing:    c.Pricing,
		Operations: c.Operations,
		Targets:    kpi.DefaultTargets(),
		Levers:     levers.Defaults(),
		Guidance: GuidanceConfig{
			Endpoint:    constants.DefaultGuidanceEndpoint,
			Model:       constants.DefaultGuidanceModel,
			APIKeyEnv:   constants.DefaultGuidanceAPIKeyEnv,
			Temperature: constants.DefaultGuidanceTemperature,
			TopP:        constants.DefaultGuidanceTopP,
			Timeout:     constants.DefaultGuidanceTimeoutSeconds * time.Second,
		},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults make every key known to viper so environment overrides apply
	// even when the file omits a section.
	def := Default()
	v.SetDefault("pricing.zoneA", def.Pricing.ZoneA)
	v.SetDefault("pricing.zoneB", def.Pricing.ZoneB)
	v.SetDefault("pricing.zoneC", def.Pricing.ZoneC)
	v.SetDefault("pricing.asapAddon", def.Pricing.ASAPAddon)
	v.SetDefault("pricing.expressAddon", def.Pricing.ExpressAddon)
	v.SetDefault("operations.daysPerYear", def.Operations.DaysPerYear)
	v.SetDefault("operations.hoursPerDay", def.Operations.HoursPerDay)
	v.SetDefault("targets.revenue", def.Targets.Revenue)
	v.SetDefault("targets.profitMargin", def.Targets.ProfitMargin)
	for name, value := range def.Levers.Values() {
		v.SetDefault("levers."+string(name), value)
	}
	v.SetDefault("guidance.endpoint", def.Guidance.Endpoint)
	v.SetDefault("guidance.model", def.Guidance.Model)
	v.SetDefault("guidance.apiKey", "")
	v.SetDefault("guidance.apiKeyEnv", def.Guidance.APIKeyEnv)
	v.SetDefault("guidance.temperature", def.Guidance.Temperature)
	v.SetDefault("guidance.topP", def.Guidance.TopP)
	v.SetDefault("guidance.timeout", def.Guidance.Timeout)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", "")
	return v
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

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

// LoadDefaults returns the default configuration with environment overrides
// applied. It is used when no config file exists.
func LoadDefaults() (*Configuration, error) {
	return decode(newViper())
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// Constants returns the pricing table and operating calendar.
func (c *Configuration) Constants() kpi.Constants {
	return kpi.Constants{Pricing: c.Pricing, Operations: c.Operations}
}

// StartingModel returns the configured levers, clamped and coupled so the
// mix invariants hold.
func (c *Configuration) StartingModel() levers.Model {
	return c.Levers.Normalize()
}

// GuidanceClientConfig resolves the generator settings, reading the API key
// from the configured environment variable when it is not set inline.
func (c *Configuration) GuidanceClientConfig() guidance.Config {
	g := c.Guidance
	key := g.APIKey
	if key == "" && g.APIKeyEnv != "" {
		key = os.Getenv(g.APIKeyEnv)
	}
	return guidance.Config{
		Endpoint:    g.Endpoint,
		Model:       g.Model,
		APIKey:      key,
		Temperature: g.Temperature,
		TopP:        g.TopP,
		Timeout:     g.Timeout,
	}
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	validator := validation.ConfigValidator{
		Prices: map[string]float64{
			"zoneA":        c.Pricing.ZoneA,
			"zoneB":        c.Pricing.ZoneB,
			"zoneC":        c.Pricing.ZoneC,
			"asapAddon":    c.Pricing.ASAPAddon,
			"expressAddon": c.Pricing.ExpressAddon,
		},
		DaysPerYear:  c.Operations.DaysPerYear,
		HoursPerDay:  c.Operations.HoursPerDay,
		Revenue:      c.Targets.Revenue,
		ProfitMargin: c.Targets.ProfitMargin,
	}
	warnings := validator.ValidateAll()

	normalized := c.Levers.Normalize()
	for _, name := range levers.Names() {
		raw, _ := c.Levers.Lever(name)
		adjusted, _ := normalized.Lever(name)
		if raw != adjusted {
			warnings = append(warnings, fmt.Sprintf("Lever '%s' adjusted from %g to %g to stay within range and mix limits", name, raw, adjusted))
		}
	}

	if len(warnings) == 0 {
		return nil
	}
	return warnings
}
