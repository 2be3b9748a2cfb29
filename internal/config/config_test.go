package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/strategy-simulator/internal/kpi"
	"github.com/iwvelando/strategy-simulator/internal/levers"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Example config",
			configPath: filepath.Join("..", "..", "config.yaml.example"),
			wantError:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationDefaultsForMissingSections(t *testing.T) {
	path := writeConfig(t, `logging:
  level: debug
  format: console
`)

	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if conf.Logging.Level != "debug" || conf.Logging.Format != "console" {
		t.Errorf("unexpected logging config %+v", conf.Logging)
	}
	if conf.Constants() != kpi.DefaultConstants() {
		t.Errorf("expected default constants, got %+v", conf.Constants())
	}
	if conf.Targets != kpi.DefaultTargets() {
		t.Errorf("expected default targets, got %+v", conf.Targets)
	}
	if conf.StartingModel() != levers.Defaults() {
		t.Errorf("expected default levers, got %+v", conf.StartingModel())
	}
	if conf.Guidance.Timeout != 30*time.Second {
		t.Errorf("expected default guidance timeout, got %v", conf.Guidance.Timeout)
	}
	if warnings := conf.ValidateConfiguration(); warnings != nil {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}

func TestLoadConfigurationOverrides(t *testing.T) {
	path := writeConfig(t, `output:
  format: csv
pricing:
  zoneA: 30
  asapAddon: 20
operations:
  daysPerYear: 260
targets:
  revenue: 200000
  profitMargin: 40
levers:
  jobsPerDay: 22
  zoneAMix: 60
  zoneBMix: 40
guidance:
  model: gemini-2.5-pro
  timeout: 5s
`)

	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if conf.Output.Format != "csv" {
		t.Errorf("output format = %q, expected csv", conf.Output.Format)
	}
	if conf.Pricing.ZoneA != 30 || conf.Pricing.ASAPAddon != 20 || conf.Pricing.ZoneB != 35 {
		t.Errorf("unexpected pricing %+v", conf.Pricing)
	}
	if conf.Operations.DaysPerYear != 260 || conf.Operations.HoursPerDay != 10 {
		t.Errorf("unexpected operations %+v", conf.Operations)
	}
	if conf.Targets.Revenue != 200000 || conf.Targets.ProfitMargin != 40 {
		t.Errorf("unexpected targets %+v", conf.Targets)
	}

	model := conf.StartingModel()
	if model.JobsPerDay != 22 || model.ZoneAMix != 60 || model.ZoneBMix != 40 || model.CostPerMile != 0.65 {
		t.Errorf("unexpected starting model %+v", model)
	}
	if conf.Guidance.Model != "gemini-2.5-pro" || conf.Guidance.Timeout != 5*time.Second {
		t.Errorf("unexpected guidance config %+v", conf.Guidance)
	}
}

func TestLoadConfigurationEnvironmentOverride(t *testing.T) {
	t.Setenv("SIMULATOR_TARGETS_REVENUE", "120000")

	conf, err := LoadDefaults()
	if err != nil {
		t.Fatalf("LoadDefaults() error = %v", err)
	}
	if conf.Targets.Revenue != 120000 {
		t.Errorf("expected env override of revenue target, got %v", conf.Targets.Revenue)
	}
}

func TestLoadConfigurationFromReader(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader("levers:\n  monthlyFixedCosts: 400\n"))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if conf.Levers.MonthlyFixedCosts != 400 {
		t.Errorf("expected fixed costs 400, got %v", conf.Levers.MonthlyFixedCosts)
	}

	if _, err := LoadConfigurationFromReader(strings.NewReader("levers: [unclosed")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestValidateConfigurationWarnings(t *testing.T) {
	conf := Default()
	conf.Pricing.ExpressAddon = -5
	conf.Operations.HoursPerDay = 0
	conf.Levers.ZoneAMix = 80
	conf.Levers.ZoneBMix = 50
	conf.Levers.JobsPerDay = 0

	warnings := conf.ValidateConfiguration()

	expected := []string{"expressAddon", "hours per day", "'jobsPerDay' adjusted from 0 to 1", "'zoneAMix' adjusted from 80 to 50"}
	for _, fragment := range expected {
		found := false
		for _, w := range warnings {
			if strings.Contains(w, fragment) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected a warning containing %q, got %v", fragment, warnings)
		}
	}
}

func TestGuidanceClientConfig(t *testing.T) {
	t.Setenv("TEST_GUIDANCE_KEY", "from-env")

	conf := Default()
	conf.Guidance.APIKeyEnv = "TEST_GUIDANCE_KEY"
	if got := conf.GuidanceClientConfig().APIKey; got != "from-env" {
		t.Errorf("expected API key from environment, got %q", got)
	}

	conf.Guidance.APIKey = "inline"
	if got := conf.GuidanceClientConfig().APIKey; got != "inline" {
		t.Errorf("expected inline API key to win, got %q", got)
	}
}
