package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/strategy-simulator/internal/guidance"
)

func TestRunPrettyOutput(t *testing.T) {
	var out bytes.Buffer
	code := run([]string{"-config", "../../config.yaml.example", "-log-level", "error"}, &out)
	if code != 0 {
		t.Fatalf("run() = %d, expected 0; output:\n%s", code, out.String())
	}
	for _, fragment := range []string{"$129,480", "85.6%", "$41.50"} {
		if !strings.Contains(out.String(), fragment) {
			t.Errorf("output missing %q:\n%s", fragment, out.String())
		}
	}
}

func TestRunRejectsInvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"Unknown flag", []string{"-bogus"}},
		{"Missing explicit config", []string{"-config", "does-not-exist.yaml"}},
		{"Bad output format", []string{"-config", "../../config.yaml.example", "-output-format", "xml"}},
		{"Bad assignment", []string{"-config", "../../config.yaml.example", "-set", "jobsPerDay"}},
		{"Bad tutorial step", []string{"-config", "../../config.yaml.example", "-step", "7"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if code := run(tt.args, &out); code == 0 {
				t.Errorf("run(%v) = 0, expected a failure code", tt.args)
			}
		})
	}
}

// TestRunGuidanceFailureFlushesLog checks that a failed guidance request
// exits non-zero with the user message and still leaves its error in the log.
func TestRunGuidanceFailureFlushesLog(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "simulator.log")
	configFile := filepath.Join(dir, "config.yaml")
	yaml := "logging:\n  level: info\n  format: json\n  outputFile: " + logFile + "\n" +
		"guidance:\n  apiKeyEnv: STRATEGY_SIMULATOR_TEST_KEY\n"
	if err := os.WriteFile(configFile, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("STRATEGY_SIMULATOR_TEST_KEY", "")

	var out bytes.Buffer
	code := run([]string{"-config", configFile, "-step", "0", "-guidance"}, &out)
	if code != 1 {
		t.Fatalf("run() = %d, expected 1", code)
	}
	if !strings.Contains(out.String(), guidance.UserMessage) {
		t.Errorf("output missing %q:\n%s", guidance.UserMessage, out.String())
	}

	logged, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(logged), "guidance request failed") {
		t.Errorf("log file missing guidance failure:\n%s", logged)
	}
}
