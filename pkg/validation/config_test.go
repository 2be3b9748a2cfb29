package validation

import (
	"strings"
	"testing"
)

func TestValidatePrice(t *testing.T) {
	if w := ValidatePrice("zoneA", 25); w != "" {
		t.Errorf("unexpected warning for positive price: %s", w)
	}
	if w := ValidatePrice("zoneA", 0); w != "" {
		t.Errorf("unexpected warning for free price: %s", w)
	}
	if w := ValidatePrice("asapAddon", -5); !strings.Contains(w, "asapAddon") {
		t.Errorf("expected warning naming the price, got %q", w)
	}
}

func TestValidateCalendar(t *testing.T) {
	tests := []struct {
		name          string
		days          float64
		hours         float64
		expectedCount int
	}{
		{"Standard calendar", 208, 10, 0},
		{"Zero days", 0, 10, 1},
		{"Negative hours", 208, -1, 1},
		{"Both impossible", 400, 30, 2},
		{"Full calendar", 366, 24, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := ValidateCalendar(tt.days, tt.hours)
			if len(warnings) != tt.expectedCount {
				t.Errorf("ValidateCalendar(%v, %v) returned %d warnings, expected %d: %v",
					tt.days, tt.hours, len(warnings), tt.expectedCount, warnings)
			}
		})
	}
}

func TestValidateTargets(t *testing.T) {
	if w := ValidateTargets(150000, 30); len(w) != 0 {
		t.Errorf("unexpected warnings for default targets: %v", w)
	}
	if w := ValidateTargets(0, 30); len(w) != 1 {
		t.Errorf("expected revenue warning, got %v", w)
	}
	if w := ValidateTargets(150000, 120); len(w) != 1 {
		t.Errorf("expected margin warning, got %v", w)
	}
}

func TestConfigValidatorValidateAll(t *testing.T) {
	cv := ConfigValidator{
		Prices: map[string]float64{
			"zoneB": -1,
			"zoneA": -2,
			"zoneC": 45,
		},
		DaysPerYear:  0,
		HoursPerDay:  10,
		Revenue:      150000,
		ProfitMargin: 30,
	}

	warnings := cv.ValidateAll()
	if len(warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %d: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0], "zoneA") || !strings.Contains(warnings[1], "zoneB") {
		t.Errorf("expected price warnings sorted by name, got %v", warnings)
	}
}
