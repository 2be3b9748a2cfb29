// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"sort"

	"github.com/iwvelando/strategy-simulator/pkg/constants"
)

// ValidatePrice warns when a configured price is negative.
func ValidatePrice(name string, price float64) string {
	if price < 0 {
		return fmt.Sprintf("Price '%s' is negative (%.2f) - jobs of this kind will reduce revenue", name, price)
	}
	return ""
}

// ValidateCalendar warns when the operating calendar cannot produce KPIs.
func ValidateCalendar(daysPerYear, hoursPerDay float64) []string {
	var warnings []string

	if daysPerYear <= 0 {
		warnings = append(warnings, fmt.Sprintf("Operating days per year must be positive (got %g) - annual revenue and variable costs will be zero or negative", daysPerYear))
	} else if daysPerYear > 366 {
		warnings = append(warnings, fmt.Sprintf("Operating days per year exceeds a calendar year (%g > 366)", daysPerYear))
	}

	if hoursPerDay <= 0 {
		warnings = append(warnings, fmt.Sprintf("Operating hours per day must be positive (got %g) - jobs per hour is undefined", hoursPerDay))
	} else if hoursPerDay > 24 {
		warnings = append(warnings, fmt.Sprintf("Operating hours per day exceeds a day (%g > 24)", hoursPerDay))
	}

	return warnings
}

// ValidateTargets warns about targets that can never or always be met.
func ValidateTargets(revenue, profitMargin float64) []string {
	var warnings []string

	if revenue <= 0 {
		warnings = append(warnings, fmt.Sprintf("Revenue target %.2f is not positive - the revenue goal is always met", revenue))
	}
	if profitMargin > constants.PercentageMultiplier {
		warnings = append(warnings, fmt.Sprintf("Profit margin target %.1f%% exceeds 100%% - the margin goal can never be met", profitMargin))
	}

	return warnings
}

// ConfigValidator collects the numeric settings of a configuration.
type ConfigValidator struct {
	Prices       map[string]float64
	DaysPerYear  float64
	HoursPerDay  float64
	Revenue      float64
	ProfitMargin float64
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	names := make([]string, 0, len(cv.Prices))
	for name := range cv.Prices {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if warning := ValidatePrice(name, cv.Prices[name]); warning != "" {
			warnings = append(warnings, warning)
		}
	}

	warnings = append(warnings, ValidateCalendar(cv.DaysPerYear, cv.HoursPerDay)...)
	warnings = append(warnings, ValidateTargets(cv.Revenue, cv.ProfitMargin)...)

	return warnings
}
