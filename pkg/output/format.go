// Package output provides utilities for formatting and displaying KPI reports.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/strategy-simulator/internal/kpi"
	"github.com/iwvelando/strategy-simulator/internal/levers"
	"github.com/iwvelando/strategy-simulator/pkg/format"
	"github.com/iwvelando/strategy-simulator/pkg/optimization"
)

// Display holds the user-facing strings of a report.
type Display struct {
	AnnualRevenue    string `json:"annualRevenue"`
	AnnualProfit     string `json:"annualProfit"`
	ProfitMargin     string `json:"profitMargin"`
	JobsPerHour      string `json:"jobsPerHour"`
	AvgPricePerJob   string `json:"avgPricePerJob"`
	TotalAnnualCosts string `json:"totalAnnualCosts"`
	RevenueTarget    string `json:"revenueTarget"`
	MarginTarget     string `json:"marginTarget"`
}

// NewDisplay formats a report: whole dollars for annual amounts, one decimal
// for percentages and two for rates.
func NewDisplay(r kpi.Report) Display {
	return Display{
		AnnualRevenue:    format.Currency(r.Result.AnnualRevenue),
		AnnualProfit:     format.Currency(r.Result.AnnualProfit),
		ProfitMargin:     format.Percent(r.Result.ProfitMargin),
		JobsPerHour:      format.Number(r.Result.JobsPerHour, 2),
		AvgPricePerJob:   format.CurrencyCents(r.Result.AvgPricePerJob),
		TotalAnnualCosts: format.Currency(r.Result.TotalAnnualCosts),
		RevenueTarget:    format.Currency(r.Targets.Revenue),
		MarginTarget:     format.Percent(r.Targets.ProfitMargin),
	}
}

func goalLabel(met bool) string {
	if met {
		return "met"
	}
	return "missed"
}

// LeverValue renders a lever value with its unit, e.g. "50%" or "$0.65/mi".
func LeverValue(name levers.Name, value float64) string {
	rng, err := levers.RangeFor(name)
	if err != nil {
		return fmt.Sprintf("%g", value)
	}
	switch name {
	case levers.CostPerMile:
		return format.CurrencyCents(value) + rng.Unit
	case levers.MonthlyFixedCosts:
		return format.Currency(value) + rng.Unit
	}
	return fmt.Sprintf("%g%s", value, rng.Unit)
}

// PrettyFormat writes a human-readable KPI panel followed by the levers.
func PrettyFormat(w io.Writer, r kpi.Report) {
	d := NewDisplay(r)
	fmt.Fprintf(w, "--- Key Performance Indicators ---\n")
	fmt.Fprintf(w, "%-18s | %-10s | Goal\n", "Metric", "Value")
	fmt.Fprintf(w, "%-18s | %-10s | ____\n", strings.Repeat("_", 6), strings.Repeat("_", 5))
	fmt.Fprintf(w, "%-18s | %-10s | %s (%s)\n", "Annual Revenue", d.AnnualRevenue, d.RevenueTarget, goalLabel(r.Goals.RevenueGoalMet))
	fmt.Fprintf(w, "%-18s | %-10s |\n", "Annual Profit", d.AnnualProfit)
	fmt.Fprintf(w, "%-18s | %-10s | %s (%s)\n", "Profit Margin", d.ProfitMargin, d.MarginTarget, goalLabel(r.Goals.MarginGoalMet))
	fmt.Fprintf(w, "%-18s | %-10s |\n", "Jobs Per Hour", d.JobsPerHour)
	fmt.Fprintf(w, "%-18s | %-10s |\n", "Avg Price Per Job", d.AvgPricePerJob)
	fmt.Fprintf(w, "%-18s | %-10s |\n", "Total Annual Costs", d.TotalAnnualCosts)

	fmt.Fprintf(w, "\n--- Strategic Levers ---\n")
	for _, name := range levers.Names() {
		rng, _ := levers.RangeFor(name)
		value, _ := r.Levers.Lever(name)
		fmt.Fprintf(w, "%-22s %s\n", rng.Label+":", LeverValue(name, value))
	}
	fmt.Fprintf(w, "%-22s %s\n", "Zone C Mix:", fmt.Sprintf("%g%%", r.Breakdown.ZoneCMix))
}

// CsvFormat writes the report as comma-separated values.
func CsvFormat(w io.Writer, r kpi.Report) error {
	d := NewDisplay(r)
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"metric", "value", "display", "target", "goal"},
		{"annualRevenue", fmt.Sprintf("%.2f", r.Result.AnnualRevenue), d.AnnualRevenue, fmt.Sprintf("%.2f", r.Targets.Revenue), goalLabel(r.Goals.RevenueGoalMet)},
		{"annualProfit", fmt.Sprintf("%.2f", r.Result.AnnualProfit), d.AnnualProfit, "", ""},
		{"profitMargin", fmt.Sprintf("%.4f", r.Result.ProfitMargin), d.ProfitMargin, fmt.Sprintf("%.1f", r.Targets.ProfitMargin), goalLabel(r.Goals.MarginGoalMet)},
		{"jobsPerHour", fmt.Sprintf("%.2f", r.Result.JobsPerHour), d.JobsPerHour, "", ""},
		{"avgPricePerJob", fmt.Sprintf("%.2f", r.Result.AvgPricePerJob), d.AvgPricePerJob, "", ""},
		{"totalAnnualCosts", fmt.Sprintf("%.2f", r.Result.TotalAnnualCosts), d.TotalAnnualCosts, "", ""},
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// CsvString returns the CSV rendering of a report.
func CsvString(r kpi.Report) string {
	var b strings.Builder
	_ = CsvFormat(&b, r)
	return b.String()
}

// JSONFormat writes the report together with its display strings.
func JSONFormat(w io.Writer, r kpi.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		kpi.Report
		Display Display `json:"display"`
	}{Report: r, Display: NewDisplay(r)})
}

// PrettySeek writes a target-seek summary.
func PrettySeek(w io.Writer, s optimization.Summary) {
	status := "reached"
	if !s.Converged {
		status = "not reached"
	}
	fmt.Fprintf(w, "--- Target seek: %s via %s ---\n", s.Goal, s.Lever)
	fmt.Fprintf(w, "Lever:     %s -> %s\n", s.OriginalDisplay, s.ValueDisplay)
	fmt.Fprintf(w, "Target:    %s\n", seekValue(s.Goal, s.Target))
	fmt.Fprintf(w, "Achieved:  %s (%s)\n", seekValue(s.Goal, s.Achieved), status)
	fmt.Fprintf(w, "Evaluated: %d candidates\n", s.Iterations)
	for _, note := range s.Notes {
		fmt.Fprintf(w, "Note:      %s\n", note)
	}
}

func seekValue(goal string, v float64) string {
	if goal == "margin" {
		return format.Percent(v)
	}
	return format.Currency(v)
}

// PrettySensitivity writes the one-step sensitivity table.
func PrettySensitivity(w io.Writer, rows []optimization.Sensitivity) {
	fmt.Fprintf(w, "--- Sensitivity (one step) ---\n")
	fmt.Fprintf(w, "%-18s | %-10s | %-12s | %-12s | %-8s | %-8s\n", "Lever", "Value", "Profit +1", "Profit -1", "Margin +1", "Margin -1")
	for _, row := range rows {
		name := levers.Name(row.Lever)
		fmt.Fprintf(w, "%-18s | %-10s | %-12s | %-12s | %-8s | %-8s\n",
			row.Lever,
			LeverValue(name, row.Value),
			format.Currency(row.Up.Profit),
			format.Currency(row.Down.Profit),
			format.Percent(row.Up.ProfitMargin),
			format.Percent(row.Down.ProfitMargin),
		)
	}
}
