package optimizer

import (
	"strings"
	"testing"

	"github.com/iwvelando/strategy-simulator/internal/kpi"
	"github.com/iwvelando/strategy-simulator/internal/levers"
	"github.com/iwvelando/strategy-simulator/pkg/optimization"
	"github.com/iwvelando/strategy-simulator/pkg/testutil"
	"go.uber.org/zap"
)

func newTestRunner(targets kpi.Targets) *Runner {
	return NewRunner(zap.NewNop(), kpi.DefaultConstants(), targets)
}

func TestSeekRevenueByJobsPerDay(t *testing.T) {
	runner := newTestRunner(kpi.DefaultTargets())

	summary, err := runner.Seek(levers.Defaults(), levers.JobsPerDay, GoalRevenue)
	if err != nil {
		t.Fatalf("Seek() error = %v", err)
	}

	if !summary.Converged {
		t.Fatalf("expected convergence, got %+v", summary)
	}
	if summary.Original != 15 || summary.Value != 18 {
		t.Errorf("jobsPerDay %v -> %v, expected 15 -> 18", summary.Original, summary.Value)
	}
	testutil.WithinTolerance(t, "achieved", summary.Achieved, 18*208*41.5, 1e-6)
	if summary.Headroom < 0 {
		t.Errorf("expected non-negative headroom, got %v", summary.Headroom)
	}
	if summary.Levers["jobsPerDay"] != 18 {
		t.Errorf("expected adjusted model in summary, got %v", summary.Levers)
	}
	if summary.Iterations <= 1 {
		t.Errorf("expected a search, got %d iterations", summary.Iterations)
	}
}

func TestSeekAlreadyMet(t *testing.T) {
	runner := newTestRunner(kpi.DefaultTargets())

	summary, err := runner.Seek(levers.Defaults(), levers.CostPerMile, GoalMargin)
	if err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if !summary.Converged || summary.Value != summary.Original || summary.Iterations != 1 {
		t.Errorf("expected no change when target already met, got %+v", summary)
	}
	if summary.ValueDisplay != "$0.65/mi" {
		t.Errorf("unexpected value display %q", summary.ValueDisplay)
	}
}

func TestSeekPrefersSmallestMove(t *testing.T) {
	runner := newTestRunner(kpi.DefaultTargets())

	// Lowering zone A shifts jobs into pricier zone C; 15% is the first step
	// that clears the revenue target.
	summary, err := runner.Seek(levers.Defaults(), levers.ZoneAMix, GoalRevenue)
	if err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if !summary.Converged || summary.Value != 15 {
		t.Fatalf("expected zoneAMix 15, got %+v", summary)
	}
	testutil.WithinTolerance(t, "achieved", summary.Achieved, 151320, 1e-6)
	if summary.OriginalDisplay != "50%" || summary.ValueDisplay != "15%" {
		t.Errorf("unexpected displays %q -> %q", summary.OriginalDisplay, summary.ValueDisplay)
	}
}

func TestSeekReportsCoupledAdjustment(t *testing.T) {
	runner := newTestRunner(kpi.Targets{Revenue: 160000, ProfitMargin: 30})

	model := levers.Defaults()
	_ = model.SetLever(levers.ExpressMix, 80)

	summary, err := runner.Seek(model, levers.ASAPMix, GoalRevenue)
	if err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if !summary.Converged || summary.Value != 45 {
		t.Fatalf("expected asapMix 45, got %+v", summary)
	}
	if summary.Levers["expressMix"] != 55 {
		t.Errorf("expected express mix coupled down to 55, got %v", summary.Levers["expressMix"])
	}

	found := false
	for _, note := range summary.Notes {
		if strings.Contains(note, "expressMix 80% -> 55%") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected coupled adjustment note, got %v", summary.Notes)
	}
}

func TestSeekUnreachable(t *testing.T) {
	runner := newTestRunner(kpi.DefaultTargets())

	summary, err := runner.Seek(levers.Defaults(), levers.AvgMilesPerJob, GoalRevenue)
	if err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if summary.Converged {
		t.Fatalf("miles per job cannot change revenue, got %+v", summary)
	}
	if summary.Value != summary.Original {
		t.Errorf("expected original value kept, got %v", summary.Value)
	}
	if len(summary.Notes) == 0 || !strings.Contains(summary.Notes[0], "unable to reach revenue target $150,000") {
		t.Errorf("unexpected notes %v", summary.Notes)
	}
}

func TestSeekInvalidInputs(t *testing.T) {
	runner := newTestRunner(kpi.DefaultTargets())

	if _, err := runner.Seek(levers.Defaults(), "fuelPrice", GoalRevenue); err == nil {
		t.Error("expected error for unknown lever")
	}
	if _, err := runner.Seek(levers.Defaults(), levers.JobsPerDay, Goal("cash")); err == nil {
		t.Error("expected error for unknown goal")
	}
}

func TestParseGoal(t *testing.T) {
	tests := map[string]Goal{
		"revenue":      GoalRevenue,
		" Margin ":     GoalMargin,
		"profitMargin": GoalMargin,
	}
	for input, expected := range tests {
		got, err := ParseGoal(input)
		if err != nil {
			t.Fatalf("ParseGoal(%q) error = %v", input, err)
		}
		if got != expected {
			t.Errorf("ParseGoal(%q) = %s, expected %s", input, got, expected)
		}
	}
	if _, err := ParseGoal("profit"); err == nil {
		t.Error("expected error for unsupported goal")
	}
}

func findRow(rows []optimization.Sensitivity, lever levers.Name) *optimization.Sensitivity {
	for i := range rows {
		if rows[i].Lever == string(lever) {
			return &rows[i]
		}
	}
	return nil
}

func TestSensitivity(t *testing.T) {
	runner := newTestRunner(kpi.DefaultTargets())

	rows := runner.Sensitivity(levers.Defaults())
	if len(rows) != len(levers.Names()) {
		t.Fatalf("expected %d rows, got %d", len(levers.Names()), len(rows))
	}

	jobs := findRow(rows, levers.JobsPerDay)
	if jobs == nil {
		t.Fatal("missing jobsPerDay row")
	}
	if jobs.Up.Value != 16 || jobs.Down.Value != 14 {
		t.Errorf("jobsPerDay steps = (%v, %v), expected (16, 14)", jobs.Up.Value, jobs.Down.Value)
	}
	testutil.WithinTolerance(t, "jobs up revenue", jobs.Up.Revenue, 208*41.5, 1e-6)
	testutil.WithinTolerance(t, "jobs up profit", jobs.Up.Profit, 208*41.5-208*8*0.65, 1e-6)
	testutil.WithinTolerance(t, "jobs down revenue", jobs.Down.Revenue, -208*41.5, 1e-6)

	fixed := findRow(rows, levers.MonthlyFixedCosts)
	testutil.WithinTolerance(t, "fixed up profit", fixed.Up.Profit, -300, 1e-6)
	testutil.NearlyEqual(t, "fixed up revenue", fixed.Up.Revenue, 0)
	if fixed.Up.ProfitMargin >= 0 {
		t.Errorf("expected margin to drop with higher fixed costs, got %v", fixed.Up.ProfitMargin)
	}

	cost := findRow(rows, levers.CostPerMile)
	if cost.Up.Value != 0.7 || cost.Down.Value != 0.6 {
		t.Errorf("costPerMile steps = (%v, %v), expected (0.7, 0.6)", cost.Up.Value, cost.Down.Value)
	}
}

func TestSensitivityAtBounds(t *testing.T) {
	runner := newTestRunner(kpi.DefaultTargets())

	model := levers.Defaults()
	_ = model.SetLever(levers.JobsPerDay, 40)

	jobs := findRow(runner.Sensitivity(model), levers.JobsPerDay)
	if jobs.Up.Value != 40 {
		t.Errorf("expected clamped step at max, got %v", jobs.Up.Value)
	}
	testutil.NearlyEqual(t, "clamped revenue delta", jobs.Up.Revenue, 0)
}

func TestGrid(t *testing.T) {
	rng, _ := levers.RangeFor(levers.CostPerMile)
	values := grid(rng)
	if len(values) != 25 {
		t.Fatalf("expected 25 grid points, got %d", len(values))
	}
	if values[0] != 0.3 || values[7] != 0.65 || values[24] != 1.5 {
		t.Errorf("unexpected grid values %v", values)
	}
}
