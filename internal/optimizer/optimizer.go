// Package optimizer searches lever values that meet the KPI targets and
// measures how sensitive the KPIs are to each lever.
package optimizer

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/strategy-simulator/internal/kpi"
	"github.com/iwvelando/strategy-simulator/internal/levers"
	"github.com/iwvelando/strategy-simulator/pkg/constants"
	"github.com/iwvelando/strategy-simulator/pkg/format"
	"github.com/iwvelando/strategy-simulator/pkg/mathutil"
	"github.com/iwvelando/strategy-simulator/pkg/optimization"
	"github.com/iwvelando/strategy-simulator/pkg/output"
	"go.uber.org/zap"
)

// Goal selects the KPI a seek run tries to bring up to its target.
type Goal string

// Supported goals.
const (
	GoalRevenue Goal = "revenue"
	GoalMargin  Goal = "margin"
)

// ParseGoal converts a string into a Goal.
func ParseGoal(s string) (Goal, error) {
	switch Goal(strings.ToLower(strings.TrimSpace(s))) {
	case GoalRevenue:
		return GoalRevenue, nil
	case GoalMargin, "profitmargin":
		return GoalMargin, nil
	}
	return "", fmt.Errorf("unknown goal %q: expected %s or %s", s, GoalRevenue, GoalMargin)
}

// Runner evaluates candidate models against fixed constants and targets.
type Runner struct {
	logger    *zap.Logger
	constants kpi.Constants
	targets   kpi.Targets
}

type evaluation struct {
	value  float64
	model  levers.Model
	metric float64
	target float64
}

func (e evaluation) feasible() bool {
	return e.metric >= e.target
}

func (e evaluation) headroom() float64 {
	return e.metric - e.target
}

// NewRunner constructs a Runner.
func NewRunner(logger *zap.Logger, c kpi.Constants, t kpi.Targets) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger, constants: c, targets: t}
}

// Seek finds the value of lever closest to its current setting at which the
// goal KPI meets its target. Candidates are the lever's step grid, applied
// through SetLever so the mix coupling rules hold. When no candidate meets
// the target, the one with the most headroom is reported and Converged is
// false.
func (r *Runner) Seek(model levers.Model, lever levers.Name, goal Goal) (optimization.Summary, error) {
	rng, err := levers.RangeFor(lever)
	if err != nil {
		return optimization.Summary{}, err
	}
	if goal != GoalRevenue && goal != GoalMargin {
		return optimization.Summary{}, fmt.Errorf("unknown goal %q", goal)
	}

	model = model.Normalize()
	original, _ := model.Lever(lever)

	current := r.evaluate(model, original, goal)
	iterations := 1
	best := current

	if !current.feasible() {
		var bestFeasible *evaluation
		var bestInfeasible = current
		for _, candidate := range grid(rng) {
			trial := model
			_ = trial.SetLever(lever, candidate)
			eval := r.evaluate(trial, candidate, goal)
			iterations++

			if eval.feasible() {
				if bestFeasible == nil || closer(eval, *bestFeasible, original) {
					e := eval
					bestFeasible = &e
				}
				continue
			}
			if eval.headroom() > bestInfeasible.headroom() {
				bestInfeasible = eval
			}
		}
		if bestFeasible != nil {
			best = *bestFeasible
		} else {
			best = bestInfeasible
		}
	}

	summary := optimization.Summary{
		Lever:           string(lever),
		Goal:            string(goal),
		Original:        original,
		OriginalDisplay: output.LeverValue(lever, original),
		Value:           best.value,
		ValueDisplay:    output.LeverValue(lever, best.value),
		Target:          best.target,
		Achieved:        best.metric,
		Headroom:        best.headroom(),
		Iterations:      iterations,
		Converged:       best.feasible(),
		Levers:          leverMap(best.model),
	}
	if !summary.Converged {
		summary.Notes = append(summary.Notes, fmt.Sprintf(
			"unable to reach %s target %s within bounds %s to %s",
			goal,
			goalDisplay(goal, best.target),
			output.LeverValue(lever, rng.Min),
			output.LeverValue(lever, rng.Max),
		))
	}
	if coupled := coupledChanges(model, best.model, lever); len(coupled) > 0 {
		summary.Notes = append(summary.Notes, "coupled adjustment: "+strings.Join(coupled, ", "))
	}

	r.logger.Info("optimizer evaluated lever",
		zap.String("op", "optimizer.Seek"),
		zap.String("lever", string(lever)),
		zap.String("goal", string(goal)),
		zap.Float64("original", original),
		zap.Float64("value", summary.Value),
		zap.Float64("target", summary.Target),
		zap.Float64("achieved", summary.Achieved),
		zap.Float64("headroom", summary.Headroom),
		zap.Int("iterations", summary.Iterations),
		zap.Bool("converged", summary.Converged),
	)

	return summary, nil
}

// Sensitivity moves every lever one step up and one step down from model and
// reports the resulting KPI changes. Moves are clamped and coupled exactly as
// a user adjustment would be.
func (r *Runner) Sensitivity(model levers.Model) []optimization.Sensitivity {
	model = model.Normalize()
	base := kpi.Derive(model, r.constants, r.targets)

	rows := make([]optimization.Sensitivity, 0, len(levers.Names()))
	for _, name := range levers.Names() {
		rng, _ := levers.RangeFor(name)
		value, _ := model.Lever(name)

		rows = append(rows, optimization.Sensitivity{
			Lever: string(name),
			Value: value,
			Up:    r.delta(model, base, name, value+rng.Step),
			Down:  r.delta(model, base, name, value-rng.Step),
		})
	}

	r.logger.Debug("sensitivity computed",
		zap.String("op", "optimizer.Sensitivity"),
		zap.Int("levers", len(rows)),
	)
	return rows
}

func (r *Runner) delta(model levers.Model, base kpi.Result, name levers.Name, value float64) optimization.Delta {
	trial := model
	_ = trial.SetLever(name, mathutil.Round(value))
	applied, _ := trial.Lever(name)
	res := kpi.Derive(trial, r.constants, r.targets)
	return optimization.Delta{
		Value:        applied,
		Revenue:      res.AnnualRevenue - base.AnnualRevenue,
		Profit:       res.AnnualProfit - base.AnnualProfit,
		ProfitMargin: res.ProfitMargin - base.ProfitMargin,
	}
}

func (r *Runner) evaluate(model levers.Model, value float64, goal Goal) evaluation {
	res := kpi.Derive(model, r.constants, r.targets)
	eval := evaluation{value: value, model: model}
	switch goal {
	case GoalRevenue:
		eval.metric = res.AnnualRevenue
		eval.target = r.targets.Revenue
	case GoalMargin:
		eval.metric = res.ProfitMargin
		eval.target = r.targets.ProfitMargin
	}
	return eval
}

// closer prefers the smaller move from original, then the larger headroom.
func closer(a, b evaluation, original float64) bool {
	da := math.Abs(a.value - original)
	db := math.Abs(b.value - original)
	if math.Abs(da-db) > constants.Tolerance {
		return da < db
	}
	return a.headroom() > b.headroom()
}

// grid lists every step of a lever's range, rounded to cents so that
// repeated float steps do not drift off the grid.
func grid(rng levers.Range) []float64 {
	n := int(math.Round((rng.Max - rng.Min) / rng.Step))
	values := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		values = append(values, mathutil.Round(rng.Min+float64(i)*rng.Step))
	}
	return values
}

func coupledChanges(before, after levers.Model, lever levers.Name) []string {
	var changed []string
	for _, name := range levers.Names() {
		if name == lever {
			continue
		}
		b, _ := before.Lever(name)
		a, _ := after.Lever(name)
		if a != b {
			changed = append(changed, fmt.Sprintf("%s %s -> %s", name, output.LeverValue(name, b), output.LeverValue(name, a)))
		}
	}
	return changed
}

func leverMap(m levers.Model) map[string]float64 {
	out := make(map[string]float64)
	for name, v := range m.Values() {
		out[string(name)] = v
	}
	return out
}

func goalDisplay(goal Goal, value float64) string {
	if goal == GoalMargin {
		return format.Percent(value)
	}
	return format.Currency(value)
}
