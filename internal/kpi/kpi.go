// Package kpi derives the annual financial KPIs of the delivery business from
// the current lever values.
package kpi

import (
	"github.com/iwvelando/strategy-simulator/internal/levers"
	"github.com/iwvelando/strategy-simulator/pkg/constants"
	"github.com/iwvelando/strategy-simulator/pkg/mathutil"
)

// Pricing holds the per-job base prices by zone and the urgency surcharges.
type Pricing struct {
	ZoneA        float64 `json:"zoneA" yaml:"zoneA" mapstructure:"zoneA"`
	ZoneB        float64 `json:"zoneB" yaml:"zoneB" mapstructure:"zoneB"`
	ZoneC        float64 `json:"zoneC" yaml:"zoneC" mapstructure:"zoneC"`
	ASAPAddon    float64 `json:"asapAddon" yaml:"asapAddon" mapstructure:"asapAddon"`
	ExpressAddon float64 `json:"expressAddon" yaml:"expressAddon" mapstructure:"expressAddon"`
}

// Operations holds the operating calendar.
type Operations struct {
	DaysPerYear float64 `json:"daysPerYear" yaml:"daysPerYear" mapstructure:"daysPerYear"`
	HoursPerDay float64 `json:"hoursPerDay" yaml:"hoursPerDay" mapstructure:"hoursPerDay"`
}

// Constants groups the fixed inputs of a derivation.
type Constants struct {
	Pricing    Pricing    `json:"pricing" yaml:"pricing" mapstructure:"pricing"`
	Operations Operations `json:"operations" yaml:"operations" mapstructure:"operations"`
}

// Targets are the goals the KPIs are measured against.
type Targets struct {
	Revenue      float64 `json:"revenue" yaml:"revenue" mapstructure:"revenue"`
	ProfitMargin float64 `json:"profitMargin" yaml:"profitMargin" mapstructure:"profitMargin"`
}

// Result is the set of KPIs shown to the user.
type Result struct {
	AnnualRevenue    float64 `json:"annualRevenue"`
	AnnualProfit     float64 `json:"annualProfit"`
	ProfitMargin     float64 `json:"profitMargin"`
	TotalAnnualCosts float64 `json:"totalAnnualCosts"`
	JobsPerHour      float64 `json:"jobsPerHour"`
	AvgPricePerJob   float64 `json:"avgPricePerJob"`
}

// Breakdown exposes the intermediate values of a derivation.
type Breakdown struct {
	ZoneCMix            float64 `json:"zoneCMix"`
	SameDayMix          float64 `json:"sameDayMix"`
	AvgBasePrice        float64 `json:"avgBasePrice"`
	AvgAddonPrice       float64 `json:"avgAddonPrice"`
	AnnualVariableCosts float64 `json:"annualVariableCosts"`
	AnnualFixedCosts    float64 `json:"annualFixedCosts"`
}

// Goals reports which targets the KPIs meet.
type Goals struct {
	RevenueGoalMet bool `json:"revenueGoalMet"`
	MarginGoalMet  bool `json:"marginGoalMet"`
}

// Report is everything a surface needs to render one model.
type Report struct {
	Levers    levers.Model `json:"levers"`
	Result    Result       `json:"result"`
	Breakdown Breakdown    `json:"breakdown"`
	Goals     Goals        `json:"goals"`
	Targets   Targets      `json:"targets"`
}

// DefaultConstants returns the standard pricing table and operating calendar.
func DefaultConstants() Constants {
	return Constants{
		Pricing: Pricing{
			ZoneA:        constants.DefaultZoneAPrice,
			ZoneB:        constants.DefaultZoneBPrice,
			ZoneC:        constants.DefaultZoneCPrice,
			ASAPAddon:    constants.DefaultASAPAddon,
			ExpressAddon: constants.DefaultExpressAddon,
		},
		Operations: Operations{
			DaysPerYear: constants.OperatingDaysPerYear,
			HoursPerDay: constants.OperatingHoursPerDay,
		},
	}
}

// DefaultTargets returns the standard revenue and margin goals.
func DefaultTargets() Targets {
	return Targets{
		Revenue:      constants.RevenueTarget,
		ProfitMargin: constants.ProfitMarginTarget,
	}
}

// Derive computes the KPIs for a model. The model is expected to satisfy the
// mix invariants enforced by levers.Model.SetLever. Targets do not affect the
// result; they are accepted so callers can pass one consistent set of inputs.
func Derive(m levers.Model, c Constants, _ Targets) Result {
	b := Explain(m, c)

	avgPricePerJob := b.AvgBasePrice + b.AvgAddonPrice
	annualRevenue := m.JobsPerDay * c.Operations.DaysPerYear * avgPricePerJob
	totalAnnualCosts := b.AnnualVariableCosts + b.AnnualFixedCosts
	annualProfit := annualRevenue - totalAnnualCosts

	profitMargin := 0.0
	if annualRevenue > 0 {
		profitMargin = mathutil.CalculatePercentage(annualProfit, annualRevenue)
	}
	jobsPerHour := 0.0
	if c.Operations.HoursPerDay > 0 {
		jobsPerHour = m.JobsPerDay / c.Operations.HoursPerDay
	}

	return Result{
		AnnualRevenue:    annualRevenue,
		AnnualProfit:     annualProfit,
		ProfitMargin:     profitMargin,
		TotalAnnualCosts: totalAnnualCosts,
		JobsPerHour:      jobsPerHour,
		AvgPricePerJob:   avgPricePerJob,
	}
}

// Explain computes the intermediate values Derive builds on.
func Explain(m levers.Model, c Constants) Breakdown {
	p := c.Pricing
	zoneCMix := m.ZoneCMix()

	avgBasePrice := mathutil.ApplyPercentage(p.ZoneA, m.ZoneAMix) +
		mathutil.ApplyPercentage(p.ZoneB, m.ZoneBMix) +
		mathutil.ApplyPercentage(p.ZoneC, zoneCMix)
	avgAddonPrice := mathutil.ApplyPercentage(p.ASAPAddon, m.ASAPMix) +
		mathutil.ApplyPercentage(p.ExpressAddon, m.ExpressMix)

	return Breakdown{
		ZoneCMix:            zoneCMix,
		SameDayMix:          m.SameDayMix(),
		AvgBasePrice:        avgBasePrice,
		AvgAddonPrice:       avgAddonPrice,
		AnnualVariableCosts: m.JobsPerDay * c.Operations.DaysPerYear * m.AvgMilesPerJob * m.CostPerMile,
		AnnualFixedCosts:    m.MonthlyFixedCosts * constants.MonthsPerYear,
	}
}

// EvaluateGoals compares a result against the targets.
func EvaluateGoals(r Result, t Targets) Goals {
	return Goals{
		RevenueGoalMet: r.AnnualRevenue >= t.Revenue,
		MarginGoalMet:  r.ProfitMargin >= t.ProfitMargin,
	}
}

// Evaluate derives a full report for a model. It is recomputed from scratch
// on every call.
func Evaluate(m levers.Model, c Constants, t Targets) Report {
	result := Derive(m, c, t)
	return Report{
		Levers:    m,
		Result:    result,
		Breakdown: Explain(m, c),
		Goals:     EvaluateGoals(result, t),
		Targets:   t,
	}
}
