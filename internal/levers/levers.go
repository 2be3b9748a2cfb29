// Package levers holds the user-adjustable inputs of the calculator and the
// coupling rules that keep the zone and urgency mixes within 100%.
package levers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/strategy-simulator/pkg/constants"
	"github.com/iwvelando/strategy-simulator/pkg/mathutil"
)

// Name identifies a lever.
type Name string

// Lever names, in display order.
const (
	JobsPerDay        Name = "jobsPerDay"
	ZoneAMix          Name = "zoneAMix"
	ZoneBMix          Name = "zoneBMix"
	ASAPMix           Name = "asapMix"
	ExpressMix        Name = "expressMix"
	AvgMilesPerJob    Name = "avgMilesPerJob"
	CostPerMile       Name = "costPerMile"
	MonthlyFixedCosts Name = "monthlyFixedCosts"
)

// ErrUnknownLever is returned when a lever name is not recognized.
var ErrUnknownLever = errors.New("unknown lever")

// Range describes the bounds of a lever as presented to the user.
type Range struct {
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
	Step  float64 `json:"step" yaml:"step"`
	Unit  string  `json:"unit,omitempty" yaml:"unit,omitempty"`
	Label string  `json:"label" yaml:"label"`
}

var order = []Name{
	JobsPerDay,
	ZoneAMix,
	ZoneBMix,
	ASAPMix,
	ExpressMix,
	AvgMilesPerJob,
	CostPerMile,
	MonthlyFixedCosts,
}

var ranges = map[Name]Range{
	JobsPerDay:        {Min: 1, Max: 40, Step: 1, Unit: "", Label: "Average Jobs Per Day"},
	ZoneAMix:          {Min: 0, Max: 100, Step: 5, Unit: "%", Label: "Zone A Mix"},
	ZoneBMix:          {Min: 0, Max: 100, Step: 5, Unit: "%", Label: "Zone B Mix"},
	ASAPMix:           {Min: 0, Max: 100, Step: 5, Unit: "%", Label: "ASAP Urgency Mix"},
	ExpressMix:        {Min: 0, Max: 100, Step: 5, Unit: "%", Label: "Express Urgency Mix"},
	AvgMilesPerJob:    {Min: 2, Max: 20, Step: 1, Unit: " mi", Label: "Average Miles Per Job"},
	CostPerMile:       {Min: 0.30, Max: 1.50, Step: 0.05, Unit: "/mi", Label: "Cost Per Mile"},
	MonthlyFixedCosts: {Min: 50, Max: 1000, Step: 25, Unit: "/mo", Label: "Monthly Fixed Costs"},
}

// Model is the full set of lever values for one session.
type Model struct {
	JobsPerDay        float64 `json:"jobsPerDay" yaml:"jobsPerDay" mapstructure:"jobsPerDay"`
	ZoneAMix          float64 `json:"zoneAMix" yaml:"zoneAMix" mapstructure:"zoneAMix"`
	ZoneBMix          float64 `json:"zoneBMix" yaml:"zoneBMix" mapstructure:"zoneBMix"`
	ASAPMix           float64 `json:"asapMix" yaml:"asapMix" mapstructure:"asapMix"`
	ExpressMix        float64 `json:"expressMix" yaml:"expressMix" mapstructure:"expressMix"`
	AvgMilesPerJob    float64 `json:"avgMilesPerJob" yaml:"avgMilesPerJob" mapstructure:"avgMilesPerJob"`
	CostPerMile       float64 `json:"costPerMile" yaml:"costPerMile" mapstructure:"costPerMile"`
	MonthlyFixedCosts float64 `json:"monthlyFixedCosts" yaml:"monthlyFixedCosts" mapstructure:"monthlyFixedCosts"`
}

// Defaults returns the model a new session starts with.
func Defaults() Model {
	return Model{
		JobsPerDay:        15,
		ZoneAMix:          50,
		ZoneBMix:          30,
		ASAPMix:           20,
		ExpressMix:        30,
		AvgMilesPerJob:    8,
		CostPerMile:       0.65,
		MonthlyFixedCosts: 200,
	}
}

// Names returns every lever name in display order.
func Names() []Name {
	return append([]Name(nil), order...)
}

// Ranges returns a copy of the range table keyed by lever name.
func Ranges() map[Name]Range {
	out := make(map[Name]Range, len(ranges))
	for name, r := range ranges {
		out[name] = r
	}
	return out
}

// RangeFor returns the bounds of a single lever.
func RangeFor(name Name) (Range, error) {
	r, ok := ranges[name]
	if !ok {
		return Range{}, fmt.Errorf("%w: %s", ErrUnknownLever, name)
	}
	return r, nil
}

// ParseName converts a string into a lever name. Matching ignores case.
func ParseName(s string) (Name, error) {
	trimmed := strings.TrimSpace(s)
	for _, name := range order {
		if strings.EqualFold(string(name), trimmed) {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLever, s)
}

// ParseAssignment parses a "name=value" pair as given on the command line.
func ParseAssignment(s string) (Name, float64, error) {
	key, raw, ok := strings.Cut(s, "=")
	if !ok {
		return "", 0, fmt.Errorf("expected name=value, got %q", s)
	}
	name, err := ParseName(key)
	if err != nil {
		return "", 0, err
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid value for %s: %w", name, err)
	}
	return name, value, nil
}

// SetLever clamps value into the lever's range, stores it and applies the
// coupling rule for mix levers. At most two fields change per call.
func (m *Model) SetLever(name Name, value float64) error {
	r, err := RangeFor(name)
	if err != nil {
		return err
	}
	v := mathutil.Clamp(value, r.Min, r.Max)

	switch name {
	case JobsPerDay:
		m.JobsPerDay = v
	case ZoneAMix:
		m.ZoneAMix = v
		if v+m.ZoneBMix > constants.FullMix {
			m.ZoneBMix = constants.FullMix - v
		}
	case ZoneBMix:
		m.ZoneBMix = v
		if v+m.ZoneAMix > constants.FullMix {
			m.ZoneAMix = constants.FullMix - v
		}
	case ASAPMix:
		m.ASAPMix = v
		if v+m.ExpressMix > constants.FullMix {
			m.ExpressMix = constants.FullMix - v
		}
	case ExpressMix:
		m.ExpressMix = v
		if v+m.ASAPMix > constants.FullMix {
			m.ASAPMix = constants.FullMix - v
		}
	case AvgMilesPerJob:
		m.AvgMilesPerJob = v
	case CostPerMile:
		m.CostPerMile = v
	case MonthlyFixedCosts:
		m.MonthlyFixedCosts = v
	}
	return nil
}

// Lever returns the current value of a lever.
func (m Model) Lever(name Name) (float64, error) {
	switch name {
	case JobsPerDay:
		return m.JobsPerDay, nil
	case ZoneAMix:
		return m.ZoneAMix, nil
	case ZoneBMix:
		return m.ZoneBMix, nil
	case ASAPMix:
		return m.ASAPMix, nil
	case ExpressMix:
		return m.ExpressMix, nil
	case AvgMilesPerJob:
		return m.AvgMilesPerJob, nil
	case CostPerMile:
		return m.CostPerMile, nil
	case MonthlyFixedCosts:
		return m.MonthlyFixedCosts, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownLever, name)
}

// ZoneCMix is the share of jobs not assigned to zone A or B.
func (m Model) ZoneCMix() float64 {
	return mathutil.Remainder(m.ZoneAMix, m.ZoneBMix)
}

// SameDayMix is the share of jobs with neither ASAP nor express urgency.
func (m Model) SameDayMix() float64 {
	return mathutil.Remainder(m.ASAPMix, m.ExpressMix)
}

// Normalize returns a copy with every lever clamped and both mix pairs
// brought within 100%. Levers are replayed through SetLever in display
// order, so when a pair overflows the later lever of the pair wins.
func (m Model) Normalize() Model {
	var out Model
	for _, name := range order {
		v, _ := m.Lever(name)
		_ = out.SetLever(name, v)
	}
	return out
}

// Values returns the lever values keyed by name.
func (m Model) Values() map[Name]float64 {
	out := make(map[Name]float64, len(order))
	for _, name := range order {
		out[name], _ = m.Lever(name)
	}
	return out
}
