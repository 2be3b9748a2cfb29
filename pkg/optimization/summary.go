// Package optimization provides shared data structures for optimization results.
package optimization

// Summary captures the result of a single target-seek run.
type Summary struct {
	Lever           string             `json:"lever"`
	Goal            string             `json:"goal"`
	Original        float64            `json:"original"`
	Value           float64            `json:"value"`
	Target          float64            `json:"target"`
	Achieved        float64            `json:"achieved"`
	Headroom        float64            `json:"headroom"`
	Iterations      int                `json:"iterations"`
	Converged       bool               `json:"converged"`
	Levers          map[string]float64 `json:"levers,omitempty"`
	Notes           []string           `json:"notes,omitempty"`
	OriginalDisplay string             `json:"originalDisplay,omitempty"`
	ValueDisplay    string             `json:"valueDisplay,omitempty"`
}

// Delta is the change in KPIs caused by moving one lever.
type Delta struct {
	Value        float64 `json:"value"`
	Revenue      float64 `json:"revenue"`
	Profit       float64 `json:"profit"`
	ProfitMargin float64 `json:"profitMargin"`
}

// Sensitivity reports the effect of moving one lever a single step in each
// direction.
type Sensitivity struct {
	Lever string  `json:"lever"`
	Value float64 `json:"value"`
	Up    Delta   `json:"up"`
	Down  Delta   `json:"down"`
}
