// Package tutorial holds the fixed sequence of steps that guide a user
// through modelling a business strategy.
package tutorial

import (
	"errors"
	"fmt"
)

// ErrStepOutOfRange is returned when a step index is outside the step list.
var ErrStepOutOfRange = errors.New("step index out of range")

// Step is one entry of the tutorial.
type Step struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

var steps = []Step{
	{
		Title:       "1. Define the Problem & Strategy",
		Description: "Clearly articulate the problem you are trying to solve and the specific strategy you want to test. What is the core question your simulation should answer?",
	},
	{
		Title:       "2. Identify Key Variables",
		Description: "Brainstorm all the factors and variables that could influence the outcome of your strategy. Think about resources, market conditions, customer behavior, etc.",
	},
	{
		Title:       "3. Map Causal Relationships (Causal Loop Diagram)",
		Description: "Visualize how the key variables influence each other. Identify feedback loops (reinforcing and balancing) that drive the system's behavior over time.",
	},
	{
		Title:       "4. Create Stocks and Flows Diagram",
		Description: `Convert your conceptual map into a more formal structure. Identify "stocks" (accumulations, like "Customers" or "Cash") and "flows" (rates of change, like "Customer Acquisition Rate" or "Revenue").`,
	},
	{
		Title:       "5. Formulate Equations & Quantify",
		Description: "Define the mathematical relationships between the stocks, flows, and variables. Use data, research, and expert estimates to assign initial values and formulas.",
	},
	{
		Title:       "6. Build & Run the Simulation",
		Description: "Use simulation software or code to build the model based on your diagrams and equations. Run the simulation to see how the system behaves over time.",
	},
	{
		Title:       "7. Analyze Results & Test Scenarios",
		Description: "Analyze the output of the simulation. Does it behave as expected? Test different scenarios by changing assumptions and variable values (sensitivity analysis) to see how it impacts the outcome of your strategy.",
	},
}

// Steps returns a copy of the ordered step list.
func Steps() []Step {
	return append([]Step(nil), steps...)
}

// Count returns the number of steps.
func Count() int {
	return len(steps)
}

// Lookup returns the step at a zero-based index.
func Lookup(index int) (Step, error) {
	if index < 0 || index >= len(steps) {
		return Step{}, fmt.Errorf("%w: %d (have %d steps)", ErrStepOutOfRange, index, len(steps))
	}
	return steps[index], nil
}
