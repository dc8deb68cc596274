package harness

import (
	"time"

	"github.com/roach88/cicverify/internal/golden"
)

// Result is the outcome of one scenario.
type Result struct {
	// Scenario is the scenario name.
	Scenario string `json:"scenario"`

	// Pass is true when no assertion failed.
	Pass bool `json:"pass"`

	// Params are the parameters discovered on the live device.
	Params golden.Params `json:"params"`

	// Expected holds the golden values for Params. Nil for pdm.
	Expected *golden.Response `json:"expected,omitempty"`

	// Samples are the accepted output transfers, in order.
	Samples []int64 `json:"samples"`

	// Driven is the number of input samples presented.
	Driven int `json:"driven"`

	// SimTime is the simulated time at which the scenario ended.
	SimTime uint64 `json:"sim_time"`

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []*AssertionError `json:"errors,omitempty"`
}

// NewResult creates a passing result for scenario.
func NewResult(scenario string) *Result {
	return &Result{
		Scenario: scenario,
		Pass:     true,
		Samples:  []int64{},
		Errors:   []*AssertionError{},
	}
}

// AddError records an assertion failure and marks the result as failed.
func (r *Result) AddError(err *AssertionError) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Failures returns the assertion messages.
func (r *Result) Failures() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Error()
	}
	return out
}
