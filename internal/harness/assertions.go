package harness

import (
	"fmt"

	"github.com/roach88/cicverify/internal/golden"
)

// NoIndex marks an assertion that is not about a single sample.
const NoIndex = -1

// AssertionError is one divergence between observed and expected behavior.
type AssertionError struct {
	Scenario string `json:"scenario"`
	Check    string `json:"check"`
	Index    int    `json:"index"`
	Expected int64  `json:"expected"`
	Actual   int64  `json:"actual"`
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	if e.Index == NoIndex {
		return fmt.Sprintf("%s: %s: expected %d, got %d", e.Scenario, e.Check, e.Expected, e.Actual)
	}
	return fmt.Sprintf("%s: %s at sample %d: expected %d, got %d", e.Scenario, e.Check, e.Index, e.Expected, e.Actual)
}

// firstNonZero returns the index of the excitation's first response sample.
func firstNonZero(samples []int64) int {
	for i, v := range samples {
		if v != 0 {
			return i
		}
	}
	return NoIndex
}

// checkSample compares samples[i] with want. A missing sample is reported
// with the sample count as the actual value.
func checkSample(r *Result, check string, samples []int64, i int, want int64) {
	if i < 0 || i >= len(samples) {
		r.AddError(&AssertionError{Scenario: r.Scenario, Check: check + " (missing)", Index: i, Expected: want, Actual: int64(len(samples))})
		return
	}
	if samples[i] != want {
		r.AddError(&AssertionError{Scenario: r.Scenario, Check: check, Index: i, Expected: want, Actual: samples[i]})
	}
}

// checkDeclared reports declared generics the live device disagrees with.
func checkDeclared(r *Result, declared, live golden.Params) {
	pairs := []struct {
		name       string
		want, have int
	}{
		{"order", declared.Order, live.Order},
		{"tap delay", declared.TapDelay, live.TapDelay},
		{"decimation ratio", declared.Ratio, live.Ratio},
	}
	for _, p := range pairs {
		if p.want != p.have {
			r.AddError(&AssertionError{Scenario: r.Scenario, Check: p.name, Index: NoIndex, Expected: int64(p.want), Actual: int64(p.have)})
		}
	}
}

func checkImpulse(r *Result, want *golden.Response) {
	e := firstNonZero(r.Samples)
	if e == NoIndex {
		r.AddError(&AssertionError{Scenario: r.Scenario, Check: "impulse never observed", Index: NoIndex, Expected: 1, Actual: 0})
		return
	}
	checkSample(r, "unit sample", r.Samples, e, 1)
	checkSample(r, "impulse response", r.Samples, e+1, want.Impulse)
}

func checkStep(r *Result, want *golden.Response) {
	e := firstNonZero(r.Samples)
	if e == NoIndex {
		r.AddError(&AssertionError{Scenario: r.Scenario, Check: "step never observed", Index: NoIndex, Expected: 1, Actual: 0})
		return
	}
	checkSample(r, "near-origin step", r.Samples, e+1, want.StepNearOrigin)
	checkSample(r, "final step", r.Samples, len(r.Samples)-1, want.StepFinal)
}
