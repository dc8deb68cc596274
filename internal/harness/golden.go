package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders the deterministic part of a result: everything except
// wall-clock time.
func Snapshot(r *Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", r.Scenario)
	fmt.Fprintf(&b, "params: %s\n", r.Params)
	if r.Expected != nil {
		fmt.Fprintf(&b, "expected: impulse=%d step_near=%d step_final=%d\n",
			r.Expected.Impulse, r.Expected.StepNearOrigin, r.Expected.StepFinal)
	}
	fmt.Fprintf(&b, "driven: %d\n", r.Driven)
	fmt.Fprintf(&b, "sim_time: %d\n", r.SimTime)
	b.WriteString("samples:")
	for _, v := range r.Samples {
		fmt.Fprintf(&b, " %d", v)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "pass: %t\n", r.Pass)
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "error: %s\n", e)
	}
	return []byte(b.String())
}

// AssertGolden compares the snapshot of result against
// testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Snapshot(result))
}
