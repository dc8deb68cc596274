package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/cicverify/internal/golden"
	"github.com/roach88/cicverify/internal/sweep"
	"github.com/roach88/cicverify/internal/testutil"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with minimal required fields.
func createTestRun(id string, started time.Time) sweep.Run {
	return sweep.Run{
		ID:        id,
		Plan:      "orders",
		Scenario:  "impulse",
		Backend:   "model",
		Jobs:      3,
		StartedAt: started,
	}
}

// createTestJobResult creates a result for job index i at order i+1.
func createTestJobResult(i int, pass bool) *sweep.JobResult {
	res := &sweep.JobResult{
		Job: sweep.Job{
			Index:       i,
			Combination: sweep.Combination{{Name: sweep.GenericOrder, Value: i + 1}},
			Params:      golden.Params{Order: i + 1, TapDelay: 1, Ratio: 4, InputWidth: 1, OutputWidth: 2 + 2*(i+1)},
			Scenario:    "impulse",
			Top:         "cic_decimator",
			Dir:         "build",
		},
		Pass:     pass,
		Purged:   []string{"impulse_M1_N1_R4.result"},
		Duration: 1500 * time.Millisecond,
	}
	if !pass {
		res.Failures = []string{`impulse: impulse response at sample 1: expected 12, got 11 <"x">`}
		res.Err = "impulse failed"
	}
	return res
}

var testEpoch = testutil.Epoch

var sweepFixed = golden.Params{TapDelay: 1, Ratio: 4}
