package sweep

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Summary aggregates the job results of one sweep. Results are in job
// order; a job cancelled before it started has no entry.
type Summary struct {
	Run      Run           `json:"run"`
	Total    int           `json:"total"`
	Passed   int           `json:"passed"`
	Failed   []*JobResult  `json:"failed,omitempty"`
	Results  []*JobResult  `json:"results"`
	Duration time.Duration `json:"duration"`
}

// NewSummary aggregates results of run, taking d as the sweep duration.
// Nil results are skipped.
func NewSummary(run Run, results []*JobResult, d time.Duration) *Summary {
	s := &Summary{Run: run, Total: run.Jobs, Duration: d}
	for _, r := range results {
		if r == nil {
			continue
		}
		s.Results = append(s.Results, r)
		if r.Pass {
			s.Passed++
		} else {
			s.Failed = append(s.Failed, r)
		}
	}
	return s
}

// OK reports whether every job ran and passed.
func (s *Summary) OK() bool {
	return len(s.Failed) == 0 && s.Passed == s.Total
}

// WriteText writes a human-readable report. Durations are omitted so the
// report is stable across runs.
func (s *Summary) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "run: %s\n", s.Run.ID)
	fmt.Fprintf(&b, "plan: %s (%s on %s)\n", s.Run.Plan, s.Run.Scenario, s.Run.Backend)
	fmt.Fprintf(&b, "jobs: %d passed, %d failed, %d total\n", s.Passed, len(s.Failed), s.Total)
	for _, r := range s.Results {
		status := "PASS"
		if !r.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "  [%03d] %s %s (%s)\n", r.Job.Index, status, r.Job.Combination, r.Job.Params)
	}
	if len(s.Failed) > 0 {
		b.WriteString("failures:\n")
		for _, r := range s.Failed {
			fmt.Fprintf(&b, "  [%03d] %s\n", r.Job.Index, r.Err)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
