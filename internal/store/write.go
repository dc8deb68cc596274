package store

import (
	"context"
	"fmt"

	"github.com/roach88/cicverify/internal/sweep"
)

var _ sweep.Recorder = (*Store)(nil)

// RecordRun inserts a sweep run.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) RecordRun(ctx context.Context, run sweep.Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sweep_runs
		(id, plan, scenario, backend, jobs, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Plan,
		run.Scenario,
		run.Backend,
		run.Jobs,
		formatTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// RecordJob inserts the result of one job of run runID. The job is stored
// as JSON, so everything it was expanded into reads back unchanged.
//
// Note: The run must have been recorded first (foreign key constraint).
// Note: A second result for the same job index is silently ignored.
func (s *Store) RecordJob(ctx context.Context, runID string, res *sweep.JobResult) error {
	job, err := marshalText("job", res.Job)
	if err != nil {
		return fmt.Errorf("record job: %w", err)
	}
	failures, err := marshalStrings("failures", res.Failures)
	if err != nil {
		return fmt.Errorf("record job: %w", err)
	}
	purged, err := marshalStrings("purged", res.Purged)
	if err != nil {
		return fmt.Errorf("record job: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO job_results
		(run_id, job_index, combination, job, pass, failures, error, purged, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		runID,
		res.Job.Index,
		res.Job.Combination.String(),
		job,
		res.Pass,
		failures,
		res.Err,
		purged,
		int64(res.Duration),
	)
	if err != nil {
		return fmt.Errorf("record job: %w", err)
	}
	return nil
}
