package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/cicverify/internal/sweep"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("store: run not found")

// ReadRun returns the run with the given ID.
func (s *Store) ReadRun(ctx context.Context, id string) (sweep.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, plan, scenario, backend, jobs, started_at
		FROM sweep_runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return sweep.Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// ListRuns returns every recorded run, oldest first.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context) ([]sweep.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, plan, scenario, backend, jobs, started_at
		FROM sweep_runs
		ORDER BY started_at ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []sweep.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadJobResults returns every job result of a run in job order.
//
// Returns an empty slice (not nil) if the run has no results.
func (s *Store) ReadJobResults(ctx context.Context, runID string) ([]*sweep.JobResult, error) {
	return s.readJobs(ctx, `
		SELECT job, pass, failures, error, purged, duration_ns
		FROM job_results
		WHERE run_id = ?
		ORDER BY job_index ASC
	`, runID)
}

// ReadFailures returns the failed job results of a run in job order.
func (s *Store) ReadFailures(ctx context.Context, runID string) ([]*sweep.JobResult, error) {
	return s.readJobs(ctx, `
		SELECT job, pass, failures, error, purged, duration_ns
		FROM job_results
		WHERE run_id = ? AND pass = 0
		ORDER BY job_index ASC
	`, runID)
}

func (s *Store) readJobs(ctx context.Context, query string, runID string) ([]*sweep.JobResult, error) {
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query job results: %w", err)
	}
	defer rows.Close()

	results := []*sweep.JobResult{}
	for rows.Next() {
		res, err := scanJobResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job results: %w", err)
	}
	return results, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (sweep.Run, error) {
	var run sweep.Run
	var started string
	if err := row.Scan(&run.ID, &run.Plan, &run.Scenario, &run.Backend, &run.Jobs, &started); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sweep.Run{}, err
		}
		return sweep.Run{}, fmt.Errorf("scan run: %w", err)
	}
	t, err := parseTime(started)
	if err != nil {
		return sweep.Run{}, err
	}
	run.StartedAt = t
	return run, nil
}

func scanJobResult(row scanner) (*sweep.JobResult, error) {
	var (
		jobText, failures, purged string
		res                       sweep.JobResult
		durationNS                int64
	)
	if err := row.Scan(&jobText, &res.Pass, &failures, &res.Err, &purged, &durationNS); err != nil {
		return nil, fmt.Errorf("scan job result: %w", err)
	}

	job, err := unmarshalJob(jobText)
	if err != nil {
		return nil, err
	}
	res.Job = job
	if res.Failures, err = unmarshalStrings("failures", failures); err != nil {
		return nil, err
	}
	if res.Purged, err = unmarshalStrings("purged", purged); err != nil {
		return nil, err
	}
	res.Duration = time.Duration(durationNS)
	return &res, nil
}
