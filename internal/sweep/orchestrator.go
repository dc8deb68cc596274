package sweep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/cicverify/internal/deps"
)

// RunIDGenerator generates sweep run identifiers.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Run identifies one sweep execution.
type Run struct {
	ID        string    `json:"id"`
	Plan      string    `json:"plan"`
	Scenario  string    `json:"scenario"`
	Backend   string    `json:"backend"`
	Jobs      int       `json:"jobs"`
	StartedAt time.Time `json:"started_at"`
}

// Recorder persists sweep runs and job results.
type Recorder interface {
	RecordRun(ctx context.Context, run Run) error
	RecordJob(ctx context.Context, runID string, res *JobResult) error
}

// JobResult is the outcome of one job. A job fails when it could not be
// built or run, or when an assertion failed.
type JobResult struct {
	Job      Job           `json:"job"`
	Pass     bool          `json:"pass"`
	Failures []string      `json:"failures,omitempty"`
	Err      string        `json:"error,omitempty"`
	Purged   []string      `json:"purged,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Orchestrator runs jobs against a Builder.
type Orchestrator struct {
	builder  Builder
	log      *zap.Logger
	recorder Recorder
	ids      RunIDGenerator
	now      func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		o.log = l
	}
}

// WithRecorder persists every run and job result through r.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		o.recorder = r
	}
}

// WithRunIDGenerator replaces the UUIDv7 run ID generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(o *Orchestrator) {
		o.ids = g
	}
}

// WithClock replaces time.Now for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New creates an orchestrator for builder.
func New(builder Builder, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		builder: builder,
		log:     zap.NewNop(),
		ids:     UUIDv7Generator{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunJob builds and tests one job. Result files of the job's scenario are
// purged from job.Dir on every exit path, including failed assertions and
// build errors.
//
// The returned JobResult is never nil. The error is non-nil whenever the job
// did not pass.
func (o *Orchestrator) RunJob(ctx context.Context, job Job) (res *JobResult, err error) {
	start := o.now()
	res = &JobResult{Job: job}
	log := o.log.With(zap.Int("job", job.Index), zap.String("combination", job.Combination.String()))

	defer func() {
		purged, perr := Purge(job.Dir, job.Scenario)
		res.Purged = purged
		if perr != nil {
			err = errors.Join(err, perr)
		}
		res.Duration = o.now().Sub(start)
		if err != nil {
			res.Pass = false
			res.Err = err.Error()
			log.Warn("job failed", zap.Error(err))
			return
		}
		log.Info("job passed", zap.Duration("duration", res.Duration))
	}()

	if err := job.Params.Validate(); err != nil {
		return res, err
	}

	var sources []string
	if job.SourceDir != "" {
		plan, err := deps.Resolve(job.SourceDir, job.Top)
		if err != nil {
			return res, err
		}
		sources = plan.Paths()
	}

	if err := o.builder.Build(ctx, BuildRequest{
		Top:      job.Top,
		Sources:  sources,
		Generics: GenericsFor(job.Params),
		Params:   job.Params,
		Dir:      job.Dir,
		Always:   true,
	}); err != nil {
		return res, fmt.Errorf("build: %w", err)
	}

	report, err := o.builder.Test(ctx, TestRequest{
		Top:        job.Top,
		Scenario:   job.Scenario,
		Params:     job.Params,
		Dir:        job.Dir,
		Input:      job.Input,
		Plusargs:   []string{WaveArg(job.Top, job.Scenario)},
		ResultFile: ResultFileName(job.Scenario, job.Params),
		MaxTime:    job.MaxTime,
	})
	if err != nil {
		return res, fmt.Errorf("test: %w", err)
	}

	res.Failures = report.Failures
	res.Pass = report.Pass
	if !report.Pass {
		return res, fmt.Errorf("%s failed for %s: %s", job.Scenario, job.Combination, strings.Join(report.Failures, "; "))
	}
	return res, nil
}

// Purge deletes the files in dir whose name starts with scenario and ends
// in ".result". Other files are left alone. A missing dir is not an error.
func Purge(dir, scenario string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("purge: %w", err)
	}
	var removed []string
	var errs []error
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, scenario) || !strings.HasSuffix(name, ".result") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, name)
	}
	return removed, errors.Join(errs...)
}

// Jobs expands plan into jobs. Sequential plans share one build directory;
// parallel plans get one directory per job.
func Jobs(plan *Plan) ([]Job, error) {
	combos, err := Expand(plan.Ranges)
	if err != nil {
		return nil, err
	}
	jobs := make([]Job, 0, len(combos))
	for i, c := range combos {
		params, err := ParamsFor(plan.Fixed, c)
		if err != nil {
			return nil, fmt.Errorf("combination %s: %w", c, err)
		}
		dir := filepath.Join(plan.OutDir, "build")
		if plan.Parallel > 1 {
			dir = filepath.Join(plan.OutDir, fmt.Sprintf("job-%04d", i))
		}
		jobs = append(jobs, Job{
			Index:       i,
			Combination: c,
			Params:      params,
			Scenario:    plan.Scenario,
			Top:         plan.Top,
			SourceDir:   plan.Workdir,
			Dir:         dir,
			Input:       plan.Input,
			MaxTime:     plan.MaxTime,
		})
	}
	return jobs, nil
}

// Sweep runs every job of plan. A failing job is recorded and the sweep
// moves on; only an invalid plan, a recorder error or cancellation stops it.
func (o *Orchestrator) Sweep(ctx context.Context, plan *Plan) (*Summary, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	jobs, err := Jobs(plan)
	if err != nil {
		return nil, err
	}

	run := Run{
		ID:        o.ids.Generate(),
		Plan:      plan.Name,
		Scenario:  plan.Scenario,
		Backend:   o.builder.Name(),
		Jobs:      len(jobs),
		StartedAt: o.now(),
	}
	log := o.log.With(zap.String("run_id", run.ID))
	log.Info("sweep starting",
		zap.String("plan", plan.Name),
		zap.String("backend", run.Backend),
		zap.Int("jobs", len(jobs)),
		zap.Int("parallel", max(plan.Parallel, 1)))

	if o.recorder != nil {
		if err := o.recorder.RecordRun(ctx, run); err != nil {
			return nil, fmt.Errorf("record run: %w", err)
		}
	}

	results := make([]*JobResult, len(jobs))
	runOne := func(ctx context.Context, i int) error {
		res, _ := o.RunJob(ctx, jobs[i])
		results[i] = res
		if o.recorder != nil {
			if err := o.recorder.RecordJob(ctx, run.ID, res); err != nil {
				return fmt.Errorf("record job %d: %w", i, err)
			}
		}
		return ctx.Err()
	}

	if plan.Parallel > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(plan.Parallel)
		for i := range jobs {
			g.Go(func() error { return runOne(gctx, i) })
		}
		err = g.Wait()
	} else {
		for i := range jobs {
			if err = runOne(ctx, i); err != nil {
				break
			}
		}
	}

	summary := NewSummary(run, results, o.now().Sub(run.StartedAt))
	log.Info("sweep finished",
		zap.Int("passed", summary.Passed),
		zap.Int("failed", len(summary.Failed)),
		zap.Duration("duration", summary.Duration))
	return summary, err
}
