package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/cicverify/internal/store"
	"github.com/roach88/cicverify/internal/sweep"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database string
	Failed   bool
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "Show sweeps recorded in a database",
		Long: `List the sweep runs recorded by "cicv sweep --db", oldest first, or
report the job results of one run.

Example:
  cicv runs --db sweeps.db
  cicv runs 0192f3a4-7c1e-7b2a-9f00-1d2e3f405162 --db sweeps.db
  cicv runs 0192f3a4-7c1e-7b2a-9f00-1d2e3f405162 --db sweeps.db --failed`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database written by sweep --db")
	cmd.Flags().BoolVar(&opts.Failed, "failed", false, "report only the failed jobs of the run")

	return cmd
}

// failedJobs is the report of the failed jobs of one run.
type failedJobs struct {
	Run    sweep.Run          `json:"run"`
	Failed []*sweep.JobResult `json:"failed"`
}

func (r *failedJobs) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "run: %s\n", r.Run.ID)
	fmt.Fprintf(&b, "plan: %s (%s on %s)\n", r.Run.Plan, r.Run.Scenario, r.Run.Backend)
	fmt.Fprintf(&b, "failed: %d of %d jobs\n", len(r.Failed), r.Run.Jobs)
	for _, res := range r.Failed {
		fmt.Fprintf(&b, "  [%03d] %s (%s): %s\n", res.Job.Index, res.Job.Combination, res.Job.Params, res.Err)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeRuns(runs []sweep.Run) func(io.Writer) error {
	return func(w io.Writer) error {
		var b strings.Builder
		for _, r := range runs {
			fmt.Fprintf(&b, "%s  %s  %s (%s on %s)  %d jobs\n",
				r.ID, r.StartedAt.UTC().Format(time.RFC3339), r.Plan, r.Scenario, r.Backend, r.Jobs)
		}
		if len(runs) == 0 {
			b.WriteString("no runs recorded\n")
		}
		_, err := io.WriteString(w, b.String())
		return err
	}
}

func runRuns(opts *RunsOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	if opts.Database == "" {
		return f.Fail(ExitCommandError, ErrCodeInvalidParams, "missing --db", nil)
	}
	// Open creates missing files, so check first.
	if _, err := os.Stat(opts.Database); err != nil {
		return f.Fail(ExitCommandError, ErrCodeNotFound, "cannot read database", err)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "cannot open database", err)
	}
	defer st.Close()
	f.VerboseLog("reading runs from %s", opts.Database)

	ctx := cmd.Context()
	if len(args) == 0 {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "cannot list runs", err)
		}
		return f.Emit(runs, writeRuns(runs))
	}

	run, err := st.ReadRun(ctx, args[0])
	if errors.Is(err, store.ErrRunNotFound) {
		return f.Fail(ExitCommandError, ErrCodeNotFound, "unknown run "+args[0], err)
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "cannot read run", err)
	}

	if opts.Failed {
		failed, err := st.ReadFailures(ctx, run.ID)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "cannot read failures", err)
		}
		report := &failedJobs{Run: run, Failed: failed}
		return f.Emit(report, report.WriteText)
	}

	results, err := st.ReadJobResults(ctx, run.ID)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "cannot read job results", err)
	}
	summary := sweep.NewSummary(run, results, 0)
	return f.Emit(summary, summary.WriteText)
}
