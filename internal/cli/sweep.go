package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/cicverify/internal/store"
	"github.com/roach88/cicverify/internal/sweep"
)

// SweepOptions holds flags for the sweep command.
type SweepOptions struct {
	*RootOptions
	Backend  string
	Database string
	Parallel int
	NVC      string
	Plugin   string

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to sweep.UUIDv7Generator.
	RunIDs sweep.RunIDGenerator
}

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	return newSweepCommand(&SweepOptions{RootOptions: rootOpts})
}

func newSweepCommand(opts *SweepOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep <plan>",
		Short: "Build and test every parameter combination of a plan",
		Long: `Expand the ranges of a sweep plan (.yaml or .cue) into parameter
combinations, then build and test each one. Failing combinations are
reported and the sweep continues.

Exit status is 1 if any combination failed and 2 on command errors.

Example:
  cicv sweep plans/orders.yaml
  cicv sweep plans/grid.cue --backend nvc --db sweeps.db --parallel 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Backend, "backend", "model", "build backend (model|nvc)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record results in this SQLite database")
	cmd.Flags().IntVarP(&opts.Parallel, "parallel", "p", 0, "concurrent jobs (overrides the plan)")
	cmd.Flags().StringVar(&opts.NVC, "nvc", "nvc", "nvc executable for the nvc backend")
	cmd.Flags().StringVar(&opts.Plugin, "vhpi-plugin", "", "cocotb VHPI library for the nvc backend")

	return cmd
}

func (o *SweepOptions) builder() (sweep.Builder, error) {
	switch o.Backend {
	case "model":
		return sweep.NewModelBuilder(o.logger()), nil
	case "nvc":
		return &sweep.NVC{Binary: o.NVC, VHPIPlugin: o.Plugin, Log: o.logger()}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q: must be model or nvc", o.Backend)
	}
}

func runSweep(opts *SweepOptions, planPath string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	plan, err := sweep.LoadPlan(planPath)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeLoadFailed, "cannot load plan", err)
	}
	if cmd.Flags().Changed("parallel") {
		plan.Parallel = opts.Parallel
	}
	f.VerboseLog("loaded plan %s: scenario %s, %d ranges, parallel %d", plan.Name, plan.Scenario, len(plan.Ranges), plan.Parallel)

	builder, err := opts.builder()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidParams, "cannot select backend", err)
	}

	sweepOpts := []sweep.Option{sweep.WithLogger(opts.logger())}
	if opts.RunIDs != nil {
		sweepOpts = append(sweepOpts, sweep.WithRunIDGenerator(opts.RunIDs))
	}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "cannot open database", err)
		}
		defer st.Close()
		sweepOpts = append(sweepOpts, sweep.WithRecorder(st))
		f.VerboseLog("recording results in %s", opts.Database)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f.VerboseLog("sweeping with the %s backend", opts.Backend)
	summary, err := sweep.New(builder, sweepOpts...).Sweep(ctx, plan)
	switch {
	case errors.Is(err, sweep.ErrInvalidPlan), errors.Is(err, sweep.ErrInvalidRange):
		return f.Fail(ExitCommandError, ErrCodeInvalidParams, "invalid plan", err)
	case errors.Is(err, context.Canceled):
		return f.Fail(ExitCommandError, ErrCodeGeneric, "sweep interrupted", err)
	case err != nil:
		return f.Fail(ExitCommandError, ErrCodeGeneric, "sweep failed", err)
	}

	if err := f.Emit(summary, summary.WriteText); err != nil {
		return err
	}
	if !summary.OK() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d combinations failed", len(summary.Failed), summary.Total))
	}
	return nil
}
