package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/cicverify/internal/dutmodel"
	"github.com/roach88/cicverify/internal/engine"
	"github.com/roach88/cicverify/internal/harness"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Scenario harness.Scenario
	File     string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "Run one scenario against the behavioral model",
		Long: `Run one verification scenario (impulse, step or pdm) in-process against
the behavioral CIC decimator model built with the given parameters.

The scenario is either named on the command line with parameter flags or
loaded from a YAML file with --file.

Example:
  cicv run impulse --order 3 --delay 1 --ratio 4
  cicv run pdm --input stimulus.csv --output decimated.csv
  cicv run --file scenarios/impulse.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, args, cmd)
		},
	}

	addParamFlags(cmd, &opts.Scenario.Params)
	cmd.Flags().StringVar(&opts.Scenario.Input, "input", "", "stimulus CSV for the pdm scenario")
	cmd.Flags().StringVar(&opts.Scenario.Output, "output", "", "write pdm output samples to this CSV")
	cmd.Flags().Uint64Var(&opts.Scenario.MaxTime, "max-time", 0, "simulated time budget (0 keeps the default)")
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "load the scenario from a YAML file")

	return cmd
}

func runScenario(opts *RunOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	log := opts.logger()

	sc := &opts.Scenario
	switch {
	case opts.File != "" && len(args) > 0:
		return f.Fail(ExitCommandError, ErrCodeInvalidParams, "give either a scenario name or --file", nil)
	case opts.File != "":
		loaded, err := harness.LoadScenario(opts.File)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeLoadFailed, "cannot load scenario", err)
		}
		sc = loaded
	case len(args) == 1:
		sc.Name = args[0]
	default:
		return f.Fail(ExitCommandError, ErrCodeInvalidParams, "missing scenario name", nil)
	}

	dev, err := dutmodel.New(sc.Params, dutmodel.WithLogger(log))
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidParams, "cannot build model", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f.VerboseLog("running %s on %s", sc.Name, sc.Params.WithDefaults())
	res, err := harness.Run(ctx, sc, dev, harness.WithLogger(log))
	if err != nil {
		var re *engine.RuntimeError
		if errors.As(err, &re) && !errors.Is(err, context.Canceled) {
			return f.Fail(ExitFailure, ErrCodeSimulation, "scenario aborted", err)
		}
		return f.Fail(ExitCommandError, ErrCodeGeneric, "cannot run scenario", err)
	}
	log.Info("scenario finished",
		zap.String("scenario", res.Scenario),
		zap.Bool("pass", res.Pass),
		zap.Int("samples", len(res.Samples)),
		zap.Duration("elapsed", res.Elapsed))

	if err := f.Emit(res, func(w io.Writer) error {
		_, err := w.Write(harness.Snapshot(res))
		return err
	}); err != nil {
		return err
	}
	if !res.Pass {
		return NewExitError(ExitFailure, "scenario "+res.Scenario+" failed")
	}
	return nil
}
