package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/cicverify/internal/golden"
)

// GoldenOptions holds flags for the golden command.
type GoldenOptions struct {
	*RootOptions
	Params golden.Params
}

// NewGoldenCommand creates the golden command.
func NewGoldenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GoldenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "golden",
		Short: "Print closed-form golden values",
		Long: `Print the golden responses of a CIC decimator: the impulse response one
decimated sample after the unit sample, the step response near the origin,
the steady-state step value and the output width.

Example:
  cicv golden --order 3 --delay 1 --ratio 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGolden(opts, cmd)
		},
	}

	addParamFlags(cmd, &opts.Params)
	return cmd
}

// addParamFlags binds the filter parameter flags to p, defaulting to the
// M=3 N=1 R=4 reference filter.
func addParamFlags(cmd *cobra.Command, p *golden.Params) {
	cmd.Flags().IntVarP(&p.Order, "order", "m", 3, "number of integrator and comb stages (M)")
	cmd.Flags().IntVarP(&p.TapDelay, "delay", "n", 1, "comb differential delay (N)")
	cmd.Flags().IntVarP(&p.Ratio, "ratio", "r", 4, "decimation ratio (R)")
	cmd.Flags().BoolVar(&p.Compensate, "compensate", false, "enable the compensation FIR")
}

func runGolden(opts *GoldenOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	resp, err := golden.Compute(opts.Params.WithDefaults())
	switch {
	case errors.Is(err, golden.ErrInvalidParams), errors.Is(err, golden.ErrOverflow):
		return f.Fail(ExitCommandError, ErrCodeInvalidParams, "cannot compute golden values", err)
	case err != nil:
		return f.Fail(ExitCommandError, ErrCodeGeneric, "cannot compute golden values", err)
	}

	return f.Emit(resp, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "params: %s\nimpulse: %d\nstep near origin: %d\nstep final: %d\noutput width: %d\n",
			resp.Params, resp.Impulse, resp.StepNearOrigin, resp.StepFinal, resp.OutputWidth)
		return err
	})
}
