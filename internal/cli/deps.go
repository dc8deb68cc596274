package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/cicverify/internal/deps"
)

// DepsOptions holds flags for the deps command.
type DepsOptions struct {
	*RootOptions
	Workdir string
}

// NewDepsCommand creates the deps command.
func NewDepsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DepsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "deps <top>",
		Short: "Resolve the build order of a top module",
		Long: `Scan the declaration of <top> for package and module references and list
the source files in build order: packages, then modules, then the top.

Example:
  cicv deps cic_decimator --workdir ./hdl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Workdir, "workdir", "w", ".", "directory holding the design sources")
	return cmd
}

func runDeps(opts *DepsOptions, top string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	log := opts.logger()

	f.VerboseLog("resolving %s in %s", top, opts.Workdir)
	plan, err := deps.Resolve(opts.Workdir, top)
	if errors.Is(err, deps.ErrDeclarationNotFound) {
		return f.Fail(ExitCommandError, ErrCodeNotFound, "cannot resolve "+top, err)
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "cannot resolve "+top, err)
	}
	log.Debug("dependencies resolved",
		zap.String("top", top),
		zap.Strings("packages", plan.Deps.Packages),
		zap.Strings("modules", plan.Deps.Modules),
		zap.Int("sources", len(plan.Sources)))

	return f.Emit(plan, plan.WriteReport)
}
