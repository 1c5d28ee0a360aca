package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	depgraph "github.com/gburgyan/go-depgraph"
	"github.com/gburgyan/go-depgraph/declfile"
)

// errProblems is returned by check when the graph has diagnostics. The
// diagnostics themselves have already been printed.
var errProblems = errors.New("declarations have problems")

func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check [files...]",
		Short: "Resolve the declarations and report every problem",
		Long: `check resolves the declarations in batch mode. A malformed declaration
stops the run; otherwise every duplicate binding, unsatisfied dependency and
cycle is printed. The exit status is non-zero if anything was reported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, args)
		},
	}
}

func (a *app) runCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	g, err := a.compile(cmd.Context(), args, depgraph.ModeBatch)
	if g == nil {
		return err
	}

	for _, e := range g.Errors {
		fmt.Fprintln(out, e.Error())
	}
	if g.Timing != "" {
		fmt.Fprintln(out, g.Timing)
	}
	if err != nil {
		fmt.Fprintf(out, "%d problem(s) in %d scope(s)\n", len(g.Errors), len(g.Scopes))
		return errProblems
	}
	fmt.Fprintf(out, "ok: %d scope(s)\n", len(g.Scopes))
	return nil
}

// compile loads the declaration files and compiles them in the given mode.
func (a *app) compile(ctx context.Context, args []string, mode depgraph.Mode) (*depgraph.ResolvedGraph, error) {
	files, err := a.declarations(args)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	project, err := declfile.Load(files...)
	if err != nil {
		return nil, err
	}

	c := depgraph.NewCompiler(append(a.options(), depgraph.WithMode(mode))...)
	return c.Compile(ctx, project)
}
