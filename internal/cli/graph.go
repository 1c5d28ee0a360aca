package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	depgraph "github.com/gburgyan/go-depgraph"
)

func newGraphCommand(a *app) *cobra.Command {
	var dot bool
	cmd := &cobra.Command{
		Use:   "graph [files...]",
		Short: "Print the resolved graph",
		Long: `graph prints every scope with the producer chosen for each dependency,
followed by any diagnostics. With --dot the graph is written in Graphviz DOT
format instead. Problems do not change the exit status.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.compile(cmd.Context(), args, depgraph.ModeInteractive)
			if err != nil {
				return err
			}
			if dot {
				return depgraph.WriteDOT(g, cmd.OutOrStdout())
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), g.Status())
			return err
		},
	}
	cmd.Flags().BoolVar(&dot, "dot", false, "write Graphviz DOT")
	return cmd
}

func newRelevantCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "relevant [files...]",
		Short: "List the types whose changes invalidate the graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.compile(cmd.Context(), args, depgraph.ModeInteractive)
			if err != nil {
				return err
			}
			for _, name := range depgraph.NewInvalidator(g).RelevantTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
