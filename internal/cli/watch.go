package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	depgraph "github.com/gburgyan/go-depgraph"
	"github.com/gburgyan/go-depgraph/ast"
	"github.com/gburgyan/go-depgraph/declfile"
	"github.com/gburgyan/go-depgraph/internal/watcher"
)

func newWatchCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [files...]",
		Short: "Keep the graph up to date while the declarations are edited",
		Long: `watch resolves the declarations and prints every state change of the
graph. A saved file only triggers a new resolution when it declares a class the
graph depends on, declares a scope, or the graph is not currently valid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := a.declarations(args)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, cmd.OutOrStdout(), files)
		},
	}
	cmd.Flags().String("metrics-addr", "", "serve prometheus metrics on this address")
	cmd.Flags().Duration("debounce", 0, "wait this long after the last change before refreshing")
	_ = a.v.BindPFlag("metrics.addr", cmd.Flags().Lookup("metrics-addr"))
	_ = a.v.BindPFlag("watch.debounce", cmd.Flags().Lookup("debounce"))
	return cmd
}

func (a *app) watch(ctx context.Context, out io.Writer, files []string) error {
	source := declfile.NewSource(files...)
	m := depgraph.NewManager(source, a.options()...)
	defer m.Close()

	remove := m.AddListener(depgraph.ListenerFunc(func(s depgraph.GraphState) {
		printState(out, s)
	}))
	defer remove()

	wcfg := watcher.DefaultConfig(files...)
	wcfg.DebounceDur = a.cfg.Watch.Debounce
	wcfg.Logger = a.logger
	w, err := watcher.New(wcfg)
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()
	changes, err := w.Start()
	if err != nil {
		return err
	}

	if a.cfg.Metrics.Addr != "" {
		srv := a.serveMetrics(a.cfg.Metrics.Addr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	m.Refresh()
	for {
		select {
		case <-ctx.Done():
			return nil
		case changed := <-changes:
			a.onChanged(m, source, changed)
		}
	}
}

func (a *app) onChanged(m *depgraph.Manager, source *declfile.Source, files []string) {
	elements, force := changedElements(source.Last(), files)
	if force {
		a.logger.Debug("refreshing", zap.Strings("files", files))
		m.Refresh()
		return
	}
	if !m.NotifyChanged(elements...) {
		a.logger.Info("change does not affect the graph", zap.Strings("files", files))
	}
}

// changedElements returns the classes declared by the changed files, both as
// they were in the last successful snapshot and as they are now. force is set
// when a file can no longer be read or now declares a scope, since neither
// case can be judged against the current graph.
func changedElements(last *ast.Universe, files []string) (elements []ast.Element, force bool) {
	for _, f := range files {
		if last != nil {
			for _, c := range last.ClassesInFile(f) {
				elements = append(elements, c)
			}
		}

		specs, err := declfile.ParseFile(f)
		if err != nil {
			force = true
			continue
		}
		current := ast.NewUniverse()
		if err := current.Add(specs...); err != nil {
			force = true
			continue
		}
		for _, c := range current.Classes() {
			if c.HasMarker(ast.MarkerScope) {
				force = true
			}
			elements = append(elements, c)
		}
	}
	return elements, force
}

func printState(out io.Writer, s depgraph.GraphState) {
	switch s.Status {
	case depgraph.StatusValid:
		fmt.Fprintf(out, "%s: %d scope(s)\n", s.Status, len(s.Graph.Scopes))
	case depgraph.StatusError:
		fmt.Fprintf(out, "%s: %d problem(s)\n", s.Status, len(s.Graph.Errors))
		for _, e := range s.Graph.Errors {
			fmt.Fprintf(out, "  %s\n", e.Error())
		}
	default:
		fmt.Fprintln(out, s.Status)
	}
}

func (a *app) serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics endpoint failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
	a.logger.Info("serving metrics", zap.String("addr", addr))
	return srv
}
