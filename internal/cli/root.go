// Package cli implements the depgraph command.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	depgraph "github.com/gburgyan/go-depgraph"
	"github.com/gburgyan/go-depgraph/internal/config"
)

var version = "dev"

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
}

// app carries the state shared by the subcommands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string

	cfg      config.Config
	logger   *zap.Logger
	tracer   trace.Tracer
	shutdown func(context.Context) error
}

// NewRootCommand builds the command tree. Each call gets its own viper
// instance, so commands can be built and executed repeatedly in tests.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "depgraph",
		Short: "Checks dependency-injection scope declarations",
		Long: `depgraph reads scope declarations from YAML files, resolves every
dependency against the scope hierarchy and reports duplicate bindings,
unsatisfied dependencies and dependency cycles.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "",
		fmt.Sprintf("config file (default: ./%s if present)", config.DefaultFile))
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-format", "", "log format: console or json")
	flags.Bool("timing", false, "record and log phase timings")
	flags.Bool("trace", false, "print otel spans to stderr")

	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = a.v.BindPFlag("timing", flags.Lookup("timing"))
	_ = a.v.BindPFlag("trace.enabled", flags.Lookup("trace"))

	root.AddCommand(
		newCheckCommand(a),
		newGraphCommand(a),
		newRelevantCommand(a),
		newWatchCommand(a),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	a.logger = logger

	tracer, shutdown, err := newTracer(cfg.Trace, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.tracer = tracer
	a.shutdown = shutdown

	a.logger.Debug("configuration loaded",
		zap.String("config", a.v.ConfigFileUsed()),
		zap.Strings("declarations", cfg.Declarations),
		zap.Bool("timing", cfg.Timing))
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	var err error
	if a.shutdown != nil {
		err = a.shutdown(ctx)
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return err
}

// options returns the compiler options implied by the configuration.
func (a *app) options() []depgraph.Option {
	opts := []depgraph.Option{
		depgraph.WithLogger(a.logger),
		depgraph.WithTracer(a.tracer),
	}
	if a.cfg.Timing {
		opts = append(opts, depgraph.WithTiming(depgraph.TimingPhases))
	}
	return opts
}

// declarations returns the files named on the command line, or the configured
// declaration patterns when there are none.
func (a *app) declarations(args []string) ([]string, error) {
	patterns := args
	if len(patterns) == 0 {
		patterns = a.cfg.Declarations
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no declaration files given and none configured")
	}
	return config.ExpandDeclarations(patterns)
}
