package depgraph

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Mode selects how the compiler treats malformed declarations.
type Mode int

const (
	// ModeBatch stops at the first extraction error. Resolution errors are still
	// collected and returned together.
	ModeBatch Mode = iota

	// ModeInteractive never fails. Every problem, extraction errors included, is
	// recorded in the resolved graph so an editor can show as much as possible.
	ModeInteractive
)

func (m Mode) String() string {
	switch m {
	case ModeBatch:
		return "batch"
	case ModeInteractive:
		return "interactive"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

type TimingMode int

const (
	// TimingDisable turns phase timing off.
	TimingDisable TimingMode = iota

	// TimingPhases records how long discovery, extraction and resolution take.
	// The report is stored in ResolvedGraph.Timing and logged at debug level.
	TimingPhases
)

// Option is a functional option for configuring a Compiler or a Manager.
type Option func(*Compiler)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMode selects batch or interactive handling of extraction errors.
func WithMode(mode Mode) Option {
	return func(c *Compiler) {
		c.mode = mode
	}
}

// WithTiming enables phase timing.
func WithTiming(mode TimingMode) Option {
	return func(c *Compiler) {
		c.timing = mode
	}
}

// WithTracer sets the tracer used for compilation spans. By default the global
// otel tracer provider is used.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Compiler) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

func defaultCompiler() *Compiler {
	return &Compiler{
		logger: zap.NewNop(),
		mode:   ModeBatch,
		timing: TimingDisable,
		tracer: otel.Tracer("github.com/gburgyan/go-depgraph"),
	}
}
