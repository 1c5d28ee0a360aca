package depgraph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gburgyan/go-timing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/gburgyan/go-depgraph/ast"
)

// Compiler turns a project snapshot into a ResolvedGraph. A Compiler holds no
// state between runs and may be used from several goroutines.
type Compiler struct {
	logger *zap.Logger
	mode   Mode
	timing TimingMode
	tracer trace.Tracer
}

// NewCompiler returns a compiler configured by opts. Without options it runs in
// ModeBatch with timing disabled and logging discarded.
func NewCompiler(opts ...Option) *Compiler {
	c := defaultCompiler()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mode returns the mode the compiler runs in.
func (c *Compiler) Mode() Mode {
	return c.mode
}

// Compile extracts and resolves the project.
//
// In ModeBatch the first malformed declaration aborts the run and is returned
// as a *CompilerError with a nil graph. Otherwise the graph is always returned,
// and in ModeBatch the error joins every resolution diagnostic. In
// ModeInteractive the error is always nil and diagnostics are only in the graph.
func (c *Compiler) Compile(ctx context.Context, project ast.Project) (*ResolvedGraph, error) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "depgraph.Compile",
		trace.WithAttributes(attribute.String("mode", c.mode.String())))
	defer span.End()

	var root *timing.Context
	if c.timing == TimingPhases {
		root = timing.Root(ctx)
		ctx = root
	}

	_, extracted := c.phase(ctx, "extract")
	scopes, err := buildScopes(project, c.mode == ModeBatch)
	extracted()
	if err != nil {
		var ce *CompilerError
		if errors.As(err, &ce) {
			recordDiagnostics([]*CompilerError{ce})
		}
		compilationsTotal.WithLabelValues(c.mode.String(), "fatal").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		c.logger.Info("extraction failed", zap.Error(err))
		return nil, err
	}
	c.logger.Debug("scopes extracted", zap.Int("scopes", len(scopes.Scopes)), zap.Int("errors", len(scopes.Errors)))

	_, resolved := c.phase(ctx, "resolve")
	g := Resolve(scopes)
	resolved()

	if root != nil {
		g.Timing = fmt.Sprint(root)
		c.logger.Debug("compile timing", zap.String("timing", g.Timing))
	}

	compileDuration.WithLabelValues(c.mode.String()).Observe(time.Since(start).Seconds())
	recordDiagnostics(g.Errors)
	span.SetAttributes(
		attribute.Int("scopes", len(g.Scopes)),
		attribute.Int("diagnostics", len(g.Errors)),
	)

	if g.Valid() {
		compilationsTotal.WithLabelValues(c.mode.String(), "valid").Inc()
		c.logger.Debug("graph resolved", zap.Int("scopes", len(g.Scopes)))
	} else {
		compilationsTotal.WithLabelValues(c.mode.String(), "invalid").Inc()
		span.SetStatus(codes.Error, "graph has diagnostics")
		for _, e := range g.Errors {
			c.logger.Debug("diagnostic",
				zap.String("reason", reasonLabel(e.Reason)),
				zap.Strings("elements", elementNames(e.Elements)),
				zap.Error(e))
		}
	}

	if c.mode == ModeInteractive {
		return g, nil
	}
	return g, g.Err()
}

func (c *Compiler) phase(ctx context.Context, name string) (context.Context, func()) {
	if c.timing != TimingPhases {
		return ctx, func() {}
	}
	phaseCtx, complete := timing.Start(ctx, name)
	return phaseCtx, complete
}
