package depgraph

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// run is the manager's single worker. It resolves the newest generation each
// time it is woken and publishes the result unless a newer refresh has been
// requested in the meantime.
func (m *Manager) run() {
	defer close(m.done)
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.requests:
		}

		m.publishMu.Lock()
		gen := m.generation
		done := gen == m.published
		m.publishMu.Unlock()
		if done {
			// The request was raised by a refresh whose result is already out.
			continue
		}

		g := m.resolve(gen)

		m.publishMu.Lock()
		switch {
		case m.closed:
		case gen != m.generation:
			m.logger.Debug("dropping superseded graph", zap.String("generation", gen))
		default:
			status := StatusValid
			if !g.Valid() {
				status = StatusError
			}
			m.publish(GraphState{
				Status:      status,
				Graph:       g,
				Invalidator: NewInvalidator(g),
				Generation:  gen,
			})
			m.published = gen
		}
		m.publishMu.Unlock()
	}
}

// resolve never panics. A panic while resolving, or a snapshot that cannot be
// read, turns into a graph holding a single host error.
func (m *Manager) resolve(gen string) (g *ResolvedGraph) {
	ctx, span := m.compiler.tracer.Start(m.ctx, "depgraph.Manager.refresh",
		trace.WithAttributes(attribute.String("generation", gen)))
	defer span.End()

	defer func() {
		// Catch panics
		if r := recover(); r != nil {
			m.logger.Error("panic resolving graph", zap.String("generation", gen), zap.Any("panic", r))
			g = errorGraph(newError(ErrInternal).withMessage("%v", r))
		}
	}()

	project, err := m.source.Snapshot(ctx)
	if err != nil {
		m.logger.Info("unable to read snapshot", zap.String("generation", gen), zap.Error(err))
		return errorGraph(newError(ErrSnapshot).withMessage("%v", err))
	}

	// Interactive compilation reports everything through the graph.
	g, _ = m.compiler.Compile(ctx, project)
	return g
}
