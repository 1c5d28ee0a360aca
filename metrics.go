package depgraph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// compilationsTotal counts compiler runs by mode and result
	compilationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depgraph_compilations_total",
		Help: "Total graph compilations by mode and result",
	}, []string{"mode", "result"})

	// compileDuration tracks how long a whole compilation takes
	compileDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "depgraph_compile_duration_seconds",
		Help:    "Graph compilation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	}, []string{"mode"})

	// diagnosticsTotal counts reported diagnostics by reason
	diagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depgraph_diagnostics_total",
		Help: "Total diagnostics reported by reason",
	}, []string{"reason"})

	// invalidationChecksTotal counts change checks by outcome
	invalidationChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depgraph_invalidation_checks_total",
		Help: "Total change notifications checked against the relevant types",
	}, []string{"result"})
)

func recordDiagnostics(errs []*CompilerError) {
	for _, err := range errs {
		diagnosticsTotal.WithLabelValues(reasonLabel(err.Reason)).Inc()
	}
}
