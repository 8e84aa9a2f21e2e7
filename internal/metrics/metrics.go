// Package metrics exposes Prometheus collectors for the solve pipeline:
// problem size, solve duration, and terminal status, scraped from an
// optional /metrics HTTP listener.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors holds every gauge/counter/histogram the solve pipeline
// updates, registered against a private registry so a caller embedding
// this module doesn't collide with the default global registry.
type Collectors struct {
	registry *prometheus.Registry

	Variables   prometheus.Gauge
	Constraints prometheus.Gauge
	SolveTotal  *prometheus.CounterVec // labeled by terminal status
	SolveMillis prometheus.Histogram
	Objective   prometheus.Gauge
}

// New constructs and registers every collector.
func New() *Collectors {
	registry := prometheus.NewRegistry()
	c := &Collectors{
		registry: registry,
		Variables: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "slotmachine",
			Name:      "problem_variables",
			Help:      "Number of MILP variables in the most recently assembled problem.",
		}),
		Constraints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "slotmachine",
			Name:      "problem_constraints",
			Help:      "Number of MILP constraints in the most recently assembled problem.",
		}),
		SolveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slotmachine",
			Name:      "solves_total",
			Help:      "Total solves by terminal status.",
		}, []string{"status"}),
		SolveMillis: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "slotmachine",
			Name:      "solve_duration_milliseconds",
			Help:      "Wall-clock time of the assemble-and-solve stage.",
			Buckets:   prometheus.ExponentialBuckets(10, 2, 12), // 10ms .. ~20s
		}),
		Objective: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "slotmachine",
			Name:      "last_objective_value",
			Help:      "Objective value of the most recent Optimal solve.",
		}),
	}
	registry.MustRegister(c.Variables, c.Constraints, c.SolveTotal, c.SolveMillis, c.Objective)
	return c
}

// Handler returns the /metrics HTTP handler for this Collectors' registry.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordProblem records the assembled problem's size, called once per
// Session.Assemble.
func (c *Collectors) RecordProblem(numVariables, numConstraints int) {
	c.Variables.Set(float64(numVariables))
	c.Constraints.Set(float64(numConstraints))
}

// RecordSolve records one oracle.Solve outcome.
func (c *Collectors) RecordSolve(status string, elapsedMillis float64, objective float64, hasObjective bool) {
	c.SolveTotal.WithLabelValues(status).Inc()
	c.SolveMillis.Observe(elapsedMillis)
	if hasObjective {
		c.Objective.Set(objective)
	}
}
