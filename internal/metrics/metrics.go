// Package metrics holds the process-wide Prometheus collectors served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeFallback = "fallback"
	OutcomeNoAgents = "no_agents"
)

var (
	RouterDispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neurohub_router_dispatch_total",
			Help: "Queries dispatched by the router, by target category and outcome",
		},
		[]string{"category", "outcome"},
	)
	RouterProbeSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "neurohub_router_probe_seconds",
			Help:    "Duration of agent liveness probes in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"category"},
	)
	PipelineIterations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "neurohub_pipeline_iterations",
			Help:    "Iterations run by the refinement loop before exit",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
	)
	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neurohub_tool_calls_total",
			Help: "Tool invocations by tool name and outcome",
		},
		[]string{"tool", "outcome"},
	)
)
