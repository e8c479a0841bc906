// Package metrics exposes the Prometheus collectors the orchestrator's
// lifecycle hooks record against: request/tool counts and latencies, token
// usage, and active-conversation gauges — one struct field per signal.
// CompactionCounter and RetryCounter are registered here but are not
// incremented by Hook or by any other code in this repository.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is a registered set of collectors for one orchestrator process.
// Construct one with New and share it across every turn; Prometheus
// collectors are safe for concurrent use.
type Metrics struct {
	// RequestCounter counts provider round-trips by model and outcome
	// (success|error).
	RequestCounter *prometheus.CounterVec

	// RequestDuration measures provider round-trip latency in seconds,
	// labeled by model.
	RequestDuration *prometheus.HistogramVec

	// TokensUsed tracks token consumption, labeled by model and kind
	// (input|output).
	TokensUsed *prometheus.CounterVec

	// ToolExecutionCounter counts tool dispatches by tool name and outcome
	// (success|error).
	ToolExecutionCounter *prometheus.CounterVec

	// ToolExecutionDuration measures tool dispatch latency in seconds,
	// labeled by tool name.
	ToolExecutionDuration *prometheus.HistogramVec

	// ActiveConversations is a gauge of turns currently in flight.
	ActiveConversations prometheus.Gauge

	// CompactionCounter counts compaction runs.
	CompactionCounter prometheus.Counter

	// RetryCounter counts retry attempts, labeled by cause.
	RetryCounter *prometheus.CounterVec
}

// New registers and returns a fresh Metrics against reg. Pass
// prometheus.DefaultRegisterer for process-wide metrics, or a fresh
// *prometheus.Registry in tests to avoid collisions across test runs.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentcore",
			Name:      "provider_requests_total",
			Help:      "Provider chat requests issued by the orchestrator, by model and outcome.",
		}, []string{"model", "outcome"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agentcore",
			Name:      "provider_request_duration_seconds",
			Help:      "Provider chat request latency in seconds, by model.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"model"}),
		TokensUsed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentcore",
			Name:      "tokens_total",
			Help:      "Tokens consumed, by model and kind (input|output).",
		}, []string{"model", "kind"}),
		ToolExecutionCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentcore",
			Name:      "tool_executions_total",
			Help:      "Tool dispatches, by tool name and outcome.",
		}, []string{"tool", "outcome"}),
		ToolExecutionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agentcore",
			Name:      "tool_execution_duration_seconds",
			Help:      "Tool dispatch latency in seconds, by tool name.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"tool"}),
		ActiveConversations: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "agentcore",
			Name:      "active_conversations",
			Help:      "Turns currently being driven by an Orchestrator.",
		}),
		CompactionCounter: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "agentcore",
			Name:      "compactions_total",
			Help:      "Compaction runs performed.",
		}),
		RetryCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentcore",
			Name:      "retries_total",
			Help:      "Retry attempts issued by the retry driver, by classified cause.",
		}, []string{"cause"}),
	}
}
