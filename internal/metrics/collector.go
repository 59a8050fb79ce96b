// Package metrics holds the prometheus collectors for the bot host.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector registers and feeds the host's prometheus metrics. It
// satisfies toolbridge.Metrics for the invocation router.
type Collector struct {
	turnsTotal         *prometheus.CounterVec
	turnDuration       *prometheus.HistogramVec
	invocationsTotal   *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
	catalogTools       prometheus.Gauge
	catalogRefreshes   *prometheus.CounterVec
	mcpRequestDuration *prometheus.HistogramVec
	wsSessions         prometheus.Gauge
}

// NewCollector registers the collectors under the given namespace via
// promauto (default registry, exposed by promhttp on /metrics).
func NewCollector(namespace string) *Collector {
	c := &Collector{}

	c.turnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Total number of processed conversation turns",
		},
		[]string{"channel", "outcome"},
	)

	c.turnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Conversation turn duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"channel"},
	)

	c.invocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_invocations_total",
			Help:      "Total number of tool invocations routed to the tool server",
		},
		[]string{"tool", "outcome"},
	)

	c.invocationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_invocation_duration_seconds",
			Help:      "Tool invocation duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"tool"},
	)

	c.catalogTools = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_tools",
			Help:      "Number of tool stubs currently registered on the agent",
		},
	)

	c.catalogRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_refreshes_total",
			Help:      "Total number of catalog discovery runs",
		},
		[]string{"outcome"},
	)

	c.mcpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mcp_request_duration_seconds",
			Help:      "Tool server round trip duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	c.wsSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "webchat_sessions",
			Help:      "Number of open web-chat sessions",
		},
	)

	return c
}

// ObserveInvocation implements toolbridge.Metrics
func (c *Collector) ObserveInvocation(tool, outcome string, elapsed time.Duration) {
	c.invocationsTotal.WithLabelValues(tool, outcome).Inc()
	c.invocationDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// ObserveTurn records one processed turn.
func (c *Collector) ObserveTurn(channel, outcome string, elapsed time.Duration) {
	c.turnsTotal.WithLabelValues(channel, outcome).Inc()
	c.turnDuration.WithLabelValues(channel).Observe(elapsed.Seconds())
}

// ObserveCatalogRefresh records one discovery run and the resulting
// stub count.
func (c *Collector) ObserveCatalogRefresh(outcome string, tools int) {
	c.catalogRefreshes.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		c.catalogTools.Set(float64(tools))
	}
}

// ObserveMCPRequest records one tool server round trip.
func (c *Collector) ObserveMCPRequest(method string, elapsed time.Duration) {
	c.mcpRequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// SetWebchatSessions tracks the open dev-chat session count.
func (c *Collector) SetWebchatSessions(n int) {
	c.wsSessions.Set(float64(n))
}
