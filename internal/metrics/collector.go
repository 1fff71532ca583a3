// Package metrics provides Prometheus metrics for go-proc-supervisor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the supervisor's Prometheus metrics. All metrics live in a
// private registry so tests can create collectors independently.
type Collector struct {
	registry *prometheus.Registry

	info            *prometheus.GaugeVec
	childrenTotal   prometheus.Gauge
	childrenRunning prometheus.Gauge
	spawnsTotal     prometheus.Counter
	spawnFailures   prometheus.Counter
	childExits      *prometheus.CounterVec
	signalsForward  *prometheus.CounterVec
	linesTotal      *prometheus.CounterVec
	lineBytesTotal  *prometheus.CounterVec
	teardownState   prometheus.Gauge
}

// Exit classification labels.
const (
	ExitCheckPassed = "check_passed"
	ExitCheckFailed = "check_failed"
	ExitUnexpected  = "unexpected"
)

// NewCollector creates and registers all supervisor metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		info: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "procsup_info",
				Help: "Information about the supervisor (value always 1)",
			},
			[]string{"version"},
		),

		childrenTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "procsup_children_configured",
				Help: "Number of configured children",
			},
		),

		childrenRunning: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "procsup_children_running",
				Help: "Currently running children",
			},
		),

		spawnsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "procsup_spawns_total",
				Help: "Total child processes spawned",
			},
		),

		spawnFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "procsup_spawn_failures_total",
				Help: "Total child spawn failures",
			},
		),

		childExits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "procsup_child_exits_total",
				Help: "Total child exits by classification",
			},
			[]string{"class"},
		),

		signalsForward: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "procsup_signals_forwarded_total",
				Help: "Total signals relayed to opted-in children",
			},
			[]string{"signal"},
		),

		linesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "procsup_log_lines_total",
				Help: "Total multiplexed log lines flushed",
			},
			[]string{"stream"},
		),

		lineBytesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "procsup_log_line_bytes_total",
				Help: "Total bytes of multiplexed log line content",
			},
			[]string{"stream"},
		),

		teardownState: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "procsup_teardown_state",
				Help: "Teardown state (0=running, 1=soft, 2=hard)",
			},
		),
	}

	c.registry.MustRegister(
		c.info,
		c.childrenTotal,
		c.childrenRunning,
		c.spawnsTotal,
		c.spawnFailures,
		c.childExits,
		c.signalsForward,
		c.linesTotal,
		c.lineBytesTotal,
		c.teardownState,
	)

	return c
}

// Registry returns the private registry backing this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// SetInfo records the supervisor version label.
func (c *Collector) SetInfo(version string) {
	c.info.WithLabelValues(version).Set(1)
}

// SetConfigured records the configured child count.
func (c *Collector) SetConfigured(n int) {
	c.childrenTotal.Set(float64(n))
}

// SetRunning records the current number of running children.
func (c *Collector) SetRunning(n int) {
	c.childrenRunning.Set(float64(n))
}

// ChildSpawned counts one successful spawn.
func (c *Collector) ChildSpawned() {
	c.spawnsTotal.Inc()
}

// SpawnFailed counts one failed spawn attempt.
func (c *Collector) SpawnFailed() {
	c.spawnFailures.Inc()
}

// ChildExited counts one reaped child with its classification.
func (c *Collector) ChildExited(class string) {
	c.childExits.WithLabelValues(class).Inc()
}

// SignalForwarded counts one relayed signal delivery.
func (c *Collector) SignalForwarded(signal string) {
	c.signalsForward.WithLabelValues(signal).Inc()
}

// LineFlushed counts one multiplexed line and its content length.
func (c *Collector) LineFlushed(stream string, length int) {
	c.linesTotal.WithLabelValues(stream).Inc()
	c.lineBytesTotal.WithLabelValues(stream).Add(float64(length))
}

// SetTeardownState records the teardown state machine position.
func (c *Collector) SetTeardownState(state int) {
	c.teardownState.Set(float64(state))
}
