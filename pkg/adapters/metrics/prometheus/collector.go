package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements MetricsCollector using Prometheus.
type Collector struct {
	nodeRuns         *prometheus.CounterVec
	nodeRunDuration  *prometheus.HistogramVec
	materializations *prometheus.CounterVec
	snapshots        prometheus.Counter
	undos            prometheus.Counter
	redos            prometheus.Counter
	historyDepth     prometheus.Gauge
	graphNodes       prometheus.Gauge
	graphEdges       prometheus.Gauge
}

// NewCollector creates a new Prometheus metrics collector.
func NewCollector() *Collector {
	return &Collector{
		nodeRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lienzo_node_runs_total",
				Help: "Total number of node runs",
			},
			[]string{"kind", "status"},
		),
		nodeRunDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lienzo_node_run_duration_seconds",
				Help:    "Node run duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
			[]string{"kind"},
		),
		materializations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lienzo_materializations_total",
				Help: "Total number of input materialization fetches",
			},
			[]string{"status"},
		),
		snapshots: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "lienzo_history_snapshots_total",
				Help: "Total number of history snapshots recorded",
			},
		),
		undos: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "lienzo_history_undos_total",
				Help: "Total number of undo operations",
			},
		),
		redos: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "lienzo_history_redos_total",
				Help: "Total number of redo operations",
			},
		),
		historyDepth: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "lienzo_history_depth",
				Help: "Current depth of the undo stack",
			},
		),
		graphNodes: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "lienzo_graph_nodes",
				Help: "Current number of nodes in the graph",
			},
		),
		graphEdges: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "lienzo_graph_edges",
				Help: "Current number of edges in the graph",
			},
		),
	}
}

// RecordNodeRun records one node run and its duration.
func (c *Collector) RecordNodeRun(kind string, status string, duration time.Duration) {
	c.nodeRuns.WithLabelValues(kind, status).Inc()
	c.nodeRunDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordMaterialization records one materialization fetch outcome.
func (c *Collector) RecordMaterialization(status string) {
	c.materializations.WithLabelValues(status).Inc()
}

// RecordSnapshot records one history snapshot.
func (c *Collector) RecordSnapshot() {
	c.snapshots.Inc()
}

// RecordUndo records one undo operation.
func (c *Collector) RecordUndo() {
	c.undos.Inc()
}

// RecordRedo records one redo operation.
func (c *Collector) RecordRedo() {
	c.redos.Inc()
}

// SetHistoryDepth sets the current undo stack depth.
func (c *Collector) SetHistoryDepth(depth int) {
	c.historyDepth.Set(float64(depth))
}

// SetGraphSize sets the current node and edge counts.
func (c *Collector) SetGraphSize(nodes, edges int) {
	c.graphNodes.Set(float64(nodes))
	c.graphEdges.Set(float64(edges))
}
