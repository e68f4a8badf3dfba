package ports

import "time"

// MetricsCollector records runtime metrics. Implementations must be safe for
// concurrent use.
type MetricsCollector interface {
	RecordNodeRun(kind string, status string, duration time.Duration)
	RecordMaterialization(status string)
	RecordSnapshot()
	RecordUndo()
	RecordRedo()
	SetHistoryDepth(depth int)
	SetGraphSize(nodes, edges int)
}
