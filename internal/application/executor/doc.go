// Package executor implements per-node execution.
//
// Each run is an independent task moving the node through
// Idle -> Running -> {Success | Error} -> Idle. The orchestrator collects the
// most recent outputs of the node's direct predecessors, invokes the remote
// node runner, and commits the result back to the store. Full-pipeline
// evaluation is out of scope: upstream nodes are never triggered.
package executor
