// Package graph implements the mutable topology store of the canvas runtime.
//
// The store owns the node and edge collections and exposes structural
// mutation operations:
//   - add, duplicate, delete nodes (delete cascades edge removal)
//   - connect and disconnect edges
//   - bulk change batches for drag and multi-select gestures
//   - execution-state writes (loading flag, run result commits)
//
// Every operation is synchronous under a single mutex, which gives readers a
// read-after-write guarantee without artificial delays.
package graph
