// Package http provides the HTTP REST API implementation.
//
// The HTTP server exposes endpoints for:
//   - Structural graph edits (nodes, edges, bulk change batches)
//   - Undo / redo
//   - Per-node execution
//   - Workflow document export, import and named persistence
//   - Health checks and Prometheus metrics
package http
