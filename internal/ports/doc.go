// Package ports defines the interfaces between the graph runtime and its
// adapters: the node runner boundary, resource fetching, document storage,
// the event bus, and metrics collection.
package ports
