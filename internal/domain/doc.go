// Package domain holds the canvas workflow model shared by every layer:
// nodes, edges, the persisted document format, id generation, and the typed
// errors the runtime surfaces.
package domain
