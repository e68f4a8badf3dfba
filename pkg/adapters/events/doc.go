// Package events provides run-event bus implementations.
//
// Implementations:
//   - redis: Redis Streams with consumer groups (MVP)
//   - memory: In-memory for testing and single-process use
package events
