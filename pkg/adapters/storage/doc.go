// Package storage provides workflow document storage implementations.
//
// Implementations:
//   - redis: Redis with JSON serialization (MVP)
//   - memory: In-memory for testing
package storage
