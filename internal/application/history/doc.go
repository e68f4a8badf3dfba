// Package history implements structural undo/redo over graph snapshots.
//
// Only structural edits are recorded: field edits and run-result writes go
// straight to the store without a snapshot. The stack is deduplicated and
// bounded at 50 entries.
package history
