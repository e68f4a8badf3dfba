package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownNode means an operation referenced a node id that does not
	// exist. Structural call sites absorb it as a no-op.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownEdge means an operation referenced an edge id that does not exist.
	ErrUnknownEdge = errors.New("unknown edge")

	// ErrMalformedDocument means a workflow document is missing its nodes or
	// edges arrays. Loading is aborted.
	ErrMalformedDocument = errors.New("malformed workflow document")

	// ErrNotRunnable means Run was called on a node kind that holds data
	// directly instead of computing it.
	ErrNotRunnable = errors.New("node kind is not runnable")

	// ErrInsufficientResource means the remote runner declined for quota or
	// credit reasons. Kept distinct so callers can offer an upgrade path.
	ErrInsufficientResource = errors.New("insufficient resource")
)

// RunnerError wraps any remote failure from the node runner that is not an
// insufficient-resource condition.
type RunnerError struct {
	Op  string
	Err error
}

func (e *RunnerError) Error() string {
	return fmt.Sprintf("runner %s: %v", e.Op, e.Err)
}

func (e *RunnerError) Unwrap() error {
	return e.Err
}

// NewRunnerError wraps err as a runner failure for the given operation.
func NewRunnerError(op string, err error) *RunnerError {
	return &RunnerError{Op: op, Err: err}
}

// IsRunnerError reports whether err is (or wraps) a RunnerError.
func IsRunnerError(err error) bool {
	var runnerErr *RunnerError
	return errors.As(err, &runnerErr)
}

// IsInsufficientResource reports whether err is the quota/credit condition.
func IsInsufficientResource(err error) bool {
	return errors.Is(err, ErrInsufficientResource)
}

// IsUnknownNode reports whether err means a missing node id.
func IsUnknownNode(err error) bool {
	return errors.Is(err, ErrUnknownNode)
}
