package ports

import "context"

// Fetcher materializes a remote resource reference into an in-memory binary
// payload. Used when an input slot needs raw bytes rather than a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
