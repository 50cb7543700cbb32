// Package queue stores rebuild requests between pipeline invocations.
// A request names a package (and optionally a version and build type) that
// should be prepared again, typically after a failed run.
package queue

import "context"

// Request is one queued rebuild.
type Request struct {
	Package    string `json:"package"`
	Version    string `json:"version,omitempty"`
	BuildType  string `json:"build_type,omitempty"`
	EnqueuedAt int64  `json:"enqueued_at,omitempty"`
	Attempts   int    `json:"attempts,omitempty"`
}

// Backend defines the queue operations.
type Backend interface {
	Enqueue(ctx context.Context, req Request) error
	List(ctx context.Context) ([]Request, error)
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
	Pop(ctx context.Context, max int) ([]Request, error)
}

// Stats summarizes queue depth and oldest item age.
type Stats struct {
	Length    int   `json:"length"`
	OldestAge int64 `json:"oldest_age_seconds"`
}
