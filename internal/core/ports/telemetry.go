package ports

import (
	"context"
	"io"
)

// Tracer is the entry point for recording invocation phases.
type Tracer interface {
	// Start records a new span for a phase of the invocation.
	Start(ctx context.Context, name string) (context.Context, Span)
	// Close flushes and closes the recording session.
	Close() error
}

// Span represents one phase. Child output may be streamed into it.
type Span interface {
	io.Writer
	// End completes the span; a non-nil err marks it as failed.
	End(err error)
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}
