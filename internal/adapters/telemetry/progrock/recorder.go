// Package progrock provides the Progrock implementation of the telemetry
// adapter. Each invocation phase becomes a vertex on the tape.
package progrock

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/runcached/internal/core/ports"
)

// Recorder implements ports.Tracer on top of a progrock writer.
type Recorder struct {
	w    progrock.Writer
	rec  *progrock.Recorder
	next atomic.Uint64
}

// New creates a new Recorder with a default tape.
func New() ports.Tracer {
	return NewRecorder(progrock.NewTape())
}

// NewRecorder creates a new Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{
		w:   w,
		rec: progrock.NewRecorder(w),
	}
}

// Start records a new vertex for the named phase. The sequence number keeps
// repeated phases within one session distinct.
func (r *Recorder) Start(ctx context.Context, name string) (context.Context, ports.Span) {
	seq := r.next.Add(1)
	d := digest.FromString(fmt.Sprintf("%s#%d", name, seq))
	v := r.rec.Vertex(d, name)
	return ctx, &Span{vertex: v}
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	if c, ok := r.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
