package progrock

import (
	"fmt"

	"github.com/vito/progrock"
)

// AttrCached marks a span as served from the store instead of a fresh run.
const AttrCached = "cached"

// Span implements ports.Span wrapping *progrock.VertexRecorder.
type Span struct {
	vertex *progrock.VertexRecorder
}

// Write streams child output into the vertex.
func (s *Span) Write(p []byte) (n int, err error) {
	return s.vertex.Stdout().Write(p)
}

// End completes the vertex; a non-nil err marks it as failed.
func (s *Span) End(err error) {
	s.vertex.Done(err)
}

// SetAttribute adds a key-value pair to the vertex. The cached attribute maps
// onto progrock's native cache marker.
func (s *Span) SetAttribute(key string, value any) {
	if key == AttrCached {
		if hit, ok := value.(bool); ok && hit {
			s.vertex.Cached()
		}
		return
	}
	_, _ = fmt.Fprintf(s.vertex.Stdout(), "%s=%v\n", key, value)
}
