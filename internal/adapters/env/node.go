package env

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/runcached/internal/core/ports"
)

const NodeID graft.ID = "adapter.env_resolver"

func init() {
	graft.Register(graft.Node[ports.EnvResolver]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.EnvResolver, error) {
			return NewResolver(), nil
		},
	})
}
