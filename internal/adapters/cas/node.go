package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/runcached/internal/core/ports"
)

const NodeID graft.ID = "adapter.result_store"

func init() {
	graft.Register(graft.Node[ports.ResultStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ResultStore, error) {
			return NewStore(), nil
		},
	})
}
