package keyer

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/runcached/internal/core/ports"
)

const NodeID graft.ID = "adapter.key_deriver"

func init() {
	graft.Register(graft.Node[ports.KeyDeriver]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.KeyDeriver, error) {
			return NewDeriver(), nil
		},
	})
}
