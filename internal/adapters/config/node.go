package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/runcached/internal/adapters/logger"
	"go.trai.ch/runcached/internal/core/ports"
)

const NodeID graft.ID = "adapter.config"

func init() {
	graft.Register(graft.Node[*Loader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*Loader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(log), nil
		},
	})
}
