package runner

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/runcached/internal/adapters/cas"
	"go.trai.ch/runcached/internal/adapters/env"
	"go.trai.ch/runcached/internal/adapters/keyer"
	"go.trai.ch/runcached/internal/adapters/logger"
	"go.trai.ch/runcached/internal/adapters/shell"
	"go.trai.ch/runcached/internal/adapters/telemetry/progrock"
	"go.trai.ch/runcached/internal/core/ports"
)

const NodeID graft.ID = "engine.runner"

func init() {
	graft.Register(graft.Node[*Runner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			env.NodeID,
			keyer.NodeID,
			cas.NodeID,
			shell.NodeID,
			logger.NodeID,
			progrock.NodeID,
		},
		Run: func(ctx context.Context) (*Runner, error) {
			envResolver, err := graft.Dep[ports.EnvResolver](ctx)
			if err != nil {
				return nil, err
			}
			keyDeriver, err := graft.Dep[ports.KeyDeriver](ctx)
			if err != nil {
				return nil, err
			}
			store, err := graft.Dep[ports.ResultStore](ctx)
			if err != nil {
				return nil, err
			}
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			return New(envResolver, keyDeriver, store, executor, log, tracer), nil
		},
	})
}
