package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/runcached/internal/adapters/cas"
	"go.trai.ch/runcached/internal/adapters/config"
	"go.trai.ch/runcached/internal/adapters/logger"
	"go.trai.ch/runcached/internal/adapters/telemetry/progrock"
	"go.trai.ch/runcached/internal/core/ports"
	"go.trai.ch/runcached/internal/engine/runner"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			runner.NodeID,
			cas.NodeID,
			progrock.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			run, err := graft.Dep[*runner.Runner](ctx)
			if err != nil {
				return nil, err
			}
			store, err := graft.Dep[ports.ResultStore](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			return New(run, store, tracer), nil
		},
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			config.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			application, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			loader, err := graft.Dep[*config.Loader](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{
				App:          application,
				Logger:       log,
				ConfigLoader: loader,
			}, nil
		},
	})
}
