package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/esmx/internal/adapters/cache"
	"go.trai.ch/esmx/internal/adapters/config"
	"go.trai.ch/esmx/internal/adapters/fs"
	"go.trai.ch/esmx/internal/adapters/logger"
	"go.trai.ch/esmx/internal/adapters/telemetry"
	"go.trai.ch/esmx/internal/adapters/watcher"
	"go.trai.ch/esmx/internal/core/ports"
)

// NodeID is the unique identifier for the components Graft node.
const NodeID graft.ID = "app.components"

// Components bundles the fully wired application for the CLI entry point.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*Components]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.ResolverNodeID,
			fs.ProbeNodeID,
			cache.WriterNodeID,
			cache.RegistryNodeID,
			logger.NodeID,
			telemetry.NodeID,
			watcher.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			resolver, err := graft.Dep[*config.Resolver](ctx)
			if err != nil {
				return nil, err
			}
			probe, err := graft.Dep[ports.FileProbe](ctx)
			if err != nil {
				return nil, err
			}
			writer, err := graft.Dep[*cache.Writer](ctx)
			if err != nil {
				return nil, err
			}
			caches, err := graft.Dep[*cache.Registry](ctx)
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
			configWatcher, err := graft.Dep[ports.Watcher](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{
				App:    New(resolver, probe, writer, caches, log, tracer).WithWatcher(configWatcher),
				Logger: log,
			}, nil
		},
	})
}
