package watcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/esmx/internal/adapters/config"
	"go.trai.ch/esmx/internal/adapters/logger"
	"go.trai.ch/esmx/internal/core/ports"
)

// NodeID is the unique identifier for the config watcher Graft node.
const NodeID graft.ID = "adapter.config_watcher"

func init() {
	graft.Register(graft.Node[ports.Watcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.ResolverNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.Watcher, error) {
			resolver, err := graft.Dep[*config.Resolver](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewWatcher(resolver, log)
		},
	})
}
