package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/esmx/internal/adapters/cache"
	"go.trai.ch/esmx/internal/adapters/fs"
	"go.trai.ch/esmx/internal/adapters/logger"
	"go.trai.ch/esmx/internal/core/ports"
)

// ResolverNodeID is the unique identifier for the config resolver Graft node.
const ResolverNodeID graft.ID = "adapter.config_resolver"

func init() {
	graft.Register(graft.Node[*Resolver]{
		ID:        ResolverNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.ProbeNodeID, logger.NodeID, cache.RegistryNodeID},
		Run: func(ctx context.Context) (*Resolver, error) {
			probe, err := graft.Dep[ports.FileProbe](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			caches, err := graft.Dep[*cache.Registry](ctx)
			if err != nil {
				return nil, err
			}
			return NewResolver(probe, log, caches), nil
		},
	})
}
