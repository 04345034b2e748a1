package cache

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/esmx/internal/adapters/fs"
	"go.trai.ch/esmx/internal/adapters/logger"
	"go.trai.ch/esmx/internal/build"
	"go.trai.ch/esmx/internal/core/ports"
)

const (
	// RegistryNodeID is the unique identifier for the cache registry Graft node.
	RegistryNodeID graft.ID = "adapter.cache_registry"
	// WriterNodeID is the unique identifier for the cache writer Graft node.
	WriterNodeID graft.ID = "adapter.cache_writer"
)

// CoverageEnvVar signals that the process runs under coverage
// instrumentation and must not share cache contents with plain runs.
const CoverageEnvVar = "ESMX_COVERAGE"

func init() {
	graft.Register(graft.Node[*Registry]{
		ID:        RegistryNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.ProbeNodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Registry, error) {
			probe, err := graft.Dep[ports.FileProbe](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			scan := ScanOptions{
				TranslatorVersion: build.Version,
				CoverageActive:    os.Getenv(CoverageEnvVar) != "",
			}
			return NewRegistry(probe, log, scan), nil
		},
	})

	graft.Register(graft.Node[*Writer]{
		ID:        WriterNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.ProbeNodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Writer, error) {
			probe, err := graft.Dep[ports.FileProbe](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewWriter(probe, log), nil
		},
	})
}
