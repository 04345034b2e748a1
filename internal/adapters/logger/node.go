package logger

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/esmx/internal/adapters/detector"
	"go.trai.ch/esmx/internal/core/ports"
)

// NodeID is the unique identifier for the logger Graft node.
const NodeID graft.ID = "adapter.logger"

// FormatEnvVar overrides log format detection ("pretty", "json" or "auto").
const FormatEnvVar = "ESMX_LOG_FORMAT"

func init() {
	graft.Register(graft.Node[ports.Logger]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Logger, error) {
			log := New()
			mode := detector.ResolveMode(detector.DetectEnvironment(), os.Getenv(FormatEnvVar))
			if mode == detector.ModeJSON {
				log.SetJSON(true)
			}
			return log, nil
		},
	})
}
