package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/esmx/internal/core/ports"
)

// ProbeNodeID is the unique identifier for the file probe Graft node.
const ProbeNodeID graft.ID = "adapter.file_probe"

func init() {
	graft.Register(graft.Node[ports.FileProbe]{
		ID:        ProbeNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.FileProbe, error) {
			return NewProbe(), nil
		},
	})
}
