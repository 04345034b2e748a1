// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/esmx/internal/adapters/cache"
	_ "go.trai.ch/esmx/internal/adapters/config"
	_ "go.trai.ch/esmx/internal/adapters/fs"
	_ "go.trai.ch/esmx/internal/adapters/logger"
	_ "go.trai.ch/esmx/internal/adapters/telemetry"
	_ "go.trai.ch/esmx/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/esmx/internal/app"
)
