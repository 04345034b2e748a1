package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/esmx/internal/adapters/cache"
	"go.trai.ch/esmx/internal/adapters/config"
	"go.trai.ch/esmx/internal/adapters/fs"
	"go.trai.ch/esmx/internal/adapters/logger"
	"go.trai.ch/esmx/internal/adapters/telemetry"
	"go.trai.ch/esmx/internal/app"
)

func testComponents() *app.Components {
	probe := fs.NewProbe()
	log := logger.New()
	caches := cache.NewRegistry(probe, log, cache.ScanOptions{TranslatorVersion: "test"})
	resolver := config.NewResolver(probe, log, caches)
	writer := cache.NewWriter(probe, log)

	return &app.Components{
		App:    app.New(resolver, probe, writer, caches, log, telemetry.NewNoOpTracer()),
		Logger: log,
	}
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return testComponents(), func() {}, nil
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)
	assert.Equal(t, 0, exitCode)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run returns 1 when the command execution fails.
func TestRun_ExecutionError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return testComponents(), func() {}, nil
	}

	stderr := new(bytes.Buffer)
	// keys requires a governing project; an empty temp dir has none.
	exitCode := run(context.Background(), []string{"keys", t.TempDir()}, stderr, provider)

	assert.Equal(t, 1, exitCode)
}
