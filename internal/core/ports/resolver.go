package ports

import "go.trai.ch/esmx/internal/core/domain"

// ConfigResolver discovers, merges, and memoizes per-project activation
// settings.
//
//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type ConfigResolver interface {
	// Resolve returns the project configuration governing dirPath, or nil
	// when no project opts in. Results, including negative ones, are
	// memoized per directory; force retries a memoized negative and
	// guarantees a best-effort configuration.
	Resolve(dirPath string, force bool) (*domain.ProjectConfig, error)

	// Invalidate drops memoized results at or under root.
	Invalidate(root string)

	// Evaluating reports whether an activation script is being evaluated
	// right now. Callers suppress cache writes for the duration.
	Evaluating() bool
}
