package ports

import "go.trai.ch/esmx/internal/core/domain"

// ScriptEvaluator evaluates an executable activation file to the options
// record it exports. Evaluation re-enters the host loader; the resolver
// scopes a re-entrancy guard around every call.
//
//go:generate mockgen -source=evaluator.go -destination=mocks/mock_evaluator.go -package=mocks
type ScriptEvaluator interface {
	Eval(path string) (domain.RawOptions, error)
}
