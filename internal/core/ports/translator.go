package ports

import "go.trai.ch/esmx/internal/core/domain"

// Translator is the external text-to-text compiler collaborator.
//
//go:generate mockgen -source=translator.go -destination=mocks/mock_translator.go -package=mocks
type Translator interface {
	// Compile turns source text plus compile flags into a result. It is a
	// pure function of its inputs.
	Compile(text string, opts domain.CompileOptions) (domain.CompileResult, error)
}
