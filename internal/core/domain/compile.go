package domain

// ResultType classifies a translator result.
type ResultType string

const (
	// TypeScript marks a source already compatible with the dynamic-module
	// side; no rewrite happened.
	TypeScript ResultType = "script"
	// TypeModule marks a translated module; only these are persisted to the
	// artifact cache.
	TypeModule ResultType = "module"
	// TypeUnambiguous marks a source valid under either interpretation.
	TypeUnambiguous ResultType = "unambiguous"
)

// RuntimeAlias is the identifier the translator rewrites runtime helper
// references to.
const RuntimeAlias = "_"

// CompileOptions are the flags handed to the translator for one source.
type CompileOptions struct {
	CJS          CJSOptions
	Ext          string
	RuntimeAlias string
	Type         ResultType
	Var          bool
}

// CompileResult is the translator output for one source.
type CompileResult struct {
	Type ResultType
	Code string
	// Map is the structural source-to-output correspondence, when the
	// translator produced one.
	Map []byte
}

// RequestType maps a project mode to the result type requested from the
// translator.
func RequestType(m Mode) ResultType {
	if m == ModeAuto {
		return TypeUnambiguous
	}
	return TypeModule
}
