package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// Mode controls which sources the translator treats as modules.
type Mode string

const (
	// ModeAll treats every source as a module.
	ModeAll Mode = "all"
	// ModeAuto detects the source type from its content.
	ModeAuto Mode = "auto"
	// ModeStrict treats only unambiguous module sources as modules.
	ModeStrict Mode = "strict"
)

// RawOptions is an options record as it appears in an activation file or a
// manifest field, before validation and defaulting.
type RawOptions map[string]any

// CJSOptions is the interop toggle group for the dynamic-module side.
type CJSOptions struct {
	Cache            bool `json:"cache" yaml:"cache"`
	Extensions       bool `json:"extensions" yaml:"extensions"`
	Interop          bool `json:"interop" yaml:"interop"`
	MutableNamespace bool `json:"mutableNamespace" yaml:"mutableNamespace"`
	NamedExports     bool `json:"namedExports" yaml:"namedExports"`
	Paths            bool `json:"paths" yaml:"paths"`
	TopLevelReturn   bool `json:"topLevelReturn" yaml:"topLevelReturn"`
	Vars             bool `json:"vars" yaml:"vars"`
}

// Options is a fully-defaulted, validated settings record. Instances are
// treated as immutable once attached to a ProjectConfig.
type Options struct {
	Await      bool       `json:"await" yaml:"await"`
	Cache      bool       `json:"cache" yaml:"cache"`
	CachePath  string     `json:"cachePath,omitempty" yaml:"cachePath,omitempty"`
	CJS        CJSOptions `json:"cjs" yaml:"cjs"`
	Debug      bool       `json:"debug" yaml:"debug"`
	MainFields []string   `json:"mainFields" yaml:"mainFields"`
	Mode       Mode       `json:"mode" yaml:"mode"`
	SourceMap  bool       `json:"sourceMap" yaml:"sourceMap"`
	Warnings   bool       `json:"warnings" yaml:"warnings"`
}

// DefaultOptions returns the conservative absolute defaults, applied when a
// user has explicitly opted in.
func DefaultOptions() Options {
	return Options{
		Cache:      true,
		MainFields: []string{"main"},
		Mode:       ModeStrict,
		Warnings:   true,
	}
}

// ImplicitOptions returns the "user expressed no opinion" baseline. It is
// deliberately more permissive on the interop toggles than DefaultOptions:
// lenient when nothing was specified, strict on explicit opt-in.
func ImplicitOptions() Options {
	o := DefaultOptions()
	o.Mode = ModeAuto
	o.CJS = CJSOptions{
		Cache:            true,
		Extensions:       true,
		Interop:          true,
		MutableNamespace: true,
		NamedExports:     true,
		Paths:            true,
		Vars:             true,
	}
	return o
}

// validMainFields is the closed set of accepted main-field names.
var validMainFields = map[string]bool{
	"main":    true,
	"module":  true,
	"browser": true,
}

// MergeOptions validates raw key-by-key and fills defaults from
// DefaultOptions. Unknown keys and out-of-set values are errors.
func MergeOptions(raw RawOptions) (Options, error) {
	return Merge(raw, DefaultOptions())
}

// Merge validates raw key-by-key against the schema and overlays it on base.
// Merging an already-merged record is a no-op.
func Merge(raw RawOptions, base Options) (Options, error) {
	o := base

	// Sorted iteration keeps which of several bad keys is reported stable.
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		v := raw[k]
		switch k {
		case "await":
			b, ok := v.(bool)
			if !ok {
				return o, invalidValue(k, v)
			}
			o.Await = b
		case "cache":
			switch val := v.(type) {
			case bool:
				o.Cache = val
				o.CachePath = ""
			case string:
				o.Cache = true
				o.CachePath = val
			default:
				return o, invalidValue(k, v)
			}
		case "cjs":
			cjs, err := mergeCJS(o.CJS, v)
			if err != nil {
				return o, err
			}
			o.CJS = cjs
		case "debug":
			b, ok := v.(bool)
			if !ok {
				return o, invalidValue(k, v)
			}
			o.Debug = b
		case "mainFields":
			fields, err := mergeMainFields(v)
			if err != nil {
				return o, err
			}
			o.MainFields = fields
		case "mode":
			s, ok := v.(string)
			if !ok || !validMode(Mode(s)) {
				return o, invalidValue(k, v)
			}
			o.Mode = Mode(s)
		case "sourceMap":
			b, ok := v.(bool)
			if !ok {
				return o, invalidValue(k, v)
			}
			o.SourceMap = b
		case "sourcemap":
			// Legacy alias, honored only while the canonical key is absent.
			if _, canonical := raw["sourceMap"]; canonical {
				return o, zerr.With(ErrUnknownOptionKey, "key", k)
			}
			b, ok := v.(bool)
			if !ok {
				return o, invalidValue(k, v)
			}
			o.SourceMap = b
		case "warnings":
			b, ok := v.(bool)
			if !ok {
				return o, invalidValue(k, v)
			}
			o.Warnings = b
		default:
			return o, zerr.With(ErrUnknownOptionKey, "key", k)
		}
	}

	return o, nil
}

// mergeCJS accepts a single boolean (broadcast to every toggle) or a partial
// record merged over the group values in base.
func mergeCJS(base CJSOptions, v any) (CJSOptions, error) {
	switch val := v.(type) {
	case bool:
		return CJSOptions{
			Cache:            val,
			Extensions:       val,
			Interop:          val,
			MutableNamespace: val,
			NamedExports:     val,
			Paths:            val,
			TopLevelReturn:   val,
			Vars:             val,
		}, nil
	case map[string]any:
		out := base
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			b, ok := val[k].(bool)
			if !ok {
				return base, invalidValue("cjs."+k, val[k])
			}
			switch k {
			case "cache":
				out.Cache = b
			case "extensions":
				out.Extensions = b
			case "interop":
				out.Interop = b
			case "mutableNamespace":
				out.MutableNamespace = b
			case "namedExports":
				out.NamedExports = b
			case "paths":
				out.Paths = b
			case "topLevelReturn":
				out.TopLevelReturn = b
			case "vars":
				out.Vars = b
			default:
				return base, zerr.With(ErrUnknownOptionKey, "key", "cjs."+k)
			}
		}
		return out, nil
	default:
		return base, invalidValue("cjs", v)
	}
}

// mergeMainFields accepts a single field name or an ordered sequence.
func mergeMainFields(v any) ([]string, error) {
	switch val := v.(type) {
	case string:
		if !validMainFields[val] {
			return nil, invalidValue("mainFields", val)
		}
		return []string{val}, nil
	case []any:
		fields := make([]string, 0, len(val))
		for _, f := range val {
			s, ok := f.(string)
			if !ok || !validMainFields[s] {
				return nil, invalidValue("mainFields", f)
			}
			fields = append(fields, s)
		}
		if len(fields) == 0 {
			return nil, invalidValue("mainFields", val)
		}
		return fields, nil
	case []string:
		// yaml.v3 decodes into []any; this arm covers callers passing
		// records built in Go.
		anyVal := make([]any, len(val))
		for i, s := range val {
			anyVal[i] = s
		}
		return mergeMainFields(anyVal)
	default:
		return nil, invalidValue("mainFields", v)
	}
}

func validMode(m Mode) bool {
	switch m {
	case ModeAll, ModeAuto, ModeStrict:
		return true
	}
	return false
}

func invalidValue(key string, value any) error {
	err := zerr.With(ErrInvalidOptionValue, "key", key)
	return zerr.With(err, "value", value)
}
