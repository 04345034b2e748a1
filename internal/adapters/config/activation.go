package config

import (
	"encoding/json"
	"path/filepath"

	"github.com/tidwall/jsonc"
	"go.trai.ch/esmx/internal/core/domain"
	"go.trai.ch/esmx/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// activationKind distinguishes how an activation file yields its options.
type activationKind int

const (
	// kindScript is an executable config: evaluation through the host
	// loader exports the options record.
	kindScript activationKind = iota
	// kindJSONC is structured text, JSON extended with comments and
	// trailing commas.
	kindJSONC
	// kindYAML is structured text in YAML.
	kindYAML
)

// activationSearch is the fixed preference order of activation file
// extensions within a directory.
var activationSearch = []struct {
	ext  string
	kind activationKind
}{
	{"", kindJSONC},
	{".cjs", kindScript},
	{".js", kindScript},
	{".json", kindJSONC},
	{".mjs", kindScript},
	{".yaml", kindYAML},
	{".yml", kindYAML},
}

type activationFile struct {
	path string
	kind activationKind
}

// findActivation locates the activation file of a directory, if any.
func findActivation(probe ports.FileProbe, dir string) (activationFile, bool) {
	for _, candidate := range activationSearch {
		path := filepath.Join(dir, domain.RCFileName+candidate.ext)
		if probe.Exists(path) {
			return activationFile{path: path, kind: candidate.kind}, true
		}
	}
	return activationFile{}, false
}

// parseActivation decodes a structured-text activation file into a raw
// options record.
func parseActivation(kind activationKind, data []byte) (domain.RawOptions, error) {
	var raw domain.RawOptions
	switch kind {
	case kindJSONC:
		if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
			return nil, zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
		}
	case kindYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
		}
	case kindScript:
		return nil, zerr.With(domain.ErrConfigParseFailed, "kind", "script")
	}
	return raw, nil
}
